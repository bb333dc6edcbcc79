package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/habedi/escola/pkg/validation"
	"github.com/rs/zerolog/log"
)

// MaxMomentoFileSize is the largest upload the backend accepts.
const MaxMomentoFileSize = 10 << 20

var momentoExtensions = map[string][]string{
	MomentoFoto:  {".jpg", ".jpeg", ".png", ".gif"},
	MomentoVideo: {".mp4", ".mov", ".avi"},
}

// momentoTipoFor infers the media type from a file name, or "" when the extension is unknown.
func momentoTipoFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	for tipo, exts := range momentoExtensions {
		for _, e := range exts {
			if e == ext {
				return tipo
			}
		}
	}
	return ""
}

// Validate checks the form against the rules the backend enforces. filename is empty when no
// file is attached.
func (n NovoMomento) Validate(filename string, now time.Time) error {
	var errs []error
	if filename != "" {
		tipo := n.Tipo
		if tipo == "" {
			tipo = momentoTipoFor(filename)
		}
		exts, ok := momentoExtensions[tipo]
		switch {
		case !ok && n.Tipo == "":
			errs = append(errs, fmt.Errorf("arquivo %q is neither a photo nor a video", filepath.Base(filename)))
		case !ok:
			errs = append(errs, fmt.Errorf("tipo must be %s or %s, got %q", MomentoFoto, MomentoVideo, n.Tipo))
		case momentoTipoFor(filename) != tipo:
			errs = append(errs, fmt.Errorf("arquivo %q does not match tipo %s (use %s)",
				filepath.Base(filename), tipo, strings.Join(exts, ", ")))
		}
	} else if n.Tipo != "" {
		if _, ok := momentoExtensions[n.Tipo]; !ok {
			errs = append(errs, fmt.Errorf("tipo must be %s or %s, got %q", MomentoFoto, MomentoVideo, n.Tipo))
		}
	}
	if n.TurmaID != "" {
		if err := validation.ValidateUUID("turma_id", n.TurmaID); err != nil {
			errs = append(errs, err)
		}
	}
	for i, id := range n.AlunosIDs {
		if err := validation.ValidateUUID(fmt.Sprintf("alunos_ids[%d]", i), id); err != nil {
			errs = append(errs, err)
		}
	}
	if n.DataMomento != "" {
		if err := validation.ValidateDate("data_momento", n.DataMomento, now); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CreateMomento posts a moment as multipart form data, with file as the "arquivo" part when it
// is not nil. The body is buffered so the request can be replayed after a token refresh.
func (c *Client) CreateMomento(ctx context.Context, in NovoMomento, file io.Reader, filename string) (*Momento, error) {
	if file == nil {
		filename = ""
	} else if filename == "" {
		return nil, validationError(errors.New("a file name is required with the file"))
	}
	if err := in.Validate(filename, time.Now()); err != nil {
		return nil, validationError(err)
	}
	if in.Tipo == "" && filename != "" {
		in.Tipo = momentoTipoFor(filename)
	}

	body, contentType, err := momentoForm(in, file, filename)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(ctx, http.MethodPost, momentosPath, body, http.Header{"Content-Type": {contentType}})
	if err != nil {
		return nil, err
	}
	var out Momento
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	log.Info().Str("momento_id", out.ID.String()).Int("bytes", len(body)).Msg("Moment posted")
	return &out, nil
}

func momentoForm(in NovoMomento, file io.Reader, filename string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"tipo", in.Tipo},
		{"descricao", in.Descricao},
		{"turma_id", in.TurmaID},
		{"data_momento", in.DataMomento},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	for _, id := range in.AlunosIDs {
		if err := w.WriteField("alunos_ids", id); err != nil {
			return nil, "", err
		}
	}
	if file != nil {
		part, err := w.CreateFormFile("arquivo", filepath.Base(filename))
		if err != nil {
			return nil, "", err
		}
		n, err := io.Copy(part, io.LimitReader(file, MaxMomentoFileSize+1))
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", filename, err)
		}
		if n > MaxMomentoFileSize {
			return nil, "", validationError(fmt.Errorf("arquivo is larger than %d MB", MaxMomentoFileSize>>20))
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func validationError(err error) *Error {
	return &Error{Kind: ValidationError, Detail: strings.ReplaceAll(err.Error(), "\n", "; "), Err: err}
}
