package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/habedi/escola/pkg/hasher"
	"github.com/habedi/escola/pkg/pool"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// ErrNoMedia is returned for moments without an attached file.
var ErrNoMedia = errors.New("moment has no media file")

// ErrDuplicateMedia is reported by DownloadMomentos for a moment whose file name collides with
// another moment of the same batch.
var ErrDuplicateMedia = errors.New("duplicate media file in batch")

// DownloadOptions controls where and how moment media is saved.
type DownloadOptions struct {
	Dir       string
	Progress  io.Writer // progress bar output; nil disables it
	HashAlgo  string    // checksum computed while writing; empty skips it
	Overwrite bool
}

// DownloadResult describes a saved media file.
type DownloadResult struct {
	MomentoID ID
	Path      string
	Bytes     int64
	Checksum  string
	Skipped   bool // the file existed and Overwrite was false
}

// MediaURL returns the location of the moment's file, preferring the absolute arquivo_url.
func (m *Momento) MediaURL() string {
	if m.ArquivoURL != nil && *m.ArquivoURL != "" {
		return *m.ArquivoURL
	}
	if m.Arquivo != nil {
		return *m.Arquivo
	}
	return ""
}

// DownloadMomentoArquivo saves the media of m into opts.Dir. The bearer token is only sent
// when the file is served from the API origin; such requests get the same refresh-once
// treatment as API calls.
func (c *Client) DownloadMomentoArquivo(ctx context.Context, m *Momento, opts DownloadOptions) (*DownloadResult, error) {
	raw := m.MediaURL()
	if raw == "" {
		return nil, ErrNoMedia
	}
	if opts.HashAlgo != "" && !hasher.Supported(opts.HashAlgo) {
		return nil, fmt.Errorf("unsupported hash algorithm: %s", opts.HashAlgo)
	}
	target, err := c.mediaURL(raw)
	if err != nil {
		return nil, err
	}
	if err := ensureDirExists(opts.Dir); err != nil {
		return nil, err
	}

	fileName := mediaFileName(m, target)
	filePath := filepath.Join(opts.Dir, fileName)
	result := &DownloadResult{MomentoID: m.ID, Path: filePath}
	if !opts.Overwrite {
		if info, err := os.Stat(filePath); err == nil && !info.IsDir() {
			log.Info().Str("path", filePath).Msg("File already exists, skipping download")
			result.Bytes = info.Size()
			result.Skipped = true
			return result, nil
		}
	}

	cl := call{method: http.MethodGet, path: target.String(), requestID: uuid.NewString()}
	resp, err := c.openMedia(ctx, target, cl)
	if err != nil && c.sameOrigin(target) {
		if rerr := c.recoverUnauthorized(ctx, cl, err); rerr != nil {
			return nil, rerr
		}
		resp, err = c.openMedia(ctx, target, cl.retried())
	}
	if err != nil {
		return nil, err
	}
	defer closeResponseBody(resp)

	written, sum, err := saveMedia(ctx, resp, filePath, fileName, opts)
	if err != nil {
		return nil, err
	}
	result.Bytes = written
	result.Checksum = sum
	log.Info().Str("path", filePath).Int64("bytes", written).Msg("Media downloaded")
	return result, nil
}

// DownloadMomentos saves the media of several moments with up to workers parallel downloads.
// Moments without media are skipped silently; moments resolving to an already reserved file
// name fail with ErrDuplicateMedia instead of racing on it.
func (c *Client) DownloadMomentos(ctx context.Context, momentos []Momento, workers int, opts DownloadOptions) ([]DownloadResult, []pool.Failure[Momento]) {
	var withMedia []Momento
	var rejected []pool.Failure[Momento]
	reserved := make(map[string]ID)
	for _, m := range momentos {
		raw := m.MediaURL()
		if raw == "" {
			continue
		}
		if target, err := c.mediaURL(raw); err == nil {
			name := mediaFileName(&m, target)
			if owner, taken := reserved[name]; taken {
				rejected = append(rejected, pool.Failure[Momento]{
					Item: m,
					Err:  fmt.Errorf("%w: %s is already saved by moment %s", ErrDuplicateMedia, name, owner),
				})
				continue
			}
			reserved[name] = m.ID
		}
		withMedia = append(withMedia, m)
	}

	results := make(chan DownloadResult, len(withMedia))
	failures := pool.Run(ctx, withMedia, workers, func(ctx context.Context, m Momento) error {
		res, err := c.DownloadMomentoArquivo(ctx, &m, opts)
		if err != nil {
			return err
		}
		results <- *res
		return nil
	})
	close(results)
	failures = append(rejected, failures...)

	var done []DownloadResult
	for r := range results {
		done = append(done, r)
	}
	return done, failures
}

// mediaURL resolves a media location. Relative paths such as "/media/x.jpg" hang off the
// API origin, not the API prefix.
func (c *Client) mediaURL(raw string) (*url.URL, error) {
	ref, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid media URL %q: %w", raw, err)
	}
	u := c.baseURL.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid media URL %q: scheme must be http or https", raw)
	}
	return u, nil
}

func (c *Client) openMedia(ctx context.Context, target *url.URL, cl call) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, cl.requestID)
	if c.sameOrigin(target) {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log.Debug().Str("url", target.String()).Int("retry", cl.retries).Msg("Requesting media")
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("download of %s aborted: %w", target.Redacted(), ctxErr)
		}
		return nil, &Error{Kind: NetworkUnavailable, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		closeResponseBody(resp)
		return nil, newHTTPError(resp.StatusCode, body)
	}
	return resp, nil
}

// saveMedia streams the body into a temporary file and renames it into place once complete.
func saveMedia(ctx context.Context, resp *http.Response, filePath, fileName string, opts DownloadOptions) (int64, string, error) {
	tmpPath := filePath + ".part"
	file, err := os.Create(tmpPath)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create %s: %w", tmpPath, err)
	}
	cleanup := func() {
		_ = file.Close()
		_ = os.Remove(tmpPath)
	}

	var dst io.Writer = file
	var sum func() string
	if opts.HashAlgo != "" {
		h, err := hasher.New(opts.HashAlgo)
		if err != nil {
			cleanup()
			return 0, "", err
		}
		dst = io.MultiWriter(file, h)
		sum = func() string { return hasher.Hex(h) }
	}

	progressWriter := opts.Progress
	if progressWriter == nil {
		progressWriter = io.Discard
	}
	bar := progressbar.NewOptions64(
		resp.ContentLength, // -1 shows a spinner
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", fileName)),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWriter(progressWriter),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
	)
	reader := progressbar.NewReader(resp.Body, bar)

	buffer := make([]byte, 32*1024)
	written, err := io.CopyBuffer(dst, &reader, buffer)
	if err != nil {
		cleanup()
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Info().Str("file", fileName).Msg("Download cancelled")
			return 0, "", ctxErr
		}
		return 0, "", fmt.Errorf("failed to save %s: %w", filePath, err)
	}
	_ = bar.Finish()

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, "", fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return 0, "", fmt.Errorf("failed to move %s into place: %w", filePath, err)
	}

	checksum := ""
	if sum != nil {
		checksum = sum()
	}
	return written, checksum, nil
}

// mediaFileName prefixes the server's file name with the moment id, since different moments
// often upload files with the same base name.
func mediaFileName(m *Momento, u *url.URL) string {
	base := ""
	if !strings.HasSuffix(u.Path, "/") {
		base = path.Base(u.Path)
	}
	if base == "." || base == ".." || base == "/" {
		base = ""
	}
	id := strings.NewReplacer("/", "_", `\`, "_").Replace(string(m.ID))
	if id == "." || id == ".." {
		id = ""
	}
	switch {
	case id != "" && base != "":
		return filepath.Base(id + "-" + base)
	case id != "":
		return filepath.Base(id)
	case base != "":
		return filepath.Base(base)
	default:
		return "momento"
	}
}

func ensureDirExists(dir string) error {
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path %s exists but is not a directory", dir)
		}
		return nil
	}
	if os.IsNotExist(err) {
		log.Info().Msgf("Creating directory: %s", dir)
		return os.MkdirAll(dir, 0o755)
	}
	return err
}
