package client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPError_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   *Error
	}{
		{http.StatusBadRequest, ErrValidation},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrValidation},
		{http.StatusInternalServerError, ErrServerError},
		{http.StatusServiceUnavailable, ErrServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := newHTTPError(tt.status, []byte(`{}`))
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestNewHTTPError_DetailBody(t *testing.T) {
	err := newHTTPError(http.StatusNotFound, []byte(`{"detail":"Não encontrado."}`))
	assert.Equal(t, "Não encontrado.", err.Detail)
	assert.Empty(t, err.Fields)
	assert.Equal(t, "not found (HTTP 404): Não encontrado.", err.Error())
}

func TestNewHTTPError_FieldErrors(t *testing.T) {
	body := []byte(`{"data":["Não é possível criar uma agenda para uma data futura."],"aluno_id":"Este aluno não pertence à sua escola.","atividades":[{"horario":["invalid"]}]}`)
	err := newHTTPError(http.StatusBadRequest, body)

	require.Len(t, err.Fields, 3)
	assert.Equal(t, []string{"Não é possível criar uma agenda para uma data futura."}, err.Fields["data"])
	assert.Equal(t, []string{"Este aluno não pertence à sua escola."}, err.Fields["aluno_id"])
	assert.Len(t, err.Fields["atividades"], 1)
	assert.Contains(t, err.Error(), "aluno_id: Este aluno")
	assert.Contains(t, err.Error(), "validation error (HTTP 400)")
}

func TestNewHTTPError_NonJSONBody(t *testing.T) {
	err := newHTTPError(http.StatusBadGateway, []byte("<html>Bad Gateway</html>"))
	assert.Equal(t, "<html>Bad Gateway</html>", err.Detail)

	empty := newHTTPError(http.StatusBadGateway, nil)
	assert.Equal(t, "Bad Gateway", empty.Detail)
}

func TestError_IsMatchesKindThroughWrapping(t *testing.T) {
	inner := &Error{Kind: NetworkUnavailable, Err: errors.New("connection refused")}
	outer := &Error{Kind: SessionExpired, Detail: "session expired, please log in again", Err: inner}
	wrapped := fmt.Errorf("loading alunos: %w", outer)

	assert.ErrorIs(t, wrapped, ErrSessionExpired)
	assert.ErrorIs(t, wrapped, ErrNetworkUnavailable)
	assert.NotErrorIs(t, wrapped, ErrServerError)
	assert.Equal(t, "network unavailable: connection refused", inner.Error())
}

func TestError_WithKindKeepsDetail(t *testing.T) {
	orig := newHTTPError(http.StatusUnauthorized, []byte(`{"detail":"No active account"}`))
	re := orig.withKind(InvalidCredentials)

	assert.ErrorIs(t, re, ErrInvalidCredentials)
	assert.ErrorIs(t, orig, ErrUnauthorized, "the original is untouched")
	assert.Equal(t, orig.Detail, re.Detail)
	assert.Equal(t, orig.StatusCode, re.StatusCode)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "session expired", SessionExpired.String())
	assert.Equal(t, "unknown error", KindUnknown.String())
	assert.Equal(t, "unknown error", Kind(99).String())
}
