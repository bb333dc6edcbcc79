package clierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/habedi/escola/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAPI_MapsEveryKind(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantType    Type
		wantMessage string
	}{
		{
			name:        "wrong password",
			err:         &client.Error{Kind: client.InvalidCredentials, StatusCode: 401},
			wantType:    Auth,
			wantMessage: "Invalid email or password.",
		},
		{
			name:        "refresh failed",
			err:         &client.Error{Kind: client.SessionExpired},
			wantType:    Auth,
			wantMessage: "Your session has expired. Please run `escola login` again.",
		},
		{
			name:        "401 after retry",
			err:         &client.Error{Kind: client.Unauthorized, StatusCode: 401},
			wantType:    Auth,
			wantMessage: "Your session has expired. Please run `escola login` again.",
		},
		{
			name:        "forbidden",
			err:         &client.Error{Kind: client.Forbidden, StatusCode: 403},
			wantType:    Forbidden,
			wantMessage: "You are not allowed to list students.",
		},
		{
			name:        "not found",
			err:         &client.Error{Kind: client.NotFound, StatusCode: 404},
			wantType:    NotFound,
			wantMessage: "Failed to list students: not found.",
		},
		{
			name: "field errors",
			err: &client.Error{Kind: client.ValidationError, StatusCode: 400,
				Fields: map[string][]string{"data": {"Data não pode ser futura."}}},
			wantType:    Validation,
			wantMessage: "Failed to list students: validation error (HTTP 400); data: Data não pode ser futura.",
		},
		{
			name:        "no connection",
			err:         &client.Error{Kind: client.NetworkUnavailable, Err: errors.New("dial tcp: refused")},
			wantType:    Network,
			wantMessage: "The server could not be reached. Check your connection and the API URL.",
		},
		{
			name:        "server error",
			err:         &client.Error{Kind: client.ServerError, StatusCode: 502, Detail: "Bad Gateway"},
			wantType:    Internal,
			wantMessage: "Failed to list students: server error (HTTP 502): Bad Gateway",
		},
		{
			name:        "wrapped by the caller",
			err:         fmt.Errorf("page 2: %w", &client.Error{Kind: client.NotFound, StatusCode: 404}),
			wantType:    NotFound,
			wantMessage: "Failed to list students: not found.",
		},
		{
			name:        "not an API error",
			err:         errors.New("disk full"),
			wantType:    Internal,
			wantMessage: "Failed to list students: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromAPI("list students", tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantMessage, got.Error())
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestFromAPI_MatchesClientSentinels(t *testing.T) {
	got := FromAPI("post the moment", &client.Error{Kind: client.ValidationError, Detail: "arquivo is larger than 10 MB"})

	assert.ErrorIs(t, got, client.ErrValidation)
	assert.NotErrorIs(t, got, client.ErrNotFound)
	assert.Equal(t, 2, got.Type.ExitCode())
}

func TestFromAPI_KeepsExistingCLIError(t *testing.T) {
	inner := New(Download, "2 of 5 downloads failed.", errors.New("boom"))
	wrapped := fmt.Errorf("momentos: %w", inner)

	assert.Same(t, inner, FromAPI("download moments", wrapped))
}

func TestFromAPI_Nil(t *testing.T) {
	assert.Nil(t, FromAPI("list students", nil))
}

func TestType_ExitCode(t *testing.T) {
	codes := map[Type]int{
		Validation: 2,
		Auth:       3,
		Forbidden:  3,
		NotFound:   4,
		Network:    5,
		Download:   1,
		Internal:   1,
		Type(""):   1,
	}
	for typ, want := range codes {
		assert.Equal(t, want, typ.ExitCode(), "exit code for %q", typ)
	}
}
