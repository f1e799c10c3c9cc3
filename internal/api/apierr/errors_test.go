package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/scoreboard/internal/model"
	"github.com/mcoot/scoreboard/internal/services/auth"
	"github.com/mcoot/scoreboard/internal/services/token"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "validation message is passed through",
			err:        model.NewValidationError("Password must be at least 6 characters long"),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidRequest,
			wantMsg:    "Password must be at least 6 characters long",
		},
		{
			name:       "duplicate identity",
			err:        model.ErrDuplicateIdentity,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeDuplicateIdentity,
		},
		{
			name:       "missing credential",
			err:        model.ErrMissingCredential,
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeMissingCredential,
		},
		{
			name:       "invalid token",
			err:        fmt.Errorf("%w: signature is invalid", token.ErrInvalidToken),
			wantStatus: http.StatusForbidden,
			wantCode:   CodeInvalidCredential,
		},
		{
			name:       "bad login",
			err:        auth.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeInvalidCredentials,
		},
		{
			name:       "merged not found",
			err:        model.ErrScoreNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   CodeNotFound,
			wantMsg:    "Score not found or unauthorized",
		},
		{
			name:       "wrapped backend failure",
			err:        fmt.Errorf("failed to list scores: %w: %w", model.ErrBackendUnavailable, errors.New("dial tcp: refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   CodeBackendUnavailable,
		},
		{
			name:       "unknown error hides details",
			err:        errors.New("pq: relation does not exist"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternalError,
			wantMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.Error.Message)
			}
		})
	}
}
