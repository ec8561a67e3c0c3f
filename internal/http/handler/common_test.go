package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantType   string
		logged     bool
	}{
		{fmt.Errorf("get contact: %w", service.ErrNotFound), http.StatusNotFound, domain.ErrorTypeNotFound, false},
		{fmt.Errorf("assignee 4: %w", service.ErrInvalidInput), http.StatusBadRequest, domain.ErrorTypeBadRequest, false},
		{service.ErrUnauthorized, http.StatusUnauthorized, domain.ErrorTypeUnauthorized, false},
		{service.ErrForbidden, http.StatusForbidden, domain.ErrorTypeForbidden, false},
		{service.ErrConflict, http.StatusConflict, domain.ErrorTypeConflict, false},
		{errors.New("failed to list deals: connection refused"), http.StatusInternalServerError, domain.ErrorTypeUpstream, true},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			core, logs := observer.New(zap.ErrorLevel)
			w := httptest.NewRecorder()
			respondServiceError(w, zap.New(core), tt.err, "do thing")

			assert.Equal(t, tt.wantStatus, w.Code)
			var body domain.APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body.Type)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.logged, logs.Len() == 1)
		})
	}
}

func TestQueryLimit(t *testing.T) {
	for raw, want := range map[string]int{"": 20, "abc": 20, "0": 20, "5": 5, "500": 100} {
		r := httptest.NewRequest(http.MethodGet, "/contacts/search?limit="+raw, nil)
		assert.Equal(t, want, queryLimit(r, 20, 100), raw)
	}
}
