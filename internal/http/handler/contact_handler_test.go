package handler_test

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactHandler_CRUD(t *testing.T) {
	h := newHandlers(t)
	acme := testutil.CreateCompany(t, h.db, "Acme")
	other := testutil.CreateCompany(t, h.db, "Other")
	ann := testutil.CreateProfile(t, h.db, acme.ID, domain.ProfileRoleAdmin, "Ann")
	zed := testutil.CreateProfile(t, h.db, other.ID, domain.ProfileRoleAdmin, "Zed")

	w := call(t, http.MethodPost, "/contacts", "/contacts", h.contact.Create, ann,
		map[string]interface{}{"fullname": "Nora Nordmann", "email": "nora@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created domain.ContactDTO
	decode(t, w, &created)
	assert.Equal(t, "Nora Nordmann", created.Fullname)
	assert.Equal(t, "/api/v1/contacts/"+itoa(created.ID), w.Header().Get("Location"))

	w = call(t, http.MethodGet, "/contacts/{id}", "/contacts/"+itoa(created.ID), h.contact.Get, ann, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(t, http.MethodGet, "/contacts/{id}", "/contacts/"+itoa(created.ID), h.contact.Get, zed, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "other tenants see nothing")

	w = call(t, http.MethodPut, "/contacts/{id}", "/contacts/"+itoa(created.ID), h.contact.Update, ann,
		map[string]interface{}{"phone": "+47 123"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated domain.ContactDTO
	decode(t, w, &updated)
	assert.Equal(t, "+47 123", updated.Phone)

	w = call(t, http.MethodDelete, "/contacts/{id}", "/contacts/"+itoa(created.ID), h.contact.Delete, ann, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = call(t, http.MethodDelete, "/contacts/{id}", "/contacts/"+itoa(created.ID), h.contact.Delete, ann, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContactHandler_BadRequests(t *testing.T) {
	h := newHandlers(t)
	acme := testutil.CreateCompany(t, h.db, "Acme")
	ann := testutil.CreateProfile(t, h.db, acme.ID, domain.ProfileRoleAdmin, "Ann")

	tests := []struct {
		name      string
		body      interface{}
		wantType  string
		wantField string
	}{
		{"malformed json", `{"fullname":`, domain.ErrorTypeBadRequest, ""},
		{"unknown field", map[string]string{"fullname": "A", "nickname": "B"}, domain.ErrorTypeBadRequest, ""},
		{"missing fullname", map[string]string{"email": "a@b.test"}, domain.ErrorTypeValidation, "fullname"},
		{"bad email", map[string]string{"fullname": "A", "email": "nope"}, domain.ErrorTypeValidation, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(t, http.MethodPost, "/contacts", "/contacts", h.contact.Create, ann, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var apiErr domain.APIError
			decode(t, w, &apiErr)
			assert.Equal(t, tt.wantType, apiErr.Type)
			if tt.wantField != "" {
				assert.Contains(t, apiErr.Errors, tt.wantField)
			}
		})
	}

	w := call(t, http.MethodGet, "/contacts/{id}", "/contacts/abc", h.contact.Get, ann, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, http.MethodGet, "/contacts", "/contacts", h.contact.List, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestContactHandler_ExportImport(t *testing.T) {
	h := newHandlers(t)
	acme := testutil.CreateCompany(t, h.db, "Acme")
	ann := testutil.CreateProfile(t, h.db, acme.ID, domain.ProfileRoleAdmin, "Ann")
	testutil.CreateContact(t, h.db, ann.ID, "Nora", time.Now())

	w := call(t, http.MethodGet, "/contacts/export", "/contacts/export?format=csv", h.contact.Export, ann, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "contacts-"+itoa(acme.ID)+"-")
	assert.NotEmpty(t, w.Header().Get("X-Storage-Key"))
	assert.Equal(t, "1", w.Header().Get("X-Export-Count"))

	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Contact ID", rows[0][0])
	assert.Equal(t, "Nora", rows[1][1])

	w = call(t, http.MethodGet, "/contacts/export", "/contacts/export?format=yaml", h.contact.Export, ann, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, http.MethodPost, "/contacts/import", "/contacts/import?format=json", h.contact.Import, ann,
		`[{"fullname":"Ola"},{"fullname":""}]`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result domain.ImportResultDTO
	decode(t, w, &result)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 2, result.Failed[0].Row)
}
