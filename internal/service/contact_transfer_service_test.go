package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/storage"
	"github.com/pulse-crm/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactTransferService_ExportFormats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acme := testutil.CreateCompany(t, env.db, "Acme")
	ann := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleAdmin, "Ann")
	asAnn := testutil.AsUser(ctx, ann)
	kari := testutil.CreateContact(t, env.db, ann.ID, "Kari, Nordmann", fixedNow)

	t.Run("csv", func(t *testing.T) {
		doc, err := env.transfer.Export(asAnn, "csv")
		require.NoError(t, err)
		assert.Equal(t, 1, doc.Result.Count)
		assert.Equal(t, "text/csv", doc.Result.ContentType)

		lines := strings.Split(strings.TrimSpace(string(doc.Body)), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "Contact ID,Full Name,Email,Phone,Address,Created By", lines[0])
		assert.Contains(t, lines[1], `"Kari, Nordmann"`)

		ok, err := env.store.Exists(ctx, storage.BucketExports, doc.Result.StorageKey)
		require.NoError(t, err)
		assert.True(t, ok)

		rc, err := env.store.Download(ctx, storage.BucketExports, doc.Result.StorageKey)
		require.NoError(t, err)
		defer rc.Close()
		stored, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, doc.Body, stored)
	})

	t.Run("json", func(t *testing.T) {
		doc, err := env.transfer.Export(asAnn, "JSON")
		require.NoError(t, err)

		var rows []map[string]interface{}
		require.NoError(t, json.Unmarshal(doc.Body, &rows))
		require.Len(t, rows, 1)
		assert.EqualValues(t, kari.ID, rows[0]["contact_id"])
		assert.Equal(t, "Kari, Nordmann", rows[0]["fullname"])
	})

	t.Run("xml", func(t *testing.T) {
		doc, err := env.transfer.Export(asAnn, "xml")
		require.NoError(t, err)
		body := string(doc.Body)
		assert.Contains(t, body, "<contacts>")
		assert.Contains(t, body, "<fullname>Kari, Nordmann</fullname>")
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := env.transfer.Export(asAnn, "pdf")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestContactTransferService_ImportCSV(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acme := testutil.CreateCompany(t, env.db, "Acme")
	ann := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleAdmin, "Ann")
	asAnn := testutil.AsUser(ctx, ann)

	doc := strings.Join([]string{
		"Contact ID,Full Name,Email,Phone,Address,Created By",
		"99,Ola Nordmann,ola@example.com,123,Oslo,42",
		",,nobody@example.com,,,",
		"7,Per Hansen,not-an-email,,,",
		",Liv Berg,,,Bergen,",
	}, "\n")

	result, err := env.transfer.Import(asAnn, "csv", strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, 2, result.Failed[0].Row)
	assert.Equal(t, 3, result.Failed[1].Row)

	contacts, err := env.contacts.List(asAnn)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	for _, c := range contacts {
		assert.Equal(t, ann.ID, c.CreatedBy, "created_by column is ignored")
		assert.NotEqual(t, int64(99), c.ID)
	}
}

func TestContactTransferService_ImportJSON(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acme := testutil.CreateCompany(t, env.db, "Acme")
	ann := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleAdmin, "Ann")
	asAnn := testutil.AsUser(ctx, ann)

	result, err := env.transfer.Import(asAnn, "json", strings.NewReader(`[{"fullname":"A"},{"fullname":"  "}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 2, result.Failed[0].Row)

	_, err = env.transfer.Import(asAnn, "json", strings.NewReader(`{"fullname":`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	empty, err := env.transfer.Import(asAnn, "csv", strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, empty.Imported)
	assert.NotNil(t, empty.Failed)
}

func TestContactTransferService_ExportNameCarriesTimestamp(t *testing.T) {
	env := newTestEnv(t)
	env.transfer.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	ctx := context.Background()

	acme := testutil.CreateCompany(t, env.db, "Acme")
	ann := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleAdmin, "Ann")

	doc, err := env.transfer.Export(testutil.AsUser(ctx, ann), "csv")
	require.NoError(t, err)
	assert.Zero(t, doc.Result.Count)
	assert.True(t, strings.HasSuffix(doc.Result.StorageKey, ".csv"))
	assert.Equal(t, fmt.Sprintf("contacts-%d-20240102T030405Z.csv", acme.ID), doc.Filename)
}
