package migrations_test

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/pulse-crm/crm-api/internal/database"
	"github.com/pulse-crm/crm-api/internal/testutil"
	"github.com/pulse-crm/crm-api/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var createTable = regexp.MustCompile(`(?s)CREATE TABLE (\w+) \((.*?)\n\);`)

func upSection(t *testing.T) string {
	t.Helper()
	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	var b strings.Builder
	for _, name := range files {
		raw, err := fs.ReadFile(migrations.FS, name)
		require.NoError(t, err)
		body := string(raw)
		require.Contains(t, body, "-- +goose Up", name)
		require.Contains(t, body, "-- +goose Down", name)
		up, _, _ := strings.Cut(body, "-- +goose Down")
		b.WriteString(up)
	}
	return b.String()
}

func TestMigrationsCoverModels(t *testing.T) {
	tables := map[string]string{}
	for _, m := range createTable.FindAllStringSubmatch(upSection(t), -1) {
		tables[m[1]] = m[2]
	}

	db := testutil.NewTestDB(t)
	for _, model := range database.Models() {
		stmt := &gorm.Statement{DB: db}
		require.NoError(t, stmt.Parse(model))

		body, ok := tables[stmt.Schema.Table]
		if !assert.True(t, ok, "no CREATE TABLE for %s", stmt.Schema.Table) {
			continue
		}
		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" {
				continue
			}
			assert.Regexp(t, `(?m)^\s+`+field.DBName+`\s`, body, "%s.%s missing", stmt.Schema.Table, field.DBName)
		}
	}
}
