package database

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The catalog repository binds kids_only, premium_experience and outdoor as
// Go bools; pgx has no encode plan for bool into a TEXT column, so the
// schema must declare them BOOLEAN.
func TestSchemaDeclaresBooleanPOIFlags(t *testing.T) {
	sql, err := migrationFS.ReadFile("migrations/000001_init_schema.up.sql")
	require.NoError(t, err)

	for _, column := range []string{"kids_only", "premium_experience", "outdoor"} {
		pattern := regexp.MustCompile(column + `\s+BOOLEAN`)
		assert.True(t, pattern.Match(sql), "column %s must be BOOLEAN", column)
	}
}
