package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rschick/cloud-slackbot/db"
)

func TestValidSchemaName(t *testing.T) {
	valid := []string{"public", "slackbot", "slackbot_test", "_private", "s1"}
	for _, schema := range valid {
		assert.True(t, db.ValidSchemaName(schema), "expected %q to be accepted", schema)
	}

	invalid := []string{"", "1schema", "Public", "public; DROP TABLE store_records", `pub"lic`, "my-schema", "my schema"}
	for _, schema := range invalid {
		assert.False(t, db.ValidSchemaName(schema), "expected %q to be rejected", schema)
	}
}

func TestNewConnectionRejectsBadSchemaName(t *testing.T) {
	conn, err := db.NewConnection("postgres://localhost/ignored", `pub"lic`)
	require.Error(t, err)
	assert.Nil(t, conn)
	assert.Contains(t, err.Error(), "invalid database schema name")
}

func TestNewPostgresStoreRepositoryRejectsBadSchemaName(t *testing.T) {
	assert.Panics(t, func() {
		db.NewPostgresStoreRepository(nil, "bad schema")
	})
}
