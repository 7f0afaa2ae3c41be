package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	up, err := Names(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_initial.up.sql"}, up)

	down, err := Names(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_initial.down.sql"}, down)
}

func TestInitialSchemaHasQuotaColumns(t *testing.T) {
	sql, err := files.ReadFile("001_initial.up.sql")
	require.NoError(t, err)

	for _, col := range []string{"daily_ai_conversations_used", "last_conversation_reset", "is_premium", "post_likes"} {
		assert.Contains(t, string(sql), col)
	}
}
