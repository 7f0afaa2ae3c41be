package stories

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExport(t *testing.T) {
	s := &Story{
		ID:          "4b0c1a2e-0000-4000-8000-000000000001",
		Title:       "The Lighthouse",
		Description: "A keeper and a storm.",
		Content:     json.RawMessage(`{ "chapters": [ "one" ] }`),
	}

	t.Run("premium gets pdf", func(t *testing.T) {
		got := Export(s, true)

		assert.Equal(t, FormatPDF, got.Format)
		assert.Equal(t, "/api/v1/stories/"+s.ID+"/export/pdf", got.DownloadURL)
		assert.Empty(t, got.Content)
	})

	t.Run("free gets text", func(t *testing.T) {
		got := Export(s, false)

		assert.Equal(t, FormatText, got.Format)
		assert.Equal(t, "The Lighthouse\n\nA keeper and a storm.\n\n{\"chapters\":[\"one\"]}", got.Content)
		assert.Empty(t, got.DownloadURL)
	})
}

func TestStory_VisibleTo(t *testing.T) {
	private := &Story{UserID: "owner", IsPrivate: true}
	public := &Story{UserID: "owner"}

	assert.True(t, private.VisibleTo("owner"))
	assert.False(t, private.VisibleTo("someone"))
	assert.True(t, public.VisibleTo("someone"))
}
