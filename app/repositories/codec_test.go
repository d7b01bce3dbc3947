package repositories

import (
	"testing"

	"bumpboard/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostCodec(t *testing.T) {
	t.Run("round trip with attachment", func(t *testing.T) {
		post := &models.Post{
			ID:           "aB3dE9xZ",
			ParentID:     "Qw12Er34",
			Title:        "&lt;hi&gt;",
			Message:      "body",
			Attachment:   "x1Y2z3-clip.webm",
			LastActivity: 1700000000123,
			CreatedAt:    1700000000000,
		}
		data, err := EncodePost(post)
		require.NoError(t, err)

		decoded, err := DecodePost(data)
		require.NoError(t, err)
		assert.Equal(t, post, decoded)
	})

	t.Run("round trip without attachment", func(t *testing.T) {
		post := &models.Post{ID: "aB3dE9xZ", ParentID: models.RootParentID, Title: "t", Message: "m"}
		data, err := EncodePost(post)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "attachment")

		decoded, err := DecodePost(data)
		require.NoError(t, err)
		assert.Empty(t, decoded.Attachment)
	})

	t.Run("truncated bytes", func(t *testing.T) {
		data, err := EncodePost(&models.Post{ID: "aB3dE9xZ", ParentID: "0", Title: "t"})
		require.NoError(t, err)

		_, err = DecodePost(data[:len(data)/2])
		var decodeErr *DecodeError
		assert.ErrorAs(t, err, &decodeErr)
	})

	t.Run("structurally invalid", func(t *testing.T) {
		for _, raw := range []string{``, `[]`, `{"id":"","parent_id":"0"}`, `{"id":"../x","parent_id":"0"}`} {
			_, err := DecodePost([]byte(raw))
			var decodeErr *DecodeError
			assert.ErrorAs(t, err, &decodeErr, "input %q", raw)
		}
	})
}
