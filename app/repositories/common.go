package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	"bumpboard/app/models"

	"github.com/go-playground/validator/v10"
)

// PostKeyPrefix namespaces post records in the store.
const PostKeyPrefix = "post:"

var (
	ErrNotFound    = errors.New("record not found")
	ErrIDExhausted = errors.New("could not allocate an unused post id")
)

var validate = validator.New()

// DecodeError marks a stored record that cannot be read back as a Post.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode post: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func postKey(id string) []byte {
	return []byte(PostKeyPrefix + id)
}

// EncodePost serializes a post for storage.
func EncodePost(post *models.Post) ([]byte, error) {
	data, err := json.Marshal(post)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal post: %w", err)
	}
	return data, nil
}

// DecodePost parses a stored record. Truncated or malformed input, and
// records missing their identifiers, yield a *DecodeError.
func DecodePost(data []byte) (*models.Post, error) {
	var post models.Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if err := validate.Struct(&post); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &post, nil
}
