package repositories

import (
	"errors"
	"fmt"
	"log"

	"bumpboard/app/models"
)

const maxIDAttempts = 5

// PostRepository maps posts onto a Store. Every query is a full scan of the
// post prefix; there is no secondary index.
type PostRepository struct {
	store Store
	newID func() (string, error)
}

// NewPostRepository creates a PostRepository over store.
func NewPostRepository(store Store) *PostRepository {
	return &PostRepository{
		store: store,
		newID: func() (string, error) { return models.NewToken(models.PostIDLength) },
	}
}

// SetIDGenerator replaces the id source. Used by tests to force collisions.
func (r *PostRepository) SetIDGenerator(fn func() (string, error)) {
	r.newID = fn
}

// Create assigns post a fresh id and writes it. Ids already present in the
// store are regenerated.
func (r *PostRepository) Create(post *models.Post) error {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := r.newID()
		if err != nil {
			return fmt.Errorf("failed to generate post id: %w", err)
		}
		_, err = r.store.Get(postKey(id))
		if err == nil {
			log.Printf("post id %s already taken, regenerating", id)
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("failed to check post id: %w", err)
		}
		post.ID = id
		return r.Save(post)
	}
	return ErrIDExhausted
}

// Save writes post under its id, replacing any previous version.
func (r *PostRepository) Save(post *models.Post) error {
	data, err := EncodePost(post)
	if err != nil {
		return err
	}
	if err := r.store.Put(postKey(post.ID), data); err != nil {
		return fmt.Errorf("failed to store post %s: %w", post.ID, err)
	}
	return nil
}

// GetByID loads a single post.
func (r *PostRepository) GetByID(id string) (*models.Post, error) {
	data, err := r.store.Get(postKey(id))
	if err != nil {
		return nil, err
	}
	return DecodePost(data)
}

// Bump moves the activity time of post id forward to ts. It returns
// ErrNotFound when there is no such post.
func (r *PostRepository) Bump(id string, ts int64) error {
	post, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if !post.Touch(ts) {
		return nil
	}
	return r.Save(post)
}

// Scan calls fn with every readable post. Records that fail to decode are
// logged and skipped.
func (r *PostRepository) Scan(fn func(post *models.Post) error) error {
	return r.store.Scan([]byte(PostKeyPrefix), func(key, value []byte) error {
		post, err := DecodePost(value)
		if err != nil {
			log.Printf("skipping unreadable record %q: %v", key, err)
			return nil
		}
		return fn(post)
	})
}

// ListRoots returns every original post in store order.
func (r *PostRepository) ListRoots() ([]*models.Post, error) {
	var roots []*models.Post
	err := r.Scan(func(post *models.Post) error {
		if post.IsRoot() {
			roots = append(roots, post)
		}
		return nil
	})
	return roots, err
}

// ListReplies returns every post whose parent is rootID, in store order.
func (r *PostRepository) ListReplies(rootID string) ([]*models.Post, error) {
	var replies []*models.Post
	err := r.Scan(func(post *models.Post) error {
		if post.ParentID == rootID {
			replies = append(replies, post)
		}
		return nil
	})
	return replies, err
}

// ReplyCount is the number of replies to rootID.
func (r *PostRepository) ReplyCount(rootID string) (int, error) {
	replies, err := r.ListReplies(rootID)
	if err != nil {
		return 0, err
	}
	return len(replies), nil
}

// ReplyCounts counts replies for every parent id in a single scan.
func (r *PostRepository) ReplyCounts() (map[string]int, error) {
	counts := make(map[string]int)
	err := r.Scan(func(post *models.Post) error {
		if !post.IsRoot() {
			counts[post.ParentID]++
		}
		return nil
	})
	return counts, err
}
