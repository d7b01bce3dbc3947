package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"bumpboard/app/models"
	"bumpboard/app/repositories"
)

// Listing defaults.
const (
	DefaultPageSize     = 30
	DefaultPreviewChars = 2700
)

// Options configures a PostService.
type Options struct {
	PageSize            int
	PreviewChars        int
	RejectOrphanReplies bool
}

// PostService implements the board's write path and its listing and thread
// queries. One instance is shared by all requests; each operation holds the
// lock for all of its store access, writers exclusively.
type PostService struct {
	postRepo    *repositories.PostRepository
	attachments *AttachmentService
	opts        Options
	now         func() time.Time
	mutex       sync.RWMutex
}

// NewPostService creates a new PostService. attachments may be nil when the
// caller never passes attachments to Submit.
func NewPostService(postRepo *repositories.PostRepository, attachments *AttachmentService, opts Options) *PostService {
	if opts.PageSize < 1 {
		opts.PageSize = DefaultPageSize
	}
	if opts.PreviewChars < 1 {
		opts.PreviewChars = DefaultPreviewChars
	}
	return &PostService{
		postRepo:    postRepo,
		attachments: attachments,
		opts:        opts,
		now:         time.Now,
	}
}

// SetClock replaces the time source. Used by tests.
func (s *PostService) SetClock(now func() time.Time) {
	s.now = now
}

// PageSize is the number of threads per listing page.
func (s *PostService) PageSize() int {
	return s.opts.PageSize
}

// Submit validates and stores a new post and bumps the thread it replies to.
// att is an already ingested file or nil; it is discarded when the post is
// not written.
func (s *PostService) Submit(sub models.Submission, att *models.Attachment) (string, error) {
	sub.Normalize()
	if err := sub.Validate(); err != nil {
		s.discard(att)
		return "", err
	}
	title, message := sub.Escaped()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	parentID, err := s.resolveParent(sub.ParentID)
	if err != nil {
		s.discard(att)
		return "", err
	}

	now := s.now().UnixMilli()
	post := &models.Post{
		ParentID: parentID,
		Title:    title,
		Message:  message,
	}
	if att != nil {
		post.Attachment = att.Name
	}
	post.BeforeCreate(now)

	if err := s.postRepo.Create(post); err != nil {
		s.discard(att)
		return "", fmt.Errorf("failed to create post: %w", err)
	}

	if !post.IsRoot() {
		err := s.postRepo.Bump(parentID, now)
		var decodeErr *repositories.DecodeError
		if errors.Is(err, repositories.ErrNotFound) || errors.As(err, &decodeErr) {
			log.Printf("reply %s stored without thread %s", post.ID, parentID)
		} else if err != nil {
			return post.ID, fmt.Errorf("failed to bump thread %s: %w", parentID, err)
		}
	}

	return post.ID, nil
}

// resolveParent maps the requested parent onto the thread root. Replies to a
// reply are attached to that reply's thread so threading stays one level deep.
func (s *PostService) resolveParent(parentID string) (string, error) {
	if parentID == models.RootParentID {
		return parentID, nil
	}
	parent, err := s.postRepo.GetByID(parentID)
	var decodeErr *repositories.DecodeError
	switch {
	case err == nil:
		if !parent.IsRoot() {
			return parent.ParentID, nil
		}
		return parentID, nil
	case errors.Is(err, repositories.ErrNotFound), errors.As(err, &decodeErr):
		if s.opts.RejectOrphanReplies {
			return "", &models.ValidationError{Field: "ParentID", Reason: "Thread does not exist."}
		}
		return parentID, nil
	default:
		return "", fmt.Errorf("failed to load thread %s: %w", parentID, err)
	}
}

func (s *PostService) discard(att *models.Attachment) {
	if att != nil && s.attachments != nil {
		s.attachments.Discard(att)
	}
}

// GetPost loads a single post by id.
func (s *PostService) GetPost(id string) (*models.Post, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.postRepo.GetByID(id)
}

// Page returns listing page number (1-based, clamped) with threads ordered by
// most recent activity.
func (s *PostService) Page(number int) (*models.Page, error) {
	if number < 1 {
		number = 1
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	roots, err := s.postRepo.ListRoots()
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].LastActivity > roots[j].LastActivity
	})

	size := s.opts.PageSize
	totalPages := (len(roots) + size - 1) / size
	page := &models.Page{
		Number:  number,
		Posts:   []models.PostSummary{},
		HasPrev: number > 1,
		HasNext: number < totalPages,
	}
	if number > totalPages {
		return page, nil
	}

	offset := (number - 1) * size
	end := offset + size
	if end > len(roots) {
		end = len(roots)
	}

	counts, err := s.postRepo.ReplyCounts()
	if err != nil {
		return nil, fmt.Errorf("failed to count replies: %w", err)
	}

	for _, post := range roots[offset:end] {
		message, truncated := Truncate(post.Message, s.opts.PreviewChars)
		page.Posts = append(page.Posts, models.PostSummary{
			ID:         post.ID,
			Title:      post.Title,
			Message:    message,
			Truncated:  truncated,
			Attachment: post.Attachment,
			MediaKind:  models.MediaKindOf(post.Attachment),
			ReplyCount: counts[post.ID],
			Color:      DisplayColor(post.ID),
		})
	}
	return page, nil
}

// Thread returns the post id followed by its replies, oldest first. It
// returns repositories.ErrNotFound when id does not exist.
func (s *PostService) Thread(id string) (*models.Thread, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var root *models.Post
	var replies []*models.Post
	err := s.postRepo.Scan(func(post *models.Post) error {
		switch {
		case post.ID == id:
			root = post
		case post.ParentID == id:
			replies = append(replies, post)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load thread %s: %w", id, err)
	}
	if root == nil {
		return nil, repositories.ErrNotFound
	}

	sort.SliceStable(replies, func(i, j int) bool {
		if replies[i].CreatedAt != replies[j].CreatedAt {
			return replies[i].CreatedAt < replies[j].CreatedAt
		}
		return replies[i].ID < replies[j].ID
	})

	thread := &models.Thread{
		ParentID:      id,
		Root:          root,
		RootMediaKind: models.MediaKindOf(root.Attachment),
		Replies:       make([]models.Reply, 0, len(replies)),
	}
	for i, reply := range replies {
		thread.Replies = append(thread.Replies, models.Reply{
			Number:    i + 1,
			Post:      reply,
			MediaKind: models.MediaKindOf(reply.Attachment),
		})
	}
	return thread, nil
}
