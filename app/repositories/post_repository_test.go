package repositories

import (
	"errors"
	"testing"

	"bumpboard/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T) (*PostRepository, *BadgerStore) {
	store, err := NewBadgerStore("", Options{})
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return NewPostRepository(store), store
}

func createPost(t *testing.T, repo *PostRepository, parentID string, ts int64) *models.Post {
	post := &models.Post{
		ParentID: parentID,
		Title:    "Test Post",
		Message:  "Test message",
	}
	post.BeforeCreate(ts)
	require.NoError(t, repo.Create(post))
	return post
}

func TestPostRepository(t *testing.T) {
	repo, _ := setupTestRepository(t)

	t.Run("create and get post", func(t *testing.T) {
		post := &models.Post{
			Title:      "Hi",
			Message:    "hello",
			Attachment: "aB3dE9-cat.png",
		}
		post.BeforeCreate(1000)

		err := repo.Create(post)
		require.NoError(t, err)
		assert.Len(t, post.ID, models.PostIDLength)

		retrieved, err := repo.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, post, retrieved)
	})

	t.Run("get missing post", func(t *testing.T) {
		_, err := repo.GetByID("missing1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("bump moves activity forward only", func(t *testing.T) {
		root := createPost(t, repo, models.RootParentID, 2000)

		require.NoError(t, repo.Bump(root.ID, 3000))
		bumped, err := repo.GetByID(root.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3000), bumped.LastActivity)
		assert.Equal(t, int64(2000), bumped.CreatedAt)

		require.NoError(t, repo.Bump(root.ID, 2500))
		bumped, err = repo.GetByID(root.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3000), bumped.LastActivity)
	})

	t.Run("bump missing post", func(t *testing.T) {
		assert.ErrorIs(t, repo.Bump("nothere1", 5000), ErrNotFound)
	})
}

func TestPostRepositoryThreadIndex(t *testing.T) {
	repo, _ := setupTestRepository(t)

	a := createPost(t, repo, models.RootParentID, 1000)
	b := createPost(t, repo, models.RootParentID, 1100)
	r1 := createPost(t, repo, a.ID, 1200)
	r2 := createPost(t, repo, a.ID, 1300)
	r3 := createPost(t, repo, b.ID, 1400)

	roots, err := repo.ListRoots()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, postIDs(roots))

	replies, err := repo.ListReplies(a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{r1.ID, r2.ID}, postIDs(replies))

	replies, err = repo.ListReplies(b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{r3.ID}, postIDs(replies))

	count, err := repo.ReplyCount(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	counts, err := repo.ReplyCounts()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{a.ID: 2, b.ID: 1}, counts)
}

func TestPostRepositorySkipsCorruptRecords(t *testing.T) {
	repo, store := setupTestRepository(t)

	good := createPost(t, repo, models.RootParentID, 1000)
	require.NoError(t, store.Put([]byte(PostKeyPrefix+"broken1"), []byte(`{"id":"broken1","parent_id":`)))
	require.NoError(t, store.Put([]byte(PostKeyPrefix+"broken2"), []byte(`{"title":"no ids"}`)))

	roots, err := repo.ListRoots()
	require.NoError(t, err)
	assert.Equal(t, []string{good.ID}, postIDs(roots))

	_, err = repo.GetByID("broken1")
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestPostRepositoryRegeneratesTakenIDs(t *testing.T) {
	repo, _ := setupTestRepository(t)

	ids := []string{"dupe0001", "dupe0001", "fresh002"}
	repo.SetIDGenerator(func() (string, error) {
		id := ids[0]
		ids = ids[1:]
		return id, nil
	})

	first := createPost(t, repo, models.RootParentID, 1000)
	second := createPost(t, repo, models.RootParentID, 1001)
	assert.Equal(t, "dupe0001", first.ID)
	assert.Equal(t, "fresh002", second.ID)

	original, err := repo.GetByID("dupe0001")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), original.CreatedAt)
}

func TestPostRepositoryIDExhausted(t *testing.T) {
	repo, _ := setupTestRepository(t)
	repo.SetIDGenerator(func() (string, error) { return "same0001", nil })

	createPost(t, repo, models.RootParentID, 1000)

	post := &models.Post{Title: "t", Message: "m"}
	post.BeforeCreate(2000)
	assert.ErrorIs(t, repo.Create(post), ErrIDExhausted)
}

func TestPostRepositoryGeneratorError(t *testing.T) {
	repo, _ := setupTestRepository(t)
	boom := errors.New("entropy exhausted")
	repo.SetIDGenerator(func() (string, error) { return "", boom })

	post := &models.Post{Title: "t", Message: "m"}
	assert.ErrorIs(t, repo.Create(post), boom)
}

func postIDs(posts []*models.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}
