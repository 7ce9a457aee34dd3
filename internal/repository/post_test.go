package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/infmoney/omegahubsite/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPostTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
		&models.Forum{},
		&models.Category{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, banned bool) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     models.RoleUser,
		IsBanned: banned,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createPost(t *testing.T, db *gorm.DB, author *models.User, title string, mutate ...func(*models.Post)) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:       title,
		Description: "desc",
		Code:        "print('hi')",
		Language:    "lua",
	}
	if author != nil {
		post.AuthorID = &author.ID
	}
	for _, m := range mutate {
		m(post)
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func TestRecordVote(t *testing.T) {
	t.Parallel()
	db := setupPostTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "author", false)
	voter := createUser(t, db, "voter", false)
	post := createPost(t, db, author, "script")

	t.Run("first vote increments", func(t *testing.T) {
		require.NoError(t, repo.RecordVote(ctx, post.ID, voter.ID, models.VoteUp))
		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Upvotes)
		assert.Equal(t, 0, got.Downvotes)
	})

	t.Run("repeat vote is a no-op", func(t *testing.T) {
		require.NoError(t, repo.RecordVote(ctx, post.ID, voter.ID, models.VoteUp))
		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Upvotes)
		assert.Equal(t, 0, got.Downvotes)
	})

	t.Run("direction switch moves the vote", func(t *testing.T) {
		require.NoError(t, repo.RecordVote(ctx, post.ID, voter.ID, models.VoteDown))
		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Upvotes)
		assert.Equal(t, 1, got.Downvotes)

		// Exactly one vote row exists for the pair.
		var count int64
		require.NoError(t, db.Model(&models.Vote{}).
			Where("post_id = ? AND user_id = ?", post.ID, voter.ID).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("vote on missing post", func(t *testing.T) {
		err := repo.RecordVote(ctx, 9999, voter.ID, models.VoteUp)
		require.Error(t, err)
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	})
}

func TestRecordView(t *testing.T) {
	t.Parallel()
	db := setupPostTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := createPost(t, db, createUser(t, db, "viewer_author", false), "script")

	require.NoError(t, repo.RecordView(ctx, post.ID))
	require.NoError(t, repo.RecordView(ctx, post.ID))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)

	err = repo.RecordView(ctx, 9999)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestRecordFavorite(t *testing.T) {
	t.Parallel()
	db := setupPostTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := createPost(t, db, createUser(t, db, "fav_author", false), "script")

	total, err := repo.RecordFavorite(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	total, err = repo.RecordFavorite(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, err = repo.RecordFavorite(ctx, 9999)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestSetPinned(t *testing.T) {
	t.Parallel()
	db := setupPostTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := createPost(t, db, createUser(t, db, "pin_author", false), "script")

	require.NoError(t, repo.SetPinned(ctx, post.ID, true))
	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPinned)

	// Pinning a pinned post succeeds without change.
	require.NoError(t, repo.SetPinned(ctx, post.ID, true))

	require.NoError(t, repo.SetPinned(ctx, post.ID, false))
	got, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPinned)

	err = repo.SetPinned(ctx, 9999, true)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestListVisibleBanFiltering(t *testing.T) {
	t.Parallel()
	db := setupPostTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	active := createUser(t, db, "active", false)
	banned := createUser(t, db, "banned", true)
	createPost(t, db, active, "from active")
	createPost(t, db, banned, "from banned")
	createPost(t, db, nil, "anonymous")

	posts, err := repo.ListVisible(ctx, SortNewest, 20, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.NotEqual(t, "from banned", p.Title)
	}

	// Unbanning restores visibility on the next read.
	require.NoError(t, db.Model(banned).Update("is_banned", false).Error)
	posts, err = repo.ListVisible(ctx, SortNewest, 20, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestListVisibleSortModes(t *testing.T) {
	t.Parallel()
	db := setupPostTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "sorter", false)
	now := time.Now()

	oldest := createPost(t, db, author, "oldest", func(p *models.Post) {
		p.CreatedAt = now.Add(-72 * time.Hour)
		p.Upvotes = 50
		p.Downvotes = 5
		p.Views = 10
	})
	pinned := createPost(t, db, author, "pinned", func(p *models.Post) {
		p.CreatedAt = now.Add(-48 * time.Hour)
		p.IsPinned = true
		p.Views = 5
	})
	newest := createPost(t, db, author, "newest", func(p *models.Post) {
		p.CreatedAt = now
		p.Upvotes = 2
		p.Views = 500
	})

	t.Run("default puts pinned first then recency", func(t *testing.T) {
		posts, err := repo.ListVisible(ctx, "", 20, 0)
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, pinned.ID, posts[0].ID)
		assert.Equal(t, newest.ID, posts[1].ID)
		assert.Equal(t, oldest.ID, posts[2].ID)
	})

	t.Run("oldest ignores pins", func(t *testing.T) {
		posts, err := repo.ListVisible(ctx, SortOldest, 20, 0)
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, oldest.ID, posts[0].ID)
	})

	t.Run("most-voted orders by net score", func(t *testing.T) {
		posts, err := repo.ListVisible(ctx, SortMostVoted, 20, 0)
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, oldest.ID, posts[0].ID)
		assert.Equal(t, newest.ID, posts[1].ID)
	})

	t.Run("most-viewed ignores pins", func(t *testing.T) {
		posts, err := repo.ListVisible(ctx, SortMostView, 20, 0)
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, newest.ID, posts[0].ID)
	})

	t.Run("unknown sort falls back to default", func(t *testing.T) {
		posts, err := repo.ListVisible(ctx, "bogus", 20, 0)
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, pinned.ID, posts[0].ID)
	})
}

func TestSearchRanksByEngagement(t *testing.T) {
	t.Parallel()
	db := setupPostTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "searcher", false)
	hot := createPost(t, db, author, "teleport helper", func(p *models.Post) {
		p.Upvotes = 100
		p.Favorites = 20
	})
	cold := createPost(t, db, author, "teleport basics", func(p *models.Post) {
		p.Upvotes = 1
	})
	createPost(t, db, author, "fishing bot")

	posts, err := repo.Search(ctx, "TELEPORT", 20, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, hot.ID, posts[0].ID)
	assert.Equal(t, cold.ID, posts[1].ID)
}

func TestListByAuthorVisibility(t *testing.T) {
	t.Parallel()
	db := setupPostTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	banned := createUser(t, db, "banned_author", true)
	createPost(t, db, banned, "hidden script")

	visible, err := repo.ListByAuthor(ctx, banned.ID, true)
	require.NoError(t, err)
	assert.Empty(t, visible)

	own, err := repo.ListByAuthor(ctx, banned.ID, false)
	require.NoError(t, err)
	assert.Len(t, own, 1)
}

func TestDeleteRemovesVotes(t *testing.T) {
	t.Parallel()
	db := setupPostTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "del_author", false)
	voter := createUser(t, db, "del_voter", false)
	post := createPost(t, db, author, "doomed")
	require.NoError(t, repo.RecordVote(ctx, post.ID, voter.ID, models.VoteUp))

	require.NoError(t, repo.Delete(ctx, post.ID))

	_, err := repo.GetByID(ctx, post.ID)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	var votes int64
	require.NoError(t, db.Model(&models.Vote{}).Where("post_id = ?", post.ID).Count(&votes).Error)
	assert.Zero(t, votes)

	err = repo.Delete(ctx, post.ID)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestFeaturedCapsAtSix(t *testing.T) {
	t.Parallel()
	db := setupPostTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "featured_author", false)
	for i := 0; i < 8; i++ {
		createPost(t, db, author, "post", func(p *models.Post) {
			p.CreatedAt = time.Now().Add(-time.Duration(i) * time.Hour)
		})
	}

	posts, err := repo.Featured(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, FeaturedCount)
}

func TestRecordViewConcurrent(t *testing.T) {
	t.Parallel()
	db := setupPostTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One shared connection: a second pool connection to :memory: would
	// see its own empty database.
	sqlDB.SetMaxOpenConns(1)

	repo := NewPostRepository(db)
	ctx := context.Background()
	post := createPost(t, db, createUser(t, db, "crowd_author", false), "script")

	const viewers = 25
	errs := make(chan error, viewers)
	var wg sync.WaitGroup
	for i := 0; i < viewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.RecordView(ctx, post.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, viewers, got.Views)
}

func TestUpdateFieldsLeavesCountersAlone(t *testing.T) {
	t.Parallel()
	db := setupPostTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := createPost(t, db, createUser(t, db, "editor", false), "script")
	require.NoError(t, repo.RecordView(ctx, post.ID))
	_, err := repo.RecordFavorite(ctx, post.ID)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateFields(ctx, post.ID, map[string]interface{}{"title": "edited"}))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Title)
	assert.Equal(t, 1, got.Views)
	assert.Equal(t, 1, got.Favorites)

	err = repo.UpdateFields(ctx, 9999, map[string]interface{}{"title": "x"})
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}
