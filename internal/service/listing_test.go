package service

import (
	"context"
	"testing"
	"time"

	"github.com/infmoney/omegahubsite/internal/models"
	"github.com/infmoney/omegahubsite/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type listingFixture struct {
	db       *gorm.DB
	listing  *ListingService
	posts    *PostService
	mod      *ModerationService
	postRepo repository.PostRepository
}

func newListingFixture(t *testing.T) *listingFixture {
	t.Helper()
	db := setupServiceTestDB(t)
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	forumRepo := repository.NewForumRepository(db)
	mod := NewModerationService(userRepo)
	return &listingFixture{
		db:       db,
		listing:  NewListingService(postRepo, mod.CanView, mod.IsAdmin),
		posts:    NewPostService(postRepo, forumRepo, mod.RequireActive, mod.CanModify),
		mod:      mod,
		postRepo: postRepo,
	}
}

func (f *listingFixture) seedPost(t *testing.T, author *models.User, title string, mutate ...func(*models.Post)) *models.Post {
	t.Helper()
	post := &models.Post{Title: title, Description: "d", Code: "c", Language: "lua"}
	if author != nil {
		post.AuthorID = &author.ID
	}
	for _, m := range mutate {
		m(post)
	}
	require.NoError(t, f.db.Create(post).Error)
	return post
}

func TestListPinPrecedenceScenario(t *testing.T) {
	t.Parallel()
	f := newListingFixture(t)
	ctx := context.Background()

	seedOwner(t, f.db)
	author := seedUser(t, f.db, "author", models.RoleUser)
	now := time.Now()

	old := f.seedPost(t, author, "old pinned", func(p *models.Post) {
		p.CreatedAt = now.Add(-96 * time.Hour)
		p.IsPinned = true
		p.Upvotes = 1
	})
	popular := f.seedPost(t, author, "popular", func(p *models.Post) {
		p.CreatedAt = now.Add(-48 * time.Hour)
		p.Upvotes = 300
	})
	fresh := f.seedPost(t, author, "fresh", func(p *models.Post) {
		p.CreatedAt = now
	})

	t.Run("default listing leads with the pinned post", func(t *testing.T) {
		got, err := f.listing.List(ctx, "", 20, 0)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, old.ID, got[0].ID)
		assert.Equal(t, fresh.ID, got[1].ID)
		assert.Equal(t, popular.ID, got[2].ID)
	})

	t.Run("most-voted drops pin priority", func(t *testing.T) {
		got, err := f.listing.List(ctx, repository.SortMostVoted, 20, 0)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, popular.ID, got[0].ID)
	})

	t.Run("score and badges are attached", func(t *testing.T) {
		got, err := f.listing.List(ctx, repository.SortMostVoted, 20, 0)
		require.NoError(t, err)
		assert.Equal(t, 300, got[0].Score)
		assert.Equal(t, []models.BadgeTag{models.BadgeUser}, got[0].AuthorBadges)
	})
}

func TestBanHidesAndRestoresContent(t *testing.T) {
	t.Parallel()
	f := newListingFixture(t)
	ctx := context.Background()

	seedOwner(t, f.db)
	author := seedUser(t, f.db, "victim", models.RoleUser)
	f.seedPost(t, author, "their script")

	got, err := f.listing.List(ctx, "", 20, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, f.db.Model(author).Update("is_banned", true).Error)
	got, err = f.listing.List(ctx, "", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	// The author still sees their own posts.
	own, err := f.listing.ByAuthor(ctx, author.ID, author.ID)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	// A stranger does not.
	stranger := seedUser(t, f.db, "stranger", models.RoleUser)
	other, err := f.listing.ByAuthor(ctx, stranger.ID, author.ID)
	require.NoError(t, err)
	assert.Empty(t, other)

	// Unban restores everything with no extra bookkeeping.
	require.NoError(t, f.db.Model(author).Update("is_banned", false).Error)
	got, err = f.listing.List(ctx, "", 20, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGetPostCountsView(t *testing.T) {
	t.Parallel()
	f := newListingFixture(t)
	ctx := context.Background()

	seedOwner(t, f.db)
	author := seedUser(t, f.db, "author", models.RoleUser)
	post := f.seedPost(t, author, "viewed")

	got, err := f.listing.GetPost(ctx, 0, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)

	got, err = f.listing.GetPost(ctx, 0, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)
}

func TestGetPostHiddenForBannedAuthor(t *testing.T) {
	t.Parallel()
	f := newListingFixture(t)
	ctx := context.Background()

	seedOwner(t, f.db)
	author := seedUser(t, f.db, "banned", models.RoleUser)
	require.NoError(t, f.db.Model(author).Update("is_banned", true).Error)
	post := f.seedPost(t, author, "hidden")

	// Strangers get a NotFound, not a Forbidden; hidden content does not
	// advertise its existence.
	stranger := seedUser(t, f.db, "stranger", models.RoleUser)
	_, err := f.listing.GetPost(ctx, stranger.ID, post.ID)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	// The author still reaches it.
	got, err := f.listing.GetPost(ctx, author.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
}

func TestVoteThroughService(t *testing.T) {
	t.Parallel()
	f := newListingFixture(t)
	ctx := context.Background()

	seedOwner(t, f.db)
	author := seedUser(t, f.db, "author", models.RoleUser)
	voter := seedUser(t, f.db, "voter", models.RoleUser)
	post := f.seedPost(t, author, "votable")

	got, err := f.posts.Vote(ctx, voter.ID, post.ID, "up")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Upvotes)

	// Same direction again: nothing moves.
	got, err = f.posts.Vote(ctx, voter.ID, post.ID, "up")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Upvotes)
	assert.Equal(t, 0, got.Downvotes)

	// Switch: old counter gives the vote back, new one takes it.
	got, err = f.posts.Vote(ctx, voter.ID, post.ID, "down")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Upvotes)
	assert.Equal(t, 1, got.Downvotes)

	t.Run("invalid direction", func(t *testing.T) {
		_, err := f.posts.Vote(ctx, voter.ID, post.ID, "sideways")
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("banned voter refused", func(t *testing.T) {
		require.NoError(t, f.db.Model(voter).Update("is_banned", true).Error)
		_, err := f.posts.Vote(ctx, voter.ID, post.ID, "up")
		require.Error(t, err)
		assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))
	})
}

func TestFavoriteThroughService(t *testing.T) {
	t.Parallel()
	f := newListingFixture(t)
	ctx := context.Background()

	seedOwner(t, f.db)
	author := seedUser(t, f.db, "author", models.RoleUser)
	fan := seedUser(t, f.db, "fan", models.RoleUser)
	post := f.seedPost(t, author, "lovable")

	total, err := f.posts.Favorite(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	total, err = f.posts.Favorite(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestCreatePostValidation(t *testing.T) {
	t.Parallel()
	f := newListingFixture(t)
	ctx := context.Background()

	seedOwner(t, f.db)
	author := seedUser(t, f.db, "writer", models.RoleUser)

	t.Run("defaults language", func(t *testing.T) {
		post, err := f.posts.CreatePost(ctx, CreatePostInput{
			AuthorID:    &author.ID,
			Title:       "My Script",
			Description: "does things",
			Code:        "print(1)",
		})
		require.NoError(t, err)
		assert.Equal(t, "javascript", post.Language)
	})

	t.Run("missing code rejected", func(t *testing.T) {
		_, err := f.posts.CreatePost(ctx, CreatePostInput{
			AuthorID:    &author.ID,
			Title:       "My Script",
			Description: "does things",
		})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("banned author refused", func(t *testing.T) {
		banned := seedUser(t, f.db, "muted", models.RoleUser)
		require.NoError(t, f.db.Model(banned).Update("is_banned", true).Error)
		_, err := f.posts.CreatePost(ctx, CreatePostInput{
			AuthorID:    &banned.ID,
			Title:       "Nope",
			Description: "d",
			Code:        "c",
		})
		require.Error(t, err)
		assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))
	})
}

func TestUpdatePostKeepsCounters(t *testing.T) {
	t.Parallel()
	f := newListingFixture(t)
	ctx := context.Background()

	seedOwner(t, f.db)
	author := seedUser(t, f.db, "editor", models.RoleUser)
	post := f.seedPost(t, author, "before", func(p *models.Post) {
		p.Views = 7
		p.Upvotes = 3
		p.Favorites = 2
	})

	title := "after"
	got, err := f.posts.UpdatePost(ctx, UpdatePostInput{ActorID: author.ID, PostID: post.ID, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)

	// The edit writes only the edited columns; every counter survives.
	var check models.Post
	require.NoError(t, f.db.First(&check, post.ID).Error)
	assert.Equal(t, "after", check.Title)
	assert.Equal(t, 7, check.Views)
	assert.Equal(t, 3, check.Upvotes)
	assert.Equal(t, 2, check.Favorites)
}
