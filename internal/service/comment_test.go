package service

import (
	"context"
	"testing"

	"github.com/infmoney/omegahubsite/internal/models"
	"github.com/infmoney/omegahubsite/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCommentFixture(t *testing.T) (*CommentService, *gorm.DB) {
	t.Helper()
	db := setupServiceTestDB(t)
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	mod := NewModerationService(userRepo)
	return NewCommentService(commentRepo, postRepo, userRepo, mod.RequireActive, mod.IsAdmin), db
}

func TestCreatePostComment(t *testing.T) {
	t.Parallel()
	svc, db := newCommentFixture(t)
	ctx := context.Background()

	seedOwner(t, db)
	author := seedUser(t, db, "poster", models.RoleUser)
	commenter := seedUser(t, db, "commenter", models.RoleUser)
	post := &models.Post{AuthorID: &author.ID, Title: "t", Description: "d", Code: "c", Language: "lua"}
	require.NoError(t, db.Create(post).Error)

	got, err := svc.CreatePostComment(ctx, commenter.ID, post.ID, "  nice work  ")
	require.NoError(t, err)
	assert.Equal(t, "nice work", got.Content)
	assert.Equal(t, []models.BadgeTag{models.BadgeUser}, got.AuthorBadges)

	t.Run("empty content", func(t *testing.T) {
		_, err := svc.CreatePostComment(ctx, commenter.ID, post.ID, "   ")
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := svc.CreatePostComment(ctx, commenter.ID, 9999, "hello")
		require.Error(t, err)
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	})

	t.Run("banned commenter refused", func(t *testing.T) {
		require.NoError(t, db.Model(commenter).Update("is_banned", true).Error)
		_, err := svc.CreatePostComment(ctx, commenter.ID, post.ID, "hello")
		require.Error(t, err)
		assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))
	})
}

func TestProfileWallComments(t *testing.T) {
	t.Parallel()
	svc, db := newCommentFixture(t)
	ctx := context.Background()

	seedOwner(t, db)
	wallOwner := seedUser(t, db, "wall_owner", models.RoleUser)
	visitor := seedUser(t, db, "visitor", models.RoleUser)

	first, err := svc.CreateProfileComment(ctx, visitor.ID, wallOwner.ID, "first visit")
	require.NoError(t, err)
	_, err = svc.CreateProfileComment(ctx, visitor.ID, wallOwner.ID, "second visit")
	require.NoError(t, err)

	// Wall renders newest first.
	wall, err := svc.ListForProfile(ctx, wallOwner.ID)
	require.NoError(t, err)
	require.Len(t, wall, 2)
	assert.Equal(t, "second visit", wall[0].Content)

	t.Run("unknown profile", func(t *testing.T) {
		_, err := svc.CreateProfileComment(ctx, visitor.ID, 9999, "hello")
		require.Error(t, err)
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	})

	t.Run("wall owner may delete visitor comments", func(t *testing.T) {
		require.NoError(t, svc.DeleteComment(ctx, wallOwner.ID, first.ID))
		wall, err := svc.ListForProfile(ctx, wallOwner.ID)
		require.NoError(t, err)
		assert.Len(t, wall, 1)
	})
}

func TestDeleteCommentPermissions(t *testing.T) {
	t.Parallel()
	svc, db := newCommentFixture(t)
	ctx := context.Background()

	owner := seedOwner(t, db)
	author := seedUser(t, db, "poster", models.RoleUser)
	commenter := seedUser(t, db, "commenter", models.RoleUser)
	stranger := seedUser(t, db, "stranger", models.RoleUser)
	post := &models.Post{AuthorID: &author.ID, Title: "t", Description: "d", Code: "c", Language: "lua"}
	require.NoError(t, db.Create(post).Error)

	newComment := func(t *testing.T) *EnrichedComment {
		c, err := svc.CreatePostComment(ctx, commenter.ID, post.ID, "hot take")
		require.NoError(t, err)
		return c
	}

	t.Run("stranger refused", func(t *testing.T) {
		c := newComment(t)
		err := svc.DeleteComment(ctx, stranger.ID, c.ID)
		require.Error(t, err)
		assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))
	})

	t.Run("author deletes own", func(t *testing.T) {
		c := newComment(t)
		require.NoError(t, svc.DeleteComment(ctx, commenter.ID, c.ID))
	})

	t.Run("admin deletes anything", func(t *testing.T) {
		c := newComment(t)
		require.NoError(t, svc.DeleteComment(ctx, owner.ID, c.ID))
	})

	t.Run("unknown comment", func(t *testing.T) {
		err := svc.DeleteComment(ctx, stranger.ID, 9999)
		require.Error(t, err)
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	})
}

func TestBannedAuthorsHiddenFromPostComments(t *testing.T) {
	t.Parallel()
	svc, db := newCommentFixture(t)
	ctx := context.Background()

	seedOwner(t, db)
	author := seedUser(t, db, "poster", models.RoleUser)
	loud := seedUser(t, db, "loud", models.RoleUser)
	quiet := seedUser(t, db, "quiet", models.RoleUser)
	post := &models.Post{AuthorID: &author.ID, Title: "t", Description: "d", Code: "c", Language: "lua"}
	require.NoError(t, db.Create(post).Error)

	_, err := svc.CreatePostComment(ctx, loud.ID, post.ID, "from loud")
	require.NoError(t, err)
	_, err = svc.CreatePostComment(ctx, quiet.ID, post.ID, "from quiet")
	require.NoError(t, err)

	require.NoError(t, db.Model(loud).Update("is_banned", true).Error)

	comments, err := svc.ListForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "from quiet", comments[0].Content)
}
