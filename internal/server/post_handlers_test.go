package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/infmoney/omegahubsite/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, authorID uint, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		AuthorID:    &authorID,
		Title:       title,
		Description: "d",
		Code:        "print(1)",
		Language:    "lua",
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

// asUser registers a route that injects the given user ID before calling the
// handler, standing in for the auth middleware.
func asUser(app *fiber.App, method, path string, userID uint, handler fiber.Handler) {
	app.Add(method, path, func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return handler(c)
	})
}

func TestVotePostEndpoint(t *testing.T) {
	t.Parallel()
	s, db, _ := setupServerTest(t)
	app := fiber.New()

	owner := createTestUser(t, db, "owner", models.RoleAdmin)
	voter := createTestUser(t, db, "voter", models.RoleUser)
	post := createTestPost(t, db, owner.ID, "votable")

	asUser(app, http.MethodPost, "/posts/:id/vote", voter.ID, s.VotePost)

	vote := func(direction string) *http.Response {
		resp, err := app.Test(jsonRequest(t, http.MethodPost,
			fmt.Sprintf("/posts/%d/vote", post.ID), map[string]string{"direction": direction}))
		require.NoError(t, err)
		return resp
	}

	resp := vote("up")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["upvotes"])

	// Repeat vote changes nothing.
	resp = vote("up")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(1), body["upvotes"])
	assert.Equal(t, float64(0), body["downvotes"])

	// Switching direction moves the vote.
	resp = vote("down")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(0), body["upvotes"])
	assert.Equal(t, float64(1), body["downvotes"])

	t.Run("invalid direction", func(t *testing.T) {
		resp := vote("sideways")
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown post", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost,
			"/posts/9999/vote", map[string]string{"direction": "up"}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestFavoritePostEndpoint(t *testing.T) {
	t.Parallel()
	s, db, _ := setupServerTest(t)
	app := fiber.New()

	owner := createTestUser(t, db, "owner", models.RoleAdmin)
	fan := createTestUser(t, db, "fan", models.RoleUser)
	post := createTestPost(t, db, owner.ID, "lovable")

	asUser(app, http.MethodPost, "/posts/:id/favorite", fan.ID, s.FavoritePost)

	for want := 1; want <= 2; want++ {
		resp, err := app.Test(jsonRequest(t, http.MethodPost,
			fmt.Sprintf("/posts/%d/favorite", post.ID), nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(want), decodeBody(t, resp)["favorites"])
	}
}

func TestCreatePostEndpoint(t *testing.T) {
	t.Parallel()
	s, db, _ := setupServerTest(t)
	app := fiber.New()

	createTestUser(t, db, "owner", models.RoleAdmin)
	author := createTestUser(t, db, "author", models.RoleUser)

	asUser(app, http.MethodPost, "/posts", author.ID, s.CreatePost)

	t.Run("success", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/posts", map[string]any{
			"title":       "Aimbot Deluxe",
			"description": "locks on",
			"code":        "while true do end",
			"language":    "Lua",
			"tags":        []string{"aim", "pvp"},
		}))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "lua", body["language"])
	})

	t.Run("missing title", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/posts", map[string]any{
			"description": "d",
			"code":        "c",
		}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdatePostOwnership(t *testing.T) {
	t.Parallel()
	s, db, _ := setupServerTest(t)
	app := fiber.New()

	admin := createTestUser(t, db, "owner", models.RoleAdmin)
	author := createTestUser(t, db, "author", models.RoleUser)
	stranger := createTestUser(t, db, "stranger", models.RoleUser)
	post := createTestPost(t, db, author.ID, "mine")

	asUser(app, http.MethodPut, "/author/posts/:id", author.ID, s.UpdatePost)
	asUser(app, http.MethodPut, "/stranger/posts/:id", stranger.ID, s.UpdatePost)
	asUser(app, http.MethodPut, "/admin/posts/:id", admin.ID, s.UpdatePost)

	t.Run("author edits own post", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPut,
			fmt.Sprintf("/author/posts/%d", post.ID), map[string]string{"title": "renamed"}))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "renamed", decodeBody(t, resp)["title"])
	})

	t.Run("stranger is refused", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPut,
			fmt.Sprintf("/stranger/posts/%d", post.ID), map[string]string{"title": "stolen"}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin may edit anything", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPut,
			fmt.Sprintf("/admin/posts/%d", post.ID), map[string]string{"title": "moderated"}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestGetPostsSortParam(t *testing.T) {
	t.Parallel()
	s, db, _ := setupServerTest(t)
	app := fiber.New()
	app.Get("/posts", s.GetPosts)

	owner := createTestUser(t, db, "owner", models.RoleAdmin)
	a := createTestPost(t, db, owner.ID, "first")
	b := createTestPost(t, db, owner.ID, "second")
	require.NoError(t, db.Model(a).Update("upvotes", 10).Error)
	require.NoError(t, db.Model(b).Update("is_pinned", true).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/posts", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	posts := decodeBody(t, resp)["posts"].([]any)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].(map[string]any)["title"])

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/posts?sort=most-voted", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	posts = decodeBody(t, resp)["posts"].([]any)
	require.Len(t, posts, 2)
	assert.Equal(t, "first", posts[0].(map[string]any)["title"])
}
