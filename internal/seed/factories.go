// Package seed provides helpers to create demo and test data for the
// application database. Intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/infmoney/omegahubsite/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var scriptLanguages = []string{"javascript", "lua", "python", "typescript", "go"}

var scriptTags = []string{
	"automation", "utility", "game", "gui", "esp", "aimbot-detector",
	"teleport", "farming", "trading", "anti-afk", "admin", "fun",
}

var snippetTemplates = []string{
	"local player = game.Players.LocalPlayer\nprint(%q)",
	"function main() {\n  console.log(%q);\n}\nmain();",
	"def run():\n    print(%q)\n\nrun()",
	"for i = 1, 10 do\n  warn(%q)\nend",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser persists a fake user. Overrides run before the insert.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("SeededPass123!"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:   gofakeit.Username(),
		Email:      gofakeit.Email(),
		Password:   string(hashed),
		Role:       models.RoleUser,
		Bio:        gofakeit.Sentence(8),
		Reputation: f.r.Intn(500),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post without persisting it, with a realistic
// created_at spread over the last 90 days.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	language := scriptLanguages[f.r.Intn(len(scriptLanguages))]
	snippet := fmt.Sprintf(snippetTemplates[f.r.Intn(len(snippetTemplates))], gofakeit.HackerPhrase())

	tagCount := 1 + f.r.Intn(3)
	tags := make(models.StringList, 0, tagCount)
	for i := 0; i < tagCount; i++ {
		tags = append(tags, scriptTags[f.r.Intn(len(scriptTags))])
	}

	post := &models.Post{
		Title:       gofakeit.Sentence(4),
		Description: gofakeit.Paragraph(1, 2, 8, "\n"),
		Code:        snippet,
		Language:    language,
		Tags:        tags,
		Upvotes:     f.r.Intn(200),
		Downvotes:   f.r.Intn(40),
		Views:       f.r.Intn(5000),
		Favorites:   f.r.Intn(100),
	}
	if author != nil {
		post.AuthorID = &author.ID
	}

	daysBack := f.r.Intn(90)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(f.r.Intn(24))*time.Hour)

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost persists a fake post authored by the given user.
func (f *Factory) CreatePost(author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a fake comment on a post.
func (f *Factory) CreateComment(author *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   &post.ID,
		AuthorID: author.ID,
		Content:  gofakeit.Sentence(12),
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}
