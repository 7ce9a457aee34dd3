package seed

import (
	"fmt"
	"log/slog"

	"github.com/infmoney/omegahubsite/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder populates the database with demo content.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder for the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll wipes all seeded tables. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	tables := []string{"votes", "comments", "posts", "categories", "forums", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// EnsureOwner creates the owner account if no user occupies ID 1.
// The account is created first so it lands on the distinguished ID.
func (s *Seeder) EnsureOwner() (*models.User, error) {
	var existing models.User
	err := s.db.First(&existing, models.OwnerID).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("ChangeMe-Owner1!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	owner := &models.User{
		ID:       models.OwnerID,
		Username: "omega",
		Email:    "owner@omegahub.dev",
		Password: string(hashed),
		Role:     models.RoleAdmin,
		Bio:      "Site owner",
	}
	if err := s.db.Create(owner).Error; err != nil {
		return nil, err
	}
	slog.Info("seeded owner account", "user_id", owner.ID)
	return owner, nil
}

// EnsureDefaultForum creates the default board and its starter categories
// when no forums exist yet.
func (s *Seeder) EnsureDefaultForum() (*models.Forum, error) {
	var count int64
	if err := s.db.Model(&models.Forum{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		var first models.Forum
		return &first, s.db.Preload("Categories").Order("id ASC").First(&first).Error
	}

	forum := &models.Forum{
		Name:        "Script Hub",
		Description: "Share and discuss community scripts",
		IsPinned:    true,
	}
	if err := s.db.Create(forum).Error; err != nil {
		return nil, err
	}
	categories := []models.Category{
		{ForumID: forum.ID, Name: "Releases", Description: "Finished scripts ready to use"},
		{ForumID: forum.ID, Name: "Work in Progress", Description: "Scripts under development"},
		{ForumID: forum.ID, Name: "Help & Requests", Description: "Ask for help or request a script"},
	}
	if err := s.db.Create(&categories).Error; err != nil {
		return nil, err
	}
	forum.Categories = categories
	slog.Info("seeded default forum", "forum_id", forum.ID)
	return forum, nil
}

// SeedDemo fills the board with fake users, posts and comments.
func (s *Seeder) SeedDemo(numUsers, numPosts int) error {
	owner, err := s.EnsureOwner()
	if err != nil {
		return err
	}
	forum, err := s.EnsureDefaultForum()
	if err != nil {
		return err
	}

	users := make([]*models.User, 0, numUsers+1)
	users = append(users, owner)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("seeding user %d: %w", i, err)
		}
		users = append(users, user)
	}

	// A few seeded users get elevated roles and custom badges so badge
	// rendering has something to show.
	if len(users) > 3 {
		if err := s.db.Model(users[1]).Update("role", models.RoleModerator).Error; err != nil {
			return err
		}
		if err := s.db.Model(users[2]).Update("role", models.RoleVIP).Error; err != nil {
			return err
		}
		if err := s.db.Model(users[3]).Update("custom_badge", string(models.BadgeVerified)).Error; err != nil {
			return err
		}
	}

	for i := 0; i < numPosts; i++ {
		author := users[s.factory.r.Intn(len(users))]
		post, err := s.factory.CreatePost(author, func(p *models.Post) {
			if len(forum.Categories) > 0 {
				cat := forum.Categories[s.factory.r.Intn(len(forum.Categories))]
				p.CategoryID = &cat.ID
			}
		})
		if err != nil {
			return fmt.Errorf("seeding post %d: %w", i, err)
		}

		commentCount := s.factory.r.Intn(4)
		for j := 0; j < commentCount; j++ {
			commenter := users[s.factory.r.Intn(len(users))]
			if _, err := s.factory.CreateComment(commenter, post); err != nil {
				return fmt.Errorf("seeding comment on post %d: %w", post.ID, err)
			}
		}
	}

	slog.Info("demo seed complete", "users", len(users), "posts", numPosts)
	return nil
}
