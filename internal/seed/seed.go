// Package seed fills a development database with generated users, messages,
// follows and likes.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"warbler/internal/middleware"
	"warbler/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 200

// Result counts what a run inserted.
type Result struct {
	Users    int
	Messages int
	Follows  int
	Likes    int
}

// Seeder applies a Plan to a database.
type Seeder struct {
	db      *gorm.DB
	plan    Plan
	factory *Factory
}

// NewSeeder returns a seeder for plan.
func NewSeeder(db *gorm.DB, plan Plan) *Seeder {
	if plan.Password == "" {
		plan.Password = DefaultPassword
	}
	return &Seeder{db: db, plan: plan, factory: NewFactory(plan.Seed)}
}

// Run clears the tables when the plan asks for it, then inserts everything in
// one transaction.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result
	if err := s.plan.Validate(); err != nil {
		return res, err
	}

	hash, err := s.hash(s.plan.Password)
	if err != nil {
		return res, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.plan.Clean {
			if err := clearAll(tx); err != nil {
				return fmt.Errorf("clear tables: %w", err)
			}
		}

		users, err := s.createUsers(tx, hash)
		if err != nil {
			return fmt.Errorf("create users: %w", err)
		}
		res.Users = len(users)

		msgs, err := s.createMessages(tx, users)
		if err != nil {
			return fmt.Errorf("create messages: %w", err)
		}
		res.Messages = len(msgs)

		if res.Follows, err = s.createFollows(tx, users); err != nil {
			return fmt.Errorf("create follows: %w", err)
		}
		if res.Likes, err = s.createLikes(tx, users, msgs); err != nil {
			return fmt.Errorf("create likes: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	middleware.Logger.Info("seed complete",
		slog.Int("users", res.Users),
		slog.Int("messages", res.Messages),
		slog.Int("follows", res.Follows),
		slog.Int("likes", res.Likes),
	)
	return res, nil
}

func (s *Seeder) hash(password string) (string, error) {
	cost := bcrypt.DefaultCost
	if s.plan.FastHash {
		cost = bcrypt.MinCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash seed password: %w", err)
	}
	return string(hashed), nil
}

// clearAll deletes children before parents so it works with or without
// foreign key enforcement.
func clearAll(tx *gorm.DB) error {
	for _, model := range []any{&models.Like{}, &models.Follow{}, &models.Message{}, &models.User{}} {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) createUsers(tx *gorm.DB, hash string) ([]*models.User, error) {
	users := make([]*models.User, 0, len(s.plan.Fixed)+s.plan.Users)
	for _, fixed := range s.plan.Fixed {
		password := hash
		if fixed.Password != "" && fixed.Password != s.plan.Password {
			var err error
			if password, err = s.hash(fixed.Password); err != nil {
				return nil, err
			}
		}
		email := fixed.Email
		if email == "" {
			email = fixed.Username + "@example.com"
		}
		users = append(users, &models.User{
			Username:       fixed.Username,
			Email:          email,
			Password:       password,
			Bio:            fixed.Bio,
			ImageURL:       models.DefaultImageURL,
			HeaderImageURL: models.DefaultHeaderImageURL,
		})
	}
	for i := 0; i < s.plan.Users; i++ {
		users = append(users, s.factory.BuildUser(i+1, hash))
	}
	if len(users) == 0 {
		return users, nil
	}
	return users, tx.CreateInBatches(users, batchSize).Error
}

func (s *Seeder) createMessages(tx *gorm.DB, users []*models.User) ([]*models.Message, error) {
	msgs := make([]*models.Message, 0, len(users)*s.plan.MessagesPerUser)
	for _, u := range users {
		for i := 0; i < s.plan.MessagesPerUser; i++ {
			msgs = append(msgs, s.factory.BuildMessage(u.ID))
		}
	}
	if len(msgs) == 0 {
		return msgs, nil
	}
	return msgs, tx.Omit("User").CreateInBatches(msgs, batchSize).Error
}

func (s *Seeder) createFollows(tx *gorm.DB, users []*models.User) (int, error) {
	var follows []models.Follow
	for i, u := range users {
		for _, j := range s.factory.pick(len(users), s.plan.FollowsPerUser, i) {
			follows = append(follows, models.Follow{FollowerID: u.ID, FolloweeID: users[j].ID})
		}
	}
	if len(follows) == 0 {
		return 0, nil
	}
	err := tx.Omit("Follower", "Followee").
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&follows, batchSize).Error
	return len(follows), err
}

func (s *Seeder) createLikes(tx *gorm.DB, users []*models.User, msgs []*models.Message) (int, error) {
	var likes []models.Like
	for _, u := range users {
		for _, j := range s.factory.pick(len(msgs), s.plan.LikesPerUser, -1) {
			likes = append(likes, models.Like{UserID: u.ID, MessageID: msgs[j].ID})
		}
	}
	if len(likes) == 0 {
		return 0, nil
	}
	err := tx.Omit("User", "Message").
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&likes, batchSize).Error
	return len(likes), err
}
