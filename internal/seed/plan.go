package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPassword is given to every generated user unless the plan overrides it.
const DefaultPassword = "password123"

// FixedUser is an account that is always created with known credentials.
type FixedUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Bio      string `yaml:"bio"`
}

// Plan describes how much demo data to generate.
type Plan struct {
	Users           int         `yaml:"users"`
	MessagesPerUser int         `yaml:"messages_per_user"`
	FollowsPerUser  int         `yaml:"follows_per_user"`
	LikesPerUser    int         `yaml:"likes_per_user"`
	Password        string      `yaml:"password"`
	Clean           bool        `yaml:"clean"`
	Seed            int64       `yaml:"seed"`
	FastHash        bool        `yaml:"fast_hash"`
	Fixed           []FixedUser `yaml:"fixed_users"`
}

// DefaultPlan is used when no plan file is given.
func DefaultPlan() Plan {
	return Plan{
		Users:           30,
		MessagesPerUser: 5,
		FollowsPerUser:  6,
		LikesPerUser:    8,
		Password:        DefaultPassword,
		Clean:           true,
	}
}

// LoadPlan reads a YAML plan. Fields missing from the file keep their defaults.
func LoadPlan(path string) (Plan, error) {
	plan := DefaultPlan()
	data, err := os.ReadFile(path)
	if err != nil {
		return plan, fmt.Errorf("read seed plan: %w", err)
	}
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return plan, fmt.Errorf("parse seed plan %s: %w", path, err)
	}
	return plan, plan.Validate()
}

// Validate rejects negative counts.
func (p Plan) Validate() error {
	for name, n := range map[string]int{
		"users":             p.Users,
		"messages_per_user": p.MessagesPerUser,
		"follows_per_user":  p.FollowsPerUser,
		"likes_per_user":    p.LikesPerUser,
	} {
		if n < 0 {
			return fmt.Errorf("seed plan: %s must not be negative", name)
		}
	}
	return nil
}
