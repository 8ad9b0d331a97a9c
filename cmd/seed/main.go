// Command seed fills the configured database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/seed"
)

func main() {
	planPath := flag.String("plan", "", "YAML seed plan (defaults to the built-in plan)")
	users := flag.Int("users", -1, "Override the number of generated users")
	keep := flag.Bool("keep", false, "Keep existing rows instead of clearing them first")
	flag.Parse()

	plan := seed.DefaultPlan()
	if *planPath != "" {
		var err error
		if plan, err = seed.LoadPlan(*planPath); err != nil {
			log.Fatalf("Failed to load seed plan: %v", err)
		}
	}
	if *users >= 0 {
		plan.Users = *users
	}
	if *keep {
		plan.Clean = false
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	res, err := seed.NewSeeder(db, plan).Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d messages, %d follows, %d likes", res.Users, res.Messages, res.Follows, res.Likes)
	log.Printf("Generated users have the password: %s", plan.Password)
}
