// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"os"
	"time"

	"medquiz-platform/backend/internal/config"
	"medquiz-platform/backend/internal/db"
	"medquiz-platform/backend/internal/security"
	userdomain "medquiz-platform/backend/internal/user/domain"
	userrepo "medquiz-platform/backend/internal/user/repository"
)

const (
	devUserEmail = "dev@example.com"
	devPassword  = "password123"
	devUserID    = "dev-user-001"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (dev@example.com exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	if err := users.Create(ctx, &userdomain.User{
		ID:           devUserID,
		Email:        devUserEmail,
		Name:         "Dev User",
		PasswordHash: passwordHash,
		Status:       userdomain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		log.Fatalf("create dev user: %v", err)
	}

	if err := seedCatalog(ctx, conn, now); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}

	log.Printf("Seed complete. Login with %s / %s", devUserEmail, devPassword)
}

func seedCatalog(ctx context.Context, conn *sql.DB, now time.Time) error {
	if _, err := conn.ExecContext(ctx,
		`INSERT INTO courses (id, title, description, category, position, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		"dev-course-001", "Cardiology", "Heart and vascular medicine.", "internal medicine", 1, now); err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx,
		`INSERT INTO quizzes (id, course_id, title, description, position, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		"dev-quiz-001", "dev-course-001", "Arrhythmias", "Rhythm recognition basics.", 1, now); err != nil {
		return err
	}

	options, err := json.Marshal([]string{"Asystole", "Ventricular fibrillation", "Pulseless electrical activity"})
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx,
		`INSERT INTO questions (id, quiz_id, position, prompt, options, correct_index, explanation)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		"dev-question-001", "dev-quiz-001", 1,
		"Which rhythm is shockable?", options, 1,
		"Ventricular fibrillation responds to defibrillation.")
	return err
}
