package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"deckpress/internal/models"
)

// SeedEmail is the address of the development admin account.
const SeedEmail = "admin@deckpress.local"

// Seed populates the database with initial development data.
// It creates a default admin user and a welcome presentation if no users
// exist. The admin is asked to enroll an authenticator on first login
// (totp_enabled = false).
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, SeedEmail, string(hash), "Admin", models.RoleAdmin, false).Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	doc, err := json.Marshal(welcomeDocument())
	if err != nil {
		return fmt.Errorf("seed encode welcome deck: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO presentations (owner_id, title, document)
		VALUES ($1, $2, $3)
	`, adminID, "Welcome to DeckPress", doc)
	if err != nil {
		return fmt.Errorf("seed insert presentation: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", SeedEmail,
		"password", "admin",
	)

	return nil
}

func welcomeDocument() models.Document {
	now := time.Now().UTC()
	base := now.UnixMilli()
	slide := func(i int, layout models.Layout, title, content string) models.Slide {
		return models.Slide{
			ID:         base + int64(i),
			Title:      title,
			Content:    content,
			Background: "#ffffff",
			TextColor:  "#1f2937",
			Layout:     layout,
		}
	}
	intro := slide(0, models.LayoutTitleContent, "Welcome to DeckPress",
		"<p>Edit slides, undo any change and export to PowerPoint, Word, PDF and more.</p>")
	columns := slide(1, models.LayoutTwoColumn, "Two columns", "")
	columns.ContentLeft = "<ul><li>Layouts</li><li>Shapes</li><li>Charts</li></ul>"
	columns.ContentRight = "<ul><li>Animations</li><li>Speaker notes</li><li>Templates</li></ul>"
	closing := slide(2, models.LayoutTitleOnly, "Start presenting", "")

	return models.Document{
		Slides: []models.Slide{intro, columns, closing},
		Meta: models.Meta{
			Title:     "Welcome to DeckPress",
			Author:    "Admin",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}
