package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/davitren/storefront/config"
	"github.com/davitren/storefront/pkg/helpers"
)

type seedProduct struct {
	Title       string
	Price       decimal.Decimal
	Description string
	ImageURL    string
}

var demoProducts = []seedProduct{
	{"A Book", decimal.RequireFromString("12.99"), "A very interesting book about so many even more interesting things!", "https://storage.googleapis.com/storefront-demo/book.png"},
	{"Red Mug", decimal.RequireFromString("8.50"), "Holds exactly one coffee.", "https://storage.googleapis.com/storefront-demo/mug.png"},
	{"Notebook", decimal.RequireFromString("4.25"), "Dotted, 120 pages.", "https://storage.googleapis.com/storefront-demo/notebook.png"},
	{"Desk Lamp", decimal.RequireFromString("29.90"), "Warm light, no flicker.", "https://storage.googleapis.com/storefront-demo/lamp.png"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := run(db); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

// run upserts one demo seller and their products. It is safe to invoke
// repeatedly: products has no natural unique key, so existing titles for
// the seeded owner are skipped instead of duplicated.
func run(db *sql.DB) error {
	email := "demo@storefront.local"
	password := "password123"
	name := "Demo Seller"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET name=EXCLUDED.name
		RETURNING id
	`, email, hash, name).Scan(&id)
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)

	seeded := 0
	for _, p := range demoProducts {
		var exists bool
		err := db.QueryRow(`
			SELECT EXISTS (SELECT 1 FROM products WHERE owner_id = $1 AND title = $2)
		`, id, p.Title).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check product %q: %w", p.Title, err)
		}
		if exists {
			continue
		}
		if _, err := db.Exec(`
			INSERT INTO products (title, price, description, image_url, owner_id)
			VALUES ($1, $2, $3, $4, $5)
		`, p.Title, p.Price, p.Description, p.ImageURL, id); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Title, err)
		}
		seeded++
	}
	fmt.Printf("seeded %d products owned by %s (%d already present)\n", seeded, email, len(demoProducts)-seeded)
	return nil
}
