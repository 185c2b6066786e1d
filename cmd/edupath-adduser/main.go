// Command edupath-adduser creates a user account from the command line.
// It connects straight to MongoDB; use it to bootstrap the first admin.
//
// Usage:
//
//	edupath-adduser -email admin@example.com -name "Asha M." -role admin
//
// The password is read from the EDUPATH_ADDUSER_PASSWORD environment
// variable so it does not land in shell history.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	userstore "github.com/jmassawe/edupath/internal/app/store/users"
	"github.com/jmassawe/edupath/internal/app/system/inputval"
	"github.com/jmassawe/edupath/internal/domain/models"
)

func main() {
	var (
		uri      = flag.String("mongo-uri", envOr("EDUPATH_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
		database = flag.String("database", envOr("EDUPATH_MONGO_DATABASE", "edupath"), "database name")
		email    = flag.String("email", "", "user email (required)")
		name     = flag.String("name", "", "full name (required)")
		role     = flag.String("role", models.RoleStaff, "role: staff, admin, or student")
	)
	flag.Parse()

	if err := run(*uri, *database, *email, *name, *role); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(uri, database, email, name, role string) error {
	email = inputval.NormalizeEmail(email)
	if !inputval.IsValidEmail(email) {
		return fmt.Errorf("a valid -email is required")
	}
	if name == "" {
		return fmt.Errorf("-name is required")
	}
	switch role {
	case models.RoleStaff, models.RoleAdmin, models.RoleStudent:
	default:
		return fmt.Errorf("role must be staff, admin, or student; got %q", role)
	}

	password := os.Getenv("EDUPATH_ADDUSER_PASSWORD")
	if len(password) < 8 {
		return fmt.Errorf("set EDUPATH_ADDUSER_PASSWORD to at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	users := userstore.New(client.Database(database))
	u := &models.User{
		FullName:     name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       "active",
	}
	if err := users.Insert(ctx, u); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	fmt.Printf("created %s user %s (%s)\n", role, email, u.ID.Hex())
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
