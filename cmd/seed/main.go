package main

import (
	"fmt"
	"log"
	"time"

	"movitex/internal/shared/config"
	"movitex/internal/shared/database"
	"movitex/internal/users"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db  *database.DB
	cfg *config.Config
}

func main() {
	fmt.Println("🌱 Starting Movitex Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, cfg: cfg}

	// Clean database
	fmt.Println("\n🧹 Cleaning profiles...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Profiles cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding profiles...")
	created, err := seeder.SeedUsers()
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}
	fmt.Println("✅ Profiles seeded successfully")

	// Development tokens for the authenticated booking path
	fmt.Println("\n🔑 Access tokens (24h):")
	for _, u := range created {
		token, err := seeder.AccessToken(u.ID, 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to sign token for %s: %v", u.Email, err)
		}
		fmt.Printf("  %s\n    %s\n", u.Email, token)
	}

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates the profile read model. Booking tables belong to
// the backend and are left alone.
func (s *Seeder) CleanDatabase() error {
	return s.db.PostgreSQL.Exec("TRUNCATE TABLE users RESTART IDENTITY CASCADE").Error
}

// SeedUsers creates demo accounts with complete passenger profiles
func (s *Seeder) SeedUsers() ([]users.User, error) {
	fmt.Println("  👤 Seeding users...")

	// Hash password for all users (using "qwerty")
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		firstName string
		lastName  string
		email     string
		phone     string
		document  string
		birthDate string
		gender    string
	}{
		{"Maria", "Quispe Huaman", "maria.quispe@movitex.pe", "987654321", "45871236", "1988-04-12", "F"},
		{"Jorge", "Ramirez Soto", "jorge.ramirez@movitex.pe", "912345678", "70125489", "1995-11-03", "M"},
		// Partial profile: autofill leaves the missing fields to the user
		{"Lucia", "Fernandez", "lucia.fernandez@movitex.pe", "", "", "", ""},
	}

	var created []users.User
	for _, userData := range usersData {
		user := users.User{
			ID:             uuid.New(),
			FirstName:      userData.firstName,
			LastName:       userData.lastName,
			Email:          userData.email,
			Password:       string(hashedPassword),
			Phone:          userData.phone,
			DocumentNumber: userData.document,
			Gender:         userData.gender,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
		if userData.birthDate != "" {
			bd, err := time.Parse("2006-01-02", userData.birthDate)
			if err != nil {
				return nil, fmt.Errorf("invalid birth date for %s: %w", userData.email, err)
			}
			user.BirthDate = &bd
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		created = append(created, user)
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.ID)
	}

	return created, nil
}

// AccessToken signs a token accepted by the optional auth middleware
func (s *Seeder) AccessToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"type":    "access",
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWT.Secret))
}
