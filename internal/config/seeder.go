package config

import (
	"log"

	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/core/domain"
	"bioponto/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedDefaultUnit(); err != nil {
		log.Printf("⚠️ Unit seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the first back-office operator.
// Development only: production admins are created through the operators API
// and the seeded password must be changed on first login.
func (s *Seeder) seedAdminUser() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash(getEnv("SEED_ADMIN_PASSWORD", "admin123456"))
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		FullName: "Administrator",
		Email:    getEnv("SEED_ADMIN_EMAIL", "admin@bioponto.local"),
		Password: hashedPassword,
		Role:     string(domain.RoleAdmin),
		IsActive: true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedDefaultUnit makes sure at least one unit exists so employees can be enrolled
func (s *Seeder) seedDefaultUnit() error {
	var count int64
	if err := s.db.Model(&models.Unit{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	unit := &models.Unit{Name: getEnv("SEED_UNIT_NAME", "Sede")}
	if err := s.db.Create(unit).Error; err != nil {
		return err
	}

	log.Printf("✅ Default unit created: %s (ID: %d)", unit.Name, unit.ID)
	return nil
}
