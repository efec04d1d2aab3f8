package main

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dentanet/api/internal/config"
	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/migrations"
)

func main() {
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to Database")

	// Refuse to seed a half-migrated schema
	if version, dirty, err := migrations.Version(cfg.DB.URL()); err != nil {
		log.Printf("⚠️  Could not read schema version: %v", err)
	} else if dirty {
		log.Fatalf("❌ Schema version %d is dirty, fix migrations before seeding", version)
	}

	seedAdmin(db)
	seedLabMachines(db)
	seedDemoUsers(db)

	log.Println("🎉 Seeding completed!")
}

func seedAdmin(db *gorm.DB) {
	email := "admin@dentanet.local"
	var existing model.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("DentaNet@Admin1"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	user := model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     "System Administrator",
		FirstName:    "System",
		LastName:     "Administrator",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Printf("❌ Failed to create admin: %v", err)
		return
	}
	db.Create(&model.Admin{
		ID:         uuid.New(),
		UserID:     user.ID,
		AdminLevel: "super",
	})
	log.Printf("✅ Created admin: %s | Pass: DentaNet@Admin1", email)
}

func seedLabMachines(db *gorm.DB) {
	var count int64
	db.Model(&model.LabMachine{}).Count(&count)
	if count > 0 {
		return
	}

	log.Println("🌱 Seeding lab machines...")
	for lab := 1; lab <= 2; lab++ {
		for m := 1; m <= 10; m++ {
			machine := model.LabMachine{
				ID:            uuid.New(),
				MachineCode:   fmt.Sprintf("SIM-%d%02d", lab, m),
				LabNumber:     fmt.Sprintf("LAB-%d", lab),
				IsOperational: true,
			}
			if err := db.Create(&machine).Error; err != nil {
				log.Printf("❌ Failed to create machine %s: %v", machine.MachineCode, err)
			}
		}
	}
	log.Println("✅ Created 20 lab machines across 2 labs")
}

func seedDemoUsers(db *gorm.DB) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Demo@Pass1"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	log.Println("🌱 Seeding demo students and a lecturer...")
	for i := 1; i <= 5; i++ {
		email := fmt.Sprintf("student%d@dentanet.local", i)
		var existing model.User
		if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
			continue
		}

		user := model.User{
			ID:           uuid.New(),
			Email:        email,
			PasswordHash: string(hashed),
			FullName:     fmt.Sprintf("Demo Student %d", i),
			FirstName:    "Demo",
			LastName:     fmt.Sprintf("Student %d", i),
			Role:         model.RoleStudent,
			IsActive:     true,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("❌ Failed to create %s: %v", email, err)
			continue
		}
		db.Create(&model.Student{
			ID:                 uuid.New(),
			UserID:             user.ID,
			RegistrationNumber: fmt.Sprintf("DENT/2024/%03d", i),
			BatchYear:          2024,
			Department:         "Restorative Dentistry",
			AcademicStatus:     "Active",
		})
		log.Printf("✅ Created student: %s | Pass: Demo@Pass1", email)
	}

	email := "lecturer@dentanet.local"
	var existing model.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return
	}

	user := model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     "Demo Lecturer",
		FirstName:    "Demo",
		LastName:     "Lecturer",
		Role:         model.RoleLecturer,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Printf("❌ Failed to create %s: %v", email, err)
		return
	}
	staffID := "LEC/001"
	db.Create(&model.Lecturer{
		ID:          uuid.New(),
		UserID:      user.ID,
		StaffID:     &staffID,
		Department:  "Restorative Dentistry",
		Designation: "Lecturer",
	})
	log.Printf("✅ Created lecturer: %s | Pass: Demo@Pass1", email)
}
