package seed

import (
	"log"
	"os"

	"github.com/BioMart/BioMart-Backend/src/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed creates the default API user when the users table is empty of it.
// The password comes from ADMIN_PASSWORD and falls back to the username.
func Seed(db *gorm.DB) {
	username := "biomart"

	var user models.UserModel
	result := db.Where("username = ?", username).First(&user)
	if result.Error == nil {
		log.Printf("User '%s' already exists\n", username)
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = username
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash seed password: %v\n", err)
		return
	}

	newUser := models.UserModel{
		Username: username,
		Password: string(hashedPassword),
	}
	if err := db.Create(&newUser).Error; err != nil {
		log.Printf("Failed to create user: %v\n", err)
	} else {
		log.Printf("User '%s' created\n", username)
	}
}
