package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file into the process environment if one exists.
// Missing files are fine; deployed environments set real variables.
func LoadEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("config: failed to load .env: %v", err)
	}
}
