// cmd/hashpassword/main.go
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/config"
	"github.com/veggiefresh/grocery-backend/internal/pkg/auth"
	"github.com/veggiefresh/grocery-backend/internal/pkg/logger"
)

// Prints a bcrypt hash for seeding or resetting an account by hand,
// using the same cost and rules as the API.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpassword <password>")
		os.Exit(2)
	}

	cfg := config.FromEnv()
	log := logger.New(cfg)
	passwords := auth.NewPasswordManager(cfg)

	password := os.Args[1]
	if err := passwords.ValidatePassword(password); err != nil {
		log.WithError(err).Fatal("password rejected")
	}

	hash, err := passwords.HashPassword(password)
	if err != nil {
		log.WithError(err).Fatal("failed to hash password")
	}

	if err := passwords.VerifyPassword(password, hash); err != nil {
		log.WithError(err).Fatal("hash verification failed")
	}

	log.WithFields(logrus.Fields{"cost": cfg.Security.BcryptCost}).Info("hash verified")
	fmt.Println(hash)
}
