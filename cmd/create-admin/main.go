package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"aidtrust/internal/config"
	"aidtrust/internal/core/domain"
	"aidtrust/internal/core/services"
	"aidtrust/internal/pkg/logger"
)

func main() {
	email := flag.String("email", "", "account email")
	name := flag.String("name", "Administrator", "full name")
	pass := flag.String("password", "", "password, at least 8 characters")
	role := flag.String("role", string(domain.RoleAdmin), "department-hod, trustee, inquiry-officer or admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}
	logger.Setup(cfg.AppMode, cfg.LogLevel)

	if cfg.Database.Driver == config.DriverMemory {
		logger.Log.Fatal("create-admin needs a persistent DB_DRIVER")
	}

	store, err := config.OpenStore(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to open store")
	}
	defer config.CloseDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repos := store.Repos()
	users := services.NewUserService(repos.Users, services.NewAuthService(repos.Users, cfg.JWT))

	// The bootstrap account acts with admin rights
	user, err := users.CreateUser(ctx, domain.Actor{Role: domain.RoleAdmin}, &services.CreateUserInput{
		FullName: *name,
		Email:    *email,
		Role:     domain.Role(*role),
		Password: *pass,
	})
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to create user")
	}

	fmt.Println("User created")
	fmt.Println("----------------------------------")
	fmt.Printf("ID:    %d\n", user.ID)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Role:  %s\n", user.Role)
}
