package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"authhub/database"
	"authhub/internal/config"
	"authhub/internal/logger"
	"authhub/internal/seed"
	"authhub/internal/utils"

	"go.uber.org/zap"
)

func main() {
	rolesCmd := flag.NewFlagSet("roles", flag.ExitOnError)

	adminCmd := flag.NewFlagSet("admin", flag.ExitOnError)
	adminEmail := adminCmd.String("email", os.Getenv("ADMIN_EMAIL"), "Admin email (ADMIN_EMAIL)")
	adminPassword := adminCmd.String("password", os.Getenv("ADMIN_PASSWORD"), "Admin password (ADMIN_PASSWORD)")
	adminFirst := adminCmd.String("first-name", envOr("ADMIN_FIRST_NAME", "System"), "Admin first name")
	adminLast := adminCmd.String("last-name", envOr("ADMIN_LAST_NAME", "Administrator"), "Admin last name")
	adminPhone := adminCmd.String("phone", os.Getenv("ADMIN_PHONE"), "Admin phone number (ADMIN_PHONE)")
	adminNID := adminCmd.String("national-id", os.Getenv("ADMIN_NATIONAL_ID"), "Admin national id (ADMIN_NATIONAL_ID)")

	usersCmd := flag.NewFlagSet("users", flag.ExitOnError)
	numUsers := usersCmd.Int("count", seed.DefaultNumUsers, "Number of dummy users to create")

	clearCmd := flag.NewFlagSet("clear", flag.ExitOnError)

	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	cfg, err := config.Load(".env", "../../.env")
	if err != nil {
		log.Fatal(err)
	}
	zlog, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()
	connect := func() *seed.Seeder {
		db, err := database.ConnectDatabase(cfg.DB, zlog)
		if err != nil {
			zlog.Fatal("database unavailable", zap.Error(err))
		}
		if err := database.MigrateDatabase(db, zlog); err != nil {
			zlog.Fatal("migration failed", zap.Error(err))
		}
		return seed.New(db, utils.NewBcryptHasher(), zlog)
	}

	switch os.Args[1] {
	case "roles":
		_ = rolesCmd.Parse(os.Args[2:])
		if err := connect().Roles(ctx); err != nil {
			zlog.Fatal("seeding roles failed", zap.Error(err))
		}

	case "admin":
		_ = adminCmd.Parse(os.Args[2:])
		_, err := connect().Admin(ctx, seed.AdminParams{
			Email:       *adminEmail,
			Password:    *adminPassword,
			FirstName:   *adminFirst,
			LastName:    *adminLast,
			PhoneNumber: *adminPhone,
			NationalID:  *adminNID,
		})
		if err != nil {
			zlog.Fatal("seeding admin failed", zap.Error(err))
		}

	case "users":
		_ = usersCmd.Parse(os.Args[2:])
		if _, err := connect().Users(ctx, *numUsers); err != nil {
			zlog.Fatal("seeding users failed", zap.Error(err))
		}

	case "clear":
		_ = clearCmd.Parse(os.Args[2:])
		if _, err := connect().DeleteTestUsers(ctx); err != nil {
			zlog.Fatal("clearing test users failed", zap.Error(err))
		}

	default:
		printHelp()
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printHelp() {
	fmt.Println("Usage: seed <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  roles                      Create the ADMIN and STANDARD roles if missing")
	fmt.Println("  admin  -email -password    Create an active admin account")
	fmt.Println("  users  -count N            Create N active test accounts (testuser<N>@example.com)")
	fmt.Println("  clear                      Delete every test account and its notifications")
}
