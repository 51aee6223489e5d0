// Package main is the entry point for the BookHive admin CLI.
// This tool provides administrative commands for managing users and
// seeding the curated catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/bookhive/internal/auth"
	"github.com/prn-tf/bookhive/internal/cache/memory"
	"github.com/prn-tf/bookhive/internal/catalog/googlebooks"
	"github.com/prn-tf/bookhive/internal/config"
	"github.com/prn-tf/bookhive/internal/repository"
	"github.com/prn-tf/bookhive/internal/repository/postgres"
	"github.com/prn-tf/bookhive/internal/repository/sqlite"
	"github.com/prn-tf/bookhive/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "version":
		fmt.Printf("BookHive Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "create-user":
		err = runCreateUser(args)

	case "promote":
		err = runPromote(args)

	case "list-users":
		err = runListUsers(args)

	case "seed-demo":
		err = runSeedDemo(args)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env bundles the wired dependencies an admin command needs.
type env struct {
	cfg      *config.Config
	repos    *repository.Repositories
	users    *service.UserService
	profiles *service.ProfileService
	catalog  *service.CatalogService
	close    func()
}

// setup loads configuration, connects to the database and wires the
// service layer so commands go through the same validation as the API.
func setup(ctx context.Context, configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Admin commands run interactively; keep the log quiet.
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)

	repos, closeDB, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	cache := memory.NewCache()
	tokens := auth.NewTokenManager(cfg.Auth)
	catalogClient := googlebooks.NewClient(cfg.Catalog, logger)

	e := &env{
		cfg:      cfg,
		repos:    repos,
		users:    service.NewUserService(repos.Users, tokens, logger),
		profiles: service.NewProfileService(repos.Profiles, logger),
		catalog: service.NewCatalogService(
			repos.CuratedBooks,
			repos.ExternalBooks,
			catalogClient,
			cache,
			cfg.Catalog.SearchCacheTTL,
			logger,
		),
		close: func() {
			cache.Stop()
			closeDB()
		},
	}
	return e, nil
}

func openRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repository.Repositories, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return postgres.NewRepositories(db), func() { db.Close() }, nil

	default:
		sqliteCfg := sqlite.DefaultConfig(cfg.Database.Path)
		db, err := sqlite.NewDB(ctx, sqliteCfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return sqlite.NewRepositories(db), func() { db.Close() }, nil
	}
}

func runCreateUser(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	email := fs.String("email", "", "email address (required)")
	password := fs.String("password", "", "password (required)")
	name := fs.String("name", "", "display name (required)")
	role := fs.String("role", "user", "role: user or admin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" || *password == "" || *name == "" {
		return fmt.Errorf("--email, --password and --name are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	e, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	user, err := e.users.Register(ctx, service.RegisterInput{
		Email:    *email,
		Password: *password,
		Name:     *name,
		Role:     *role,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created user %s (%s) with role %s\n", user.Email, user.ID, user.Role)
	return nil
}

func runPromote(args []string) error {
	fs := flag.NewFlagSet("promote", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	email := fs.String("email", "", "email of the user to promote (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		return fmt.Errorf("--email is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	e, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	user, err := e.users.Promote(ctx, *email)
	if err != nil {
		return fmt.Errorf("failed to promote user: %w", err)
	}

	fmt.Printf("Promoted %s to admin\n", user.Email)
	return nil
}

func runListUsers(args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	e, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	users, err := e.users.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Email, u.Name, u.Role, u.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runSeedDemo(args []string) error {
	fs := flag.NewFlagSet("seed-demo", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	e, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	user, err := e.users.Register(ctx, service.RegisterInput{
		Email:    "demo@bookhive.local",
		Password: "demo-password",
		Name:     "Demo Reader",
	})
	if err != nil {
		return fmt.Errorf("failed to create demo user: %w", err)
	}

	profile, err := e.profiles.Create(ctx, user.ID, service.CreateProfileInput{
		Name: "Demo Kid",
		Age:  9,
	})
	if err != nil {
		return fmt.Errorf("failed to create demo profile: %w", err)
	}

	books := []service.CreateCuratedInput{
		{Title: "Matilda", Author: "Roald Dahl", AgeGroup: "child", Description: "A brilliant girl discovers her powers."},
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", AgeGroup: "teen", Description: "There and back again."},
		{Title: "Dune", Author: "Frank Herbert", AgeGroup: "adult", Description: "A desert planet and its spice."},
	}
	for _, input := range books {
		book, err := e.catalog.CreateCurated(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to seed curated book %q: %w", input.Title, err)
		}
		fmt.Printf("Seeded curated book %q (%s)\n", book.Title, book.ID)
	}

	fmt.Printf("Seeded demo user %s with profile %s (%s)\n", user.Email, profile.Name, profile.AgeGroup)
	return nil
}

func printUsage() {
	fmt.Println(`BookHive Admin CLI

Usage:
  bookhive-admin <command> [arguments]

Commands:
  create-user  Create a user account
  promote      Promote an existing user to admin
  list-users   List all user accounts
  seed-demo    Seed a demo user, profile and curated books
  version      Print version information
  help         Show this help message

Examples:
  bookhive-admin create-user --email admin@example.com --password secret --name Admin --role admin
  bookhive-admin promote --email reader@example.com
  bookhive-admin list-users
  bookhive-admin seed-demo --config configs/config.yaml

Use "bookhive-admin <command> --help" for more information about a command.`)
}
