package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/tungtungsport/storefront/internal/infrastructure/config"
	"github.com/tungtungsport/storefront/internal/infrastructure/logger"
	"github.com/tungtungsport/storefront/internal/infrastructure/migration"
	"github.com/tungtungsport/storefront/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)

	flag.StringVar(&migrationsPath, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("migrations_path", displayPath(migrationsPath)),
	)

	// create and list work on the source tree and need no database
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(sourceDir(migrationsPath), args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created successfully",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return

	case "list":
		migrations, err := migration.ListMigrations(sourceDir(migrationsPath))
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(migrations) == 0 {
			log.Info("No migrations found")
			return
		}
		log.Info("Available migrations", zap.Int("count", len(migrations)))
		for _, m := range migrations {
			fmt.Println("  -", m)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	if command == "promote-staff" {
		if len(args) < 2 {
			log.Fatal("Email required. Usage: migrate promote-staff <email>")
		}
		if err := promoteStaff(&cfg.Database, args[1], log); err != nil {
			log.Fatal("Promote staff failed", zap.Error(err))
		}
		return
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	var m *migration.Migrator
	if migrationsPath != "" {
		m, err = migration.NewFromDir(db, migrationsPath, log)
	} else {
		m, err = migration.New(db, log)
	}
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		if err := m.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "step":
		if len(args) < 2 {
			log.Fatal("Step count required. Usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("Migration step failed", zap.Error(err))
		}

	case "goto":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate goto <version>")
		}
		version, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		if err := m.GoTo(uint(version)); err != nil {
			log.Fatal("Migration goto failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to get version", zap.Error(err))
		}
		if version == 0 {
			log.Info("No migrations applied")
		} else {
			log.Info("Current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		if err := m.Force(version); err != nil {
			log.Fatal("Force version failed", zap.Error(err))
		}

	case "drop":
		confirm := false
		for _, arg := range args[1:] {
			if arg == "-confirm" || arg == "--confirm" {
				confirm = true
				break
			}
		}
		if !confirm {
			log.Fatal("Drop cancelled. Use 'migrate drop -confirm' to confirm.")
		}
		if err := m.Drop(); err != nil {
			log.Fatal("Drop failed", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// promoteStaff grants the staff role to an existing account. Accounts
// register as customers, so this is how the first back-office user is made.
func promoteStaff(cfg *config.DatabaseConfig, email string, log *zap.Logger) error {
	database, err := persistence.NewDatabase(cfg, log, "warn")
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := persistence.NewGormCustomerRepository(database.DB)
	customer, err := repo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find %s: %w", email, err)
	}
	if customer.IsStaff() {
		log.Info("Account is already staff", zap.String("email", customer.Email))
		return nil
	}

	customer.PromoteToStaff()
	if err := repo.Save(ctx, customer); err != nil {
		return fmt.Errorf("save %s: %w", email, err)
	}

	log.Info("Account promoted to staff",
		zap.String("email", customer.Email),
		zap.String("customer_id", customer.ID.String()),
	)
	return nil
}

// sourceDir resolves the migrations directory of the source tree
func sourceDir(path string) string {
	if path == "" {
		path = defaultMigrationsPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func displayPath(path string) string {
	if path == "" {
		return "(embedded)"
	}
	return path
}

func printUsage() {
	fmt.Println(`Storefront Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Force set migration version (use with caution)
  drop -confirm         Drop all database objects (DANGEROUS)
  create <name> [desc]  Create the next numbered migration pair
  list                  List available migrations
  promote-staff <email> Grant the staff role to a registered account

Flags:
  -path string          Read migrations from a directory (default: embedded set;
                        create/list use ./migrations)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  STORE_DATABASE_HOST, STORE_DATABASE_PORT, STORE_DATABASE_USER,
  STORE_DATABASE_PASSWORD, STORE_DATABASE_NAME, STORE_DATABASE_SSLMODE

Examples:
  # Apply all pending migrations
  migrate up

  # Roll back the last migration
  migrate step -1

  # Create a new migration
  migrate create add_vouchers "Voucher codes applied at checkout"

  # Make an account a back-office user
  migrate promote-staff ops@tungtungsport.id`)
}
