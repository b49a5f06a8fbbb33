package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/sanable/backend/internal/infrastructure/config"
	"github.com/sanable/backend/internal/infrastructure/logger"
	"github.com/sanable/backend/internal/infrastructure/migration"
)

const defaultMigrationsDir = "migrations"

func main() {
	var (
		migrationsDir string
		logLevel      string
	)
	flag.StringVar(&migrationsDir, "path", "", "migrations directory (default ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
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

	migrationsDir, err = resolveMigrationsDir(migrationsDir)
	if err != nil {
		log.Fatal("Failed to resolve migrations directory", zap.Error(err))
	}

	log.Info("Schema migration tool",
		zap.String("command", command),
		zap.String("migrations_dir", migrationsDir),
	)

	// create and list only touch the filesystem, no database needed.
	switch command {
	case "create":
		runCreate(log, migrationsDir, args[1:])
		return
	case "list":
		runList(log, migrationsDir)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to reach database", zap.Error(err))
	}

	m, err := migration.New(db, migrationsDir, log)
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
		n, err := strconv.Atoi(argAt(args, 1))
		if err != nil {
			log.Fatal("Usage: migrate step <n>")
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("Migration step failed", zap.Error(err))
		}

	case "goto":
		target, err := strconv.ParseUint(argAt(args, 1), 10, 32)
		if err != nil {
			log.Fatal("Usage: migrate goto <version>")
		}
		if err := m.GoTo(uint(target)); err != nil {
			log.Fatal("Migration goto failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to read schema version", zap.Error(err))
		}
		if version == 0 {
			log.Info("No migrations applied yet")
		} else {
			log.Info("Current schema version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}

	case "force":
		target, err := strconv.Atoi(argAt(args, 1))
		if err != nil {
			log.Fatal("Usage: migrate force <version>")
		}
		if err := m.Force(target); err != nil {
			log.Fatal("Force version failed", zap.Error(err))
		}

	case "drop":
		if !hasConfirmFlag(args[1:]) {
			log.Fatal("Drop destroys all student and payment data. Re-run as 'migrate drop -confirm' to proceed.")
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

func runCreate(log *zap.Logger, dir string, args []string) {
	if len(args) == 0 {
		log.Fatal("Usage: migrate create <name> [description]")
	}
	name := args[0]
	description := ""
	if len(args) > 1 {
		description = args[1]
	}

	mf, err := migration.CreateMigration(dir, name, description)
	if err != nil {
		log.Fatal("Failed to create migration pair", zap.Error(err))
	}
	log.Info("Migration pair created",
		zap.String("version", mf.Version),
		zap.String("up", mf.UpPath),
		zap.String("down", mf.DownPath),
	)
}

func runList(log *zap.Logger, dir string) {
	migrations, err := migration.ListMigrations(dir)
	if err != nil {
		log.Fatal("Failed to list migrations", zap.Error(err))
	}
	if len(migrations) == 0 {
		log.Info("No migrations found")
		return
	}
	log.Info("Available migrations", zap.Int("count", len(migrations)))
	for _, name := range migrations {
		fmt.Println("  -", name)
	}
}

// resolveMigrationsDir falls back to ./migrations, then to the
// directory two levels above the executable, which covers running the
// built binary from bin/.
func resolveMigrationsDir(dir string) (string, error) {
	if dir == "" {
		dir = defaultMigrationsDir
		if _, err := os.Stat(dir); err != nil {
			if execPath, execErr := os.Executable(); execErr == nil {
				candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsDir)
				if _, statErr := os.Stat(candidate); statErr == nil {
					dir = candidate
				}
			}
		}
	}
	return filepath.Abs(dir)
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func hasConfirmFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-confirm" || arg == "--confirm" {
			return true
		}
	}
	return false
}

func printUsage() {
	fmt.Println(`Sanable schema migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    apply every pending migration
  down                  roll back every migration
  step <n>              apply n migrations (negative rolls back)
  goto <version>        migrate to an exact version
  version               print the current schema version
  force <version>       overwrite the version record (repair only)
  drop -confirm         drop every database object
  create <name> [desc]  write a new up/down SQL pair
  list                  list migration pairs on disk

Flags:
  -path string          migrations directory (default ./migrations)
  -log-level string     debug, info, warn, error (default info)

Database connection comes from the usual environment:
  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSL_MODE`)
}
