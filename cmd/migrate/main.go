package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/config"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/logger"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

// command is one migrate subcommand. Offline commands never open the database.
type command struct {
	usage   string
	offline bool
	run     func(env *runEnv, args []string) error
}

type runEnv struct {
	log      *zap.Logger
	dir      string
	migrator *migration.Migrator
}

var commands = map[string]command{
	"up": {usage: "up", run: func(e *runEnv, _ []string) error {
		return e.migrator.Up()
	}},
	"down": {usage: "down", run: func(e *runEnv, _ []string) error {
		return e.migrator.Down()
	}},
	"step": {usage: "step <n>", run: func(e *runEnv, args []string) error {
		n, err := intArg(args, "step count")
		if err != nil {
			return err
		}
		return e.migrator.Steps(n)
	}},
	"force": {usage: "force <version>", run: func(e *runEnv, args []string) error {
		v, err := intArg(args, "version")
		if err != nil {
			return err
		}
		return e.migrator.Force(v)
	}},
	"version": {usage: "version", run: runVersion},
	"status":  {usage: "status", run: runStatus},
	"create":  {usage: "create <name>", offline: true, run: runCreate},
	"list":    {usage: "list", offline: true, run: runList},
}

func main() {
	dir := flag.String("path", "", "Path to migrations directory (default: ./migrations)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	env := &runEnv{log: log, dir: *dir}
	if env.dir == "" {
		env.dir = findMigrations()
	}
	if env.dir, err = filepath.Abs(env.dir); err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}
	log.Debug("Migration CLI started", zap.String("command", args[0]), zap.String("migrations_path", env.dir))

	if !cmd.offline {
		db, closeAll := open(log, env.dir)
		defer closeAll()
		env.migrator = db
	}

	if err := cmd.run(env, args[1:]); err != nil {
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

// open connects with the configured database settings and builds a migrator
func open(log *zap.Logger, dir string) (*migration.Migrator, func()) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		log.Fatal("Failed to reach database",
			zap.String("host", cfg.Database.Host),
			zap.String("dbname", cfg.Database.DBName),
			zap.Error(err))
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		_ = db.Close()
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	return m, func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}
}

func runVersion(e *runEnv, _ []string) error {
	version, dirty, err := e.migrator.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		e.log.Info("No migrations applied")
		return nil
	}
	e.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// runStatus prints every migration file marked applied or pending
func runStatus(e *runEnv, _ []string) error {
	names, err := migration.ListMigrations(e.dir)
	if err != nil {
		return err
	}
	version, dirty, err := e.migrator.Version()
	if err != nil {
		return err
	}

	pending := 0
	for _, name := range names {
		state := "applied"
		if v, ok := fileVersion(name); !ok || v > version {
			state = "pending"
			pending++
		} else if v == version && dirty {
			state = "dirty"
		}
		fmt.Printf("  %-8s %s\n", state, name)
	}
	e.log.Info("Migration status", zap.Uint("version", version), zap.Int("pending", pending))
	return nil
}

func runCreate(e *runEnv, args []string) error {
	if len(args) == 0 {
		return errors.New("migration name required: migrate create <name>")
	}
	mf, err := migration.CreateMigration(e.dir, args[0], time.Now())
	if err != nil {
		return err
	}
	e.log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath))
	return nil
}

func runList(e *runEnv, _ []string) error {
	names, err := migration.ListMigrations(e.dir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		e.log.Info("No migrations found")
		return nil
	}
	for _, name := range names {
		fmt.Println("  -", name)
	}
	return nil
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s required", what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return n, nil
}

// fileVersion parses the numeric prefix of a migration base name
func fileVersion(name string) (uint, bool) {
	prefix, _, _ := strings.Cut(name, "_")
	v, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

// findMigrations looks in the working directory first, then two levels
// above the executable
func findMigrations() string {
	if _, err := os.Stat(defaultMigrationsPath); err == nil {
		return defaultMigrationsPath
	}
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return defaultMigrationsPath
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Storefront database migrations

Usage:
  migrate [-path dir] [-log-level level] <command> [argument]

Commands:
  up                Apply all pending migrations
  down              Roll back all migrations
  step <n>          Apply n migrations (negative rolls back)
  force <version>   Set the version without running SQL, to clear a dirty state
  version           Show the applied version
  status            List migration files as applied or pending
  create <name>     Write an empty up/down pair
  list              List migration files

The database is read from config.toml and STOREFRONT_DATABASE_* variables.
`)
}
