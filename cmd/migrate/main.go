package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/travellinq/backend/internal/config"
	"github.com/travellinq/backend/internal/database"
	"github.com/travellinq/backend/internal/domain"
	"github.com/travellinq/backend/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Indexes AutoMigrate cannot express from struct tags.
var steps = []struct {
	Name string
	SQL  string
}{
	{
		Name: "Create index idx_comments_post_created",
		SQL:  "CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments(post_id, created_at) WHERE deleted_at IS NULL;",
	},
	{
		Name: "Create index idx_posts_visible_created",
		SQL:  "CREATE INDEX IF NOT EXISTS idx_posts_visible_created ON posts(created_at DESC) WHERE status = 'visible' AND deleted_at IS NULL;",
	},
	{
		Name: "Create index idx_notifications_user_unread",
		SQL:  "CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id, created_at DESC) WHERE is_read = false;",
	},
	{
		Name: "Create index idx_reports_open_target",
		SQL:  "CREATE INDEX IF NOT EXISTS idx_reports_open_target ON reports(target_type, target_id, reporter_id) WHERE status = 'pending';",
	},
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate <create|up|fresh|drop>")
	fmt.Fprintln(os.Stderr, "  create  create the database if missing, then migrate")
	fmt.Fprintln(os.Stderr, "  up      migrate the schema")
	fmt.Fprintln(os.Stderr, "  fresh   drop every table, then migrate")
	fmt.Fprintln(os.Stderr, "  drop    drop the database")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Log.Level, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	switch os.Args[1] {
	case "create":
		err = createDatabase(cfg)
		if err == nil {
			err = migrate(cfg, false)
		}
	case "up":
		err = migrate(cfg, false)
	case "fresh":
		err = migrate(cfg, true)
	case "drop":
		err = dropDatabase(cfg)
	default:
		usage()
	}
	if err != nil {
		logger.Log.Fatal("Migration failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
	logger.Log.Info("Done", zap.String("command", os.Args[1]))
}

// serverConn connects to the maintenance database so the application
// database can be created or dropped.
func serverConn(cfg *config.Config) (*sql.DB, error) {
	return sql.Open("postgres", database.DSN(cfg, "postgres"))
}

func databaseExists(db *sql.DB, name string) (bool, error) {
	var exists bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists)
	return exists, err
}

func createDatabase(cfg *config.Config) error {
	db, err := serverConn(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	exists, err := databaseExists(db, cfg.Database.Name)
	if err != nil {
		return fmt.Errorf("check database: %w", err)
	}
	if exists {
		logger.Log.Info("Database already exists", zap.String("name", cfg.Database.Name))
		return nil
	}

	// CREATE DATABASE takes no bind parameters.
	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE %q", cfg.Database.Name)); err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	logger.Log.Info("Database created", zap.String("name", cfg.Database.Name))
	return nil
}

func dropDatabase(cfg *config.Config) error {
	db, err := serverConn(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %q", cfg.Database.Name)); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	logger.Log.Info("Database dropped", zap.String("name", cfg.Database.Name))
	return nil
}

func migrate(cfg *config.Config, fresh bool) error {
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}

	if fresh {
		logger.Log.Warn("Dropping all tables")
		if err := db.Migrator().DropTable(domain.AllModels()...); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
	}

	if err := db.AutoMigrate(domain.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Log.Info("Schema migrated", zap.Int("models", len(domain.AllModels())))

	return runSteps(db)
}

func runSteps(db *gorm.DB) error {
	for _, step := range steps {
		logger.Log.Info("Executing step", zap.String("step", step.Name))
		if err := db.Exec(step.SQL).Error; err != nil {
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}
	return nil
}
