package db

import (
	"fmt"
	"log"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sujalbistaa/qanda/internal/models"
)

// Open returns a GORM connection for a DATABASE_URL of the form
// postgres://... or sqlite://<path>.
func Open(dbURL string, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	memory := false

	switch {
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		// pgx accepts the URL form as-is.
		dialector = postgres.Open(dbURL)
		log.Println("Connecting to PostgreSQL database...")
	case strings.HasPrefix(dbURL, "sqlite://"):
		path := strings.TrimPrefix(dbURL, "sqlite://")
		memory = path == ":memory:"
		dialector = sqlite.Open(withForeignKeys(path))
		log.Println("Connecting to SQLite database at", path)
	default:
		return nil, fmt.Errorf("invalid DATABASE_URL %q: must start with postgres:// or sqlite://", dbURL)
	}

	level := logger.Silent
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if memory {
		// Every new connection to :memory: is a fresh, empty database.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	log.Println("Database connection established.")
	return db, nil
}

// Migrate creates or updates every table, including the two vote join tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Session{}, &models.Question{}, &models.Answer{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return backfillTopicFold(db)
}

// backfillTopicFold fills the search column for rows written before it existed.
func backfillTopicFold(db *gorm.DB) error {
	var stale []models.Question
	if err := db.Select("id", "topic").Where("topic_fold = '' AND topic <> ''").Find(&stale).Error; err != nil {
		return fmt.Errorf("find unfolded topics: %w", err)
	}
	for _, q := range stale {
		err := db.Model(&models.Question{}).Where("id = ?", q.ID).
			UpdateColumn("topic_fold", models.FoldTopic(q.Topic)).Error
		if err != nil {
			return fmt.Errorf("fold topic %d: %w", q.ID, err)
		}
	}
	return nil
}

func withForeignKeys(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}
