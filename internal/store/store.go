// Package store provides the relational persistence layer for the engine:
// transaction facts, parsed and enriched records, overrides, merchant rules,
// and the dimension tables, backed by GORM.
package store

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fjacquet/spendsense/internal/logging"
	"fjacquet/spendsense/internal/models"
)

// Store wraps the database handle and exposes the engine's read and write
// paths. All methods are safe for concurrent use; GORM pools connections
// underneath.
type Store struct {
	db     *gorm.DB
	logger logging.Logger
}

// Open connects to the database selected by driver ("sqlite" or "postgres"),
// migrates the engine schema, and returns a ready Store.
func Open(driver, dsn string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}

	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

// NewStore wraps an existing GORM handle. Used by tests that open their own
// in-memory database.
func NewStore(db *gorm.DB, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	err := s.db.AutoMigrate(
		&models.UploadBatch{},
		&models.Transaction{},
		&models.ParsedTransaction{},
		&models.EnrichedTransaction{},
		&models.Override{},
		&models.MerchantRule{},
		&models.Merchant{},
		&models.MerchantAlias{},
		&models.Category{},
		&models.Subcategory{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// DB exposes the underlying handle for callers that need raw access.
func (s *Store) DB() *gorm.DB {
	return s.db
}
