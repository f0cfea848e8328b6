package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

// Store is the postgres implementation of repositories.Store. Every View and
// Update runs in its own database transaction; stock rows read inside Update
// are locked with SELECT ... FOR UPDATE until it commits.
type Store struct {
	db *gorm.DB
}

// Verify interface compliance
var _ repositories.Store = (*Store)(nil)

// Open connects to databaseURL. Slow queries and errors go to log.
func Open(databaseURL string, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormlogger.New(gormWriter{log: log}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := db.Exec(`SET TIME ZONE 'UTC'`).Error; err != nil {
		return nil, fmt.Errorf("failed to set time zone: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing gorm connection
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates every table
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// View runs fn in a read-only transaction
func (s *Store) View(ctx context.Context, fn func(tx repositories.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&tx{db: db})
	}, &sql.TxOptions{ReadOnly: true})
}

// Update runs fn in a read-write transaction that is rolled back when fn
// returns an error
func (s *Store) Update(ctx context.Context, fn func(tx repositories.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&tx{db: db, writable: true})
	})
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type tx struct {
	db       *gorm.DB
	writable bool
}

func (t *tx) checkWritable() error {
	if !t.writable {
		return repositories.ErrReadOnly
	}
	return nil
}

func (t *tx) Parts() repositories.PartRepository          { return partRepo{t} }
func (t *tx) Locations() repositories.LocationRepository  { return locationRepo{t} }
func (t *tx) Suppliers() repositories.SupplierRepository  { return supplierRepo{t} }
func (t *tx) Taxes() repositories.TaxRepository           { return taxRepo{t} }
func (t *tx) Categories() repositories.CategoryRepository { return categoryRepo{t} }
func (t *tx) Units() repositories.UnitRepository          { return unitRepo{t} }
func (t *tx) Machines() repositories.MachineRepository    { return machineRepo{t} }
func (t *tx) Stock() repositories.StockRepository         { return stockRepo{t} }
func (t *tx) Documents() repositories.DocumentRepository  { return documentRepo{t} }
func (t *tx) Sequences() repositories.SequenceRepository  { return sequenceRepo{t} }
func (t *tx) Users() repositories.UserRepository          { return userRepo{t} }

// first loads one row into dest, mapping a missing row to a NotFoundError
func first(db *gorm.DB, dest any, entity, key string, query any, args ...any) error {
	err := db.Where(query, args...).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.NewNotFoundError(entity, key)
	}
	return err
}

// duplicate maps a unique violation to a ValidationError on field
func duplicate(err error, field string, value any, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return entities.NewValidationError(field, value, message)
	}
	return err
}

// gormWriter sends gorm's log lines through zerolog
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Warn().Str("component", "gorm").Msgf(format, args...)
}
