package checkpoint

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gsqlite "github.com/glebarez/sqlite"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

//go:embed migrations/mysql/*.sql
var mysqlMigrations embed.FS

// Dialect selects the SQL backend behind a SQLStore.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
)

// SQLStoreConfig configures a SQLStore.
type SQLStoreConfig struct {
	Dialect Dialect
	DSN     string

	// MigrationsTable is golang-migrate's own bookkeeping table; defaults
	// to "brigade_schema_migrations". Unused for DialectSQLite.
	MigrationsTable string
}

// checkpointRow is the brigade_checkpoints table row.
type checkpointRow struct {
	JobID     string    `gorm:"column:job_id;primaryKey"`
	Payload   string    `gorm:"column:payload"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (checkpointRow) TableName() string { return "brigade_checkpoints" }

// lockRow is the brigade_locks table row, implementing the advisory lock
// across processes for database-backed deployments.
type lockRow struct {
	JobID      string    `gorm:"column:job_id;primaryKey"`
	Token      string    `gorm:"column:token"`
	AcquiredAt time.Time `gorm:"column:acquired_at"`
}

func (lockRow) TableName() string { return "brigade_locks" }

// SQLStore is a gorm-backed Store supporting Postgres, MySQL and SQLite
// (the pure-Go glebarez/sqlite dialect, so the whole module stays cgo-free).
type SQLStore struct {
	db      *gorm.DB
	jobID   string
	token   string
	dialect Dialect
}

// OpenSQLStore connects, runs schema migrations, and acquires the advisory
// lock row for jobID.
//
// Postgres and MySQL run their schema through golang-migrate against
// embedded SQL files (migrations/postgres, migrations/mysql). SQLite uses
// gorm's AutoMigrate instead: golang-migrate's sqlite3 driver depends on
// mattn/go-sqlite3, which requires cgo, and that would defeat the point of
// picking the pure-Go glebarez/sqlite dialect for the default backend.
func OpenSQLStore(ctx context.Context, jobID string, cfg SQLStoreConfig) (*SQLStore, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	var db *gorm.DB
	var err error
	switch cfg.Dialect {
	case DialectPostgres:
		db, err = gorm.Open(postgres.Open(cfg.DSN), gormCfg)
	case DialectMySQL:
		db, err = gorm.Open(mysql.Open(cfg.DSN), gormCfg)
	case DialectSQLite:
		db, err = gorm.Open(gsqlite.Open(cfg.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("checkpoint: unsupported dialect %q", cfg.Dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s database: %w", cfg.Dialect, err)
	}

	if err := migrateSchema(db, cfg); err != nil {
		return nil, err
	}

	s := &SQLStore{
		db:      db,
		jobID:   jobID,
		token:   uuid.NewString(),
		dialect: cfg.Dialect,
	}

	if err := s.acquireLock(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func migrateSchema(db *gorm.DB, cfg SQLStoreConfig) error {
	if cfg.Dialect == DialectSQLite {
		return db.AutoMigrate(&checkpointRow{}, &lockRow{})
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("checkpoint: unwrap sql.DB: %w", err)
	}

	table := cfg.MigrationsTable
	if table == "" {
		table = "brigade_schema_migrations"
	}

	var driver database.Driver
	var fsys embed.FS
	var sourcePath, name string

	switch cfg.Dialect {
	case DialectPostgres:
		driver, err = migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{MigrationsTable: table})
		fsys, sourcePath, name = postgresMigrations, "migrations/postgres", "postgres"
	case DialectMySQL:
		driver, err = migratemysql.WithInstance(sqlDB, &migratemysql.Config{MigrationsTable: table})
		fsys, sourcePath, name = mysqlMigrations, "migrations/mysql", "mysql"
	default:
		return fmt.Errorf("checkpoint: unsupported dialect %q", cfg.Dialect)
	}
	if err != nil {
		return fmt.Errorf("checkpoint: %s migrate driver: %w", name, err)
	}

	sourceDriver, err := iofs.New(fsys, sourcePath)
	if err != nil {
		return fmt.Errorf("checkpoint: migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, name, driver)
	if err != nil {
		return fmt.Errorf("checkpoint: migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("checkpoint: run %s migrations: %w", name, err)
	}
	return nil
}

func (s *SQLStore) acquireLock(ctx context.Context) error {
	row := lockRow{JobID: s.jobID, Token: s.token, AcquiredAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return ErrLocked
	}
	return nil
}

// Load implements Store.
func (s *SQLStore) Load(ctx context.Context) (*Checkpoint, error) {
	var row checkpointRow
	err := s.db.WithContext(ctx).First(&row, "job_id = ?", s.jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: load row: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal([]byte(row.Payload), &cp); err != nil {
		return nil, fmt.Errorf("checkpoint: parse payload: %w", err)
	}
	return &cp, nil
}

// Save implements Store. It upserts the single row for the job inside a
// transaction, so a reader never sees a half-written payload.
func (s *SQLStore) Save(ctx context.Context, cp *Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("checkpoint: marshal: %w", err)
	}

	row := checkpointRow{JobID: s.jobID, Payload: string(data), UpdatedAt: time.Now().UTC()}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&checkpointRow{}).Where("job_id = ?", s.jobID).Updates(map[string]any{
			"payload":    row.Payload,
			"updated_at": row.UpdatedAt,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return tx.Create(&row).Error
		}
		return nil
	})
}

// Close releases the lock row (if still owned by this instance's token)
// and closes the underlying connection pool.
func (s *SQLStore) Close() error {
	s.db.Where("job_id = ? AND token = ?", s.jobID, s.token).Delete(&lockRow{})

	sqlDB, err := s.db.DB()
	if err != nil {
		return nil
	}
	return sqlDB.Close()
}

var _ Store = (*SQLStore)(nil)
