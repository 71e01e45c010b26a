// Package postgres implements the quote and user repositories on PostgreSQL via GORM.
//
// Driver errors never leave the package untranslated: constraint violations
// become domain conflicts, connectivity failures become domain.ErrUnavailable,
// and transient failures are retried under a bounded RetryPolicy first.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/idusortus/quotes-service/internal/domain"
)

const pingTimeout = 5 * time.Second

// Config configures the store.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	Retry           RetryPolicy
	// Debug logs every SQL statement.
	Debug  bool
	Logger *slog.Logger
}

// Store owns the connection pool and hands out repositories bound to it.
type Store struct {
	db     *gorm.DB
	retry  *retrier
	logger *slog.Logger
}

// Open connects, verifies the connection and optionally migrates the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	gormLogger := logger.Default.LogMode(logger.Silent)
	if cfg.Debug {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt: true,
	})
	if err != nil {
		return nil, translate("database", "open", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres: getting sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	store := newStore(db, cfg.Retry, cfg.Logger)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := store.Check(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := Migrate(ctx, db); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	cfg.Logger.InfoContext(ctx, "postgres connected",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Bool("auto_migrate", cfg.AutoMigrate),
	)

	return store, nil
}

func newStore(db *gorm.DB, policy RetryPolicy, log *slog.Logger) *Store {
	return &Store{
		db:     db,
		retry:  newRetrier(policy, log),
		logger: log,
	}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("postgres: getting sql.DB: %w", err)
	}

	return sqlDB.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "postgres"
}

// Check implements ports.HealthChecker by pinging the pool.
func (s *Store) Check(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("postgres: getting sql.DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return domain.NewUnavailableError("postgres", "ping", err)
	}

	return nil
}

type txKey struct{}

// conn returns the transaction bound to ctx, or the pool.
func (s *Store) conn(ctx context.Context) (*gorm.DB, bool) {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx), true
	}

	return s.db.WithContext(ctx), false
}

// exec runs one statement. Outside a transaction transient failures are retried;
// inside one they abort the transaction and WithinTx retries it as a whole.
func (s *Store) exec(ctx context.Context, entity, op string, fn func(db *gorm.DB) error) error {
	db, inTx := s.conn(ctx)
	if inTx {
		return translate(entity, op, fn(db))
	}

	err := s.retry.do(ctx, op+" "+entity, func() error {
		return fn(db)
	})

	var exhausted *RetryExhaustedError
	if errors.As(err, &exhausted) {
		exhausted.Cause = translate(entity, op, exhausted.Cause)
		return exhausted
	}

	return translate(entity, op, err)
}

// WithinTx implements ports.Transactor. Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, inTx := s.conn(ctx); inTx {
		return fn(ctx)
	}

	return s.retry.do(ctx, "transaction", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(context.WithValue(ctx, txKey{}, tx))
		})
	})
}

// Quotes returns the quote repository.
func (s *Store) Quotes() *QuoteRepository {
	return &QuoteRepository{store: s}
}

// Users returns the user repository.
func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}
