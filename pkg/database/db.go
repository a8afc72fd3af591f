package database

import (
	"context"
	"database/sql"
	"time"

	"leave-manager/internal/constants"
	"leave-manager/pkg/config"

	_ "github.com/go-sql-driver/mysql"
)

// DB wraps the MySQL connection pool and carries the per-query timeouts the
// repositories apply. Queries themselves live in the repository layer.
type DB struct {
	conn         *sql.DB
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("mysql", databaseURL)
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(10 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{
		conn:         conn,
		readTimeout:  constants.DBReadTimeoutDefault,
		writeTimeout: constants.DBWriteTimeoutDefault,
	}, nil
}

// NewWithConfig creates a database connection with pool settings from config.
func NewWithConfig(databaseURL string, cfg *config.Config) (*DB, error) {
	conn, err := sql.Open("mysql", databaseURL)
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(cfg.DBMaxOpenConns)
	conn.SetMaxIdleConns(cfg.DBMaxIdleConns)
	conn.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Minute)
	conn.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTime) * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	rt := cfg.DBReadTimeout
	if rt == 0 {
		rt = constants.DBReadTimeoutDefault
	}
	wt := cfg.DBWriteTimeout
	if wt == 0 {
		wt = constants.DBWriteTimeoutDefault
	}

	return &DB{conn: conn, readTimeout: rt, writeTimeout: wt}, nil
}

// Conn exposes the underlying pool for the repository layer.
func (db *DB) Conn() *sql.DB { return db.conn }

// ReadContext derives a context bounded by the configured read timeout.
func (db *DB) ReadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.readTimeout)
}

// WriteContext derives a context bounded by the configured write timeout.
func (db *DB) WriteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.writeTimeout)
}

// Ping verifies connectivity; used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.ReadContext(ctx)
	defer cancel()
	return db.conn.PingContext(ctx)
}

func (db *DB) Close() error { return db.conn.Close() }
