package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"roomdisplay/core/config"
	"roomdisplay/core/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type IDatabase interface {
	ExecContext(ctx context.Context, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	SQLx() *sqlx.DB
}

type Database struct {
	sqlx *sqlx.DB
}

func InitDB(cfg config.DatabaseConfig) (*Database, error) {
	logger.Info("Database:InitDB:Start")

	sqlxDB, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		logger.Error("Database:InitDB:ConnectFailed", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB := sqlxDB.DB
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err = sqlDB.Ping(); err != nil {
		logger.Error("Database:InitDB:PingFailed", "error", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database:InitDB:Connected")
	return &Database{sqlx: sqlxDB}, nil
}

func (d *Database) ExecContext(ctx context.Context, query string, args ...any) error {
	_, err := d.sqlx.ExecContext(ctx, query, args...)
	return err
}

func (d *Database) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.GetContext(ctx, dest, query, args...)
}

func (d *Database) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.SelectContext(ctx, dest, query, args...)
}

func (d *Database) NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error) {
	return d.sqlx.NamedExecContext(ctx, query, arg)
}

func (d *Database) SQLx() *sqlx.DB {
	return d.sqlx
}
