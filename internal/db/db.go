package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// Options describes how to reach the database. Driver is "postgres" (lib/pq) or "pgx".
type Options struct {
	Driver       string
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	MaxOpenConns int
	MaxIdleConns int
}

func (o Options) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		o.Host, o.Port, o.Name, o.User, o.Password,
	)
}

func Connect(ctx context.Context, o Options) (*sql.DB, error) {
	driver := o.Driver
	if driver == "" {
		driver = "postgres"
	}

	db, err := sql.Open(driver, o.DSN())
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s connection failed", driver)
	}
	if o.MaxOpenConns > 0 {
		db.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		db.SetMaxIdleConns(o.MaxIdleConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pinging database failed")
	}

	return db, nil
}
