// Command migrate applies the SQL schema migrations (postgres and sqlite).
//
//	migrate up | down | version | force N
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"

	"github.com/MrKriegler/go-warranty/internal/platform/config"
	"github.com/MrKriegler/go-warranty/internal/platform/logging"
	"github.com/MrKriegler/go-warranty/internal/store/sqldb"
)

func main() {
	cfg := config.MustLoad()
	log := logging.New(cfg.Env, cfg.LogLevel)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate up | down | version | force N")
		os.Exit(2)
	}

	sqlCfg := sqldb.Config{Dialect: sqldb.DialectPostgres, DSN: cfg.DatabaseURL}
	switch cfg.DBType {
	case "postgres":
	case "sqlite":
		sqlCfg = sqldb.Config{Dialect: sqldb.DialectSQLite, DSN: cfg.SQLitePath}
	default:
		log.Error("migrations only apply to sql databases", "db", cfg.DBType)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := sqldb.Open(ctx, sqlCfg)
	if err != nil {
		log.Error("failed to connect", "err", err)
		os.Exit(1)
	}

	m, err := sqldb.NewMigrator(db)
	if err != nil {
		log.Error("failed to load migrations", "err", err)
		os.Exit(1)
	}
	defer m.Close()

	switch os.Args[1] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "version":
		v, dirty, verr := m.Version()
		if verr == nil {
			log.Info("schema version", "version", v, "dirty", dirty)
		}
		err = verr
	case "force":
		if len(os.Args) < 3 {
			err = errors.New("force needs a version")
			break
		}
		var v int
		if v, err = strconv.Atoi(os.Args[2]); err == nil {
			err = m.Force(v)
		}
	default:
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}

	if errors.Is(err, migrate.ErrNoChange) || errors.Is(err, migrate.ErrNilVersion) {
		log.Info("nothing to do", "cmd", os.Args[1])
		return
	}
	if err != nil {
		log.Error("migration failed", "cmd", os.Args[1], "err", err)
		os.Exit(1)
	}
	log.Info("migration done", "cmd", os.Args[1])
}
