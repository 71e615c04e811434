// Command migrate applies the SQL files in migrations/ in lexical order,
// recording applied versions in schema_migrations so reruns are no-ops.
package main

import (
	"database/sql"
	"flag"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"crowdfund/internal/infra"
)

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", "migrations", "directory containing .sql migration files")
	flag.Parse()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	if _, err := db.Exec(`create table if not exists schema_migrations (
        version    text primary key,
        applied_at timestamptz not null default now()
    )`); err != nil {
		logger.Fatal().Err(err).Msg("create schema_migrations")
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", *dir).Msg("read migrations directory")
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	applied := 0
	for _, name := range files {
		var exists bool
		if err := db.QueryRow(`select exists (select 1 from schema_migrations where version = $1)`, name).Scan(&exists); err != nil {
			logger.Fatal().Err(err).Str("version", name).Msg("check migration state")
		}
		if exists {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(*dir, name))
		if err != nil {
			logger.Fatal().Err(err).Str("version", name).Msg("read migration")
		}

		tx, err := db.Begin()
		if err != nil {
			logger.Fatal().Err(err).Str("version", name).Msg("begin migration")
		}
		if _, err := tx.Exec(string(raw)); err != nil {
			_ = tx.Rollback()
			logger.Fatal().Err(err).Str("version", name).Msg("apply migration")
		}
		if _, err := tx.Exec(`insert into schema_migrations (version) values ($1)`, name); err != nil {
			_ = tx.Rollback()
			logger.Fatal().Err(err).Str("version", name).Msg("record migration")
		}
		if err := tx.Commit(); err != nil {
			logger.Fatal().Err(err).Str("version", name).Msg("commit migration")
		}

		logger.Info().Str("version", name).Msg("migration applied")
		applied++
	}

	logger.Info().Int("applied", applied).Int("total", len(files)).Msg("migrations up to date")
}
