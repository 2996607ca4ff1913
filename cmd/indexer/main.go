package main

import (
	"context"
	"database/sql"
	"flag"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"lodgechat/internal/adapters/inference"
	"lodgechat/internal/adapters/memindex"
	"lodgechat/internal/adapters/observability"
	"lodgechat/internal/app"
	"lodgechat/internal/shared"
	mysqlrepo "lodgechat/internal/storage/mysql"
)

func main() {
	force := flag.Bool("force", false, "re-embed every record regardless of template version")
	flag.Parse()

	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.InferenceBase).
		Int("workers", cfg.Workers).
		Bool("force", *force).
		Msg("indexer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	inf, err := inference.New(cfg.InferenceBase, cfg.InferenceKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("inference client init failed")
	}

	// The batch job persists to MySQL; the API loads rows at boot. The local
	// index here only absorbs upserts so the service can run standalone.
	indexer := app.NewIndexerService(repo, inf, memindex.New(), cfg.Workers)

	done, err := indexer.ReindexAll(ctx, *force)
	if err != nil {
		log.Fatal().Err(err).Msg("reindex failed")
	}
	log.Info().Int("embedded", done).Msg("indexing completed")
}
