package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "lodgechat/internal/adapters/http_server"
	"lodgechat/internal/adapters/inference"
	"lodgechat/internal/adapters/memindex"
	"lodgechat/internal/adapters/observability"
	redisad "lodgechat/internal/adapters/redis"
	"lodgechat/internal/app"
	"lodgechat/internal/shared"
	mysqlrepo "lodgechat/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	inf, err := inference.New(cfg.InferenceBase, cfg.InferenceKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("inference client init failed")
	}

	// load the embedding index from persisted rows
	index := memindex.New()
	recs, err := repo.ListEmbeddings(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("loading embeddings failed")
	}
	index.Load(recs)
	log.Info().Int("embeddings", index.Len()).Msg("embedding index loaded")

	sessions := app.NewSessionManager(cfg.HistoryWindow, cfg.SessionTTL)
	go func() {
		for range time.Tick(cfg.SessionTTL / 2) {
			if n := sessions.Sweep(); n > 0 {
				log.Info().Int("dropped", n).Msg("idle sessions evicted")
			}
		}
	}()

	retriever := app.NewRetriever(inf, index, cfg.TopK)
	composer := app.NewComposer(inf)
	chat := app.NewChatService(cache, sessions, retriever, composer, cfg.CacheTTL,
		app.Timeouts{Cache: cfg.CacheTimeout, Chat: cfg.ChatTimeout})
	ingest := app.NewIngestService(repo)
	indexer := app.NewIndexerService(repo, inf, index, cfg.Workers)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Chat:          chat,
		Ingest:        ingest,
		Indexer:       indexer,
		WebhookSecret: cfg.WebhookSecret,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
