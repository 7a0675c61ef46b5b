package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/badwordle/internal/config"
	"github.com/robalobadob/badwordle/internal/daily"
	"github.com/robalobadob/badwordle/internal/db"
	"github.com/robalobadob/badwordle/internal/httpserver"
	"github.com/robalobadob/badwordle/internal/notify"
	"github.com/robalobadob/badwordle/internal/session"
	"github.com/robalobadob/badwordle/internal/store"
	"github.com/robalobadob/badwordle/internal/words"
)

func main() {
	configPath := flag.String("config", "", "directory holding config.yaml")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func setupLogging(cfg *config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func run(cfg *config.Config) error {
	wl, err := words.Load(cfg.TargetWordsFile, cfg.ValidWordsFile)
	if err != nil {
		return err
	}
	wl.Shuffle()

	players, results, closeDB, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	feed := notify.NewFeed(notify.DefaultSize)
	sessions := session.NewManager(wl, players, results, feed, session.WithDailySalt(cfg.DailySalt))
	srv := httpserver.New(sessions, feed, httpserver.Options{
		GameName:          cfg.GameName,
		JWTSecret:         cfg.JWTSecret,
		JWTExpiresDays:    cfg.JWTExpiresDays,
		CookieName:        cfg.CookieName,
		ClientOrigin:      cfg.ClientOrigin,
		Production:        cfg.Production,
		AdminUser:         cfg.AdminUser,
		AdminPasswordHash: cfg.AdminPasswordHash,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStores builds the player and daily result stores for the configured driver.
// Only the sqlite driver persists daily results; the others keep them in memory.
func openStores(cfg *config.Config) (store.Store, daily.Store, func(), error) {
	noop := func() {}
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		conn, err := db.OpenAndMigrate(cfg.DBPath)
		if err != nil {
			return nil, nil, noop, err
		}
		closeDB := func() {
			if err := conn.Close(); err != nil {
				log.Warn().Err(err).Msg("close db")
			}
		}
		return store.NewSQLStore(conn), daily.NewSQLStore(conn), closeDB, nil
	case config.StoreFile:
		if err := os.MkdirAll(cfg.SaveDir, 0o755); err != nil {
			return nil, nil, noop, err
		}
		fs, err := store.NewFileStore(cfg.SaveDir)
		if err != nil {
			return nil, nil, noop, err
		}
		return fs, daily.NewMemoryStore(), noop, nil
	default:
		return store.NewMemoryStore(), daily.NewMemoryStore(), noop, nil
	}
}
