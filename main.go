package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/filmoteka/filmoteka-bot/internal/config"
	"github.com/filmoteka/filmoteka-bot/internal/discovery"
	"github.com/filmoteka/filmoteka-bot/internal/handlers"
	"github.com/filmoteka/filmoteka-bot/internal/lookup"
	"github.com/filmoteka/filmoteka-bot/internal/middleware"
	"github.com/filmoteka/filmoteka-bot/internal/omdb"
	"github.com/filmoteka/filmoteka-bot/internal/randomfilm"
	"github.com/filmoteka/filmoteka-bot/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load("config.env")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	pgStore, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()

	providerClient := &http.Client{Timeout: cfg.ProviderTimeout}

	movies, err := omdb.New(cfg.OMDBAPIKey, cfg.OMDBBaseURL,
		omdb.WithHTTPClient(providerClient),
		omdb.WithMaxInFlight(cfg.ProviderMaxInFlight),
	)
	if err != nil {
		log.Fatalf("omdb: %v", err)
	}

	var lookupOpts []lookup.Option
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "filmoteka")
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		lookupOpts = append(lookupOpts, lookup.WithLocker(store.NewUserLock(rdb, 30*time.Second)))
	} else {
		log.Println("REDIS_ADDR not set: per-user admission lock disabled")
	}

	lookupSvc := lookup.New(pgStore, movies, lookupOpts...)

	titles, err := randomfilm.New(cfg.RandomFilmURL)
	if err != nil {
		log.Fatalf("randomfilm: %v", err)
	}
	finder := discovery.New(titles, movies, cfg.DiscoveryAttempts, cfg.DiscoveryBackoff)

	h := handlers.NewHandlers(pgStore, lookupSvc, finder, cfg.ActivationCode)
	access := middleware.NewAccess(pgStore)

	b, err := bot.New(cfg.BotToken)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil
	}, access.RequireUser(h.MainHandler))

	log.Println("Bot started. Press Ctrl+C to stop.")
	b.Start(ctx)
}
