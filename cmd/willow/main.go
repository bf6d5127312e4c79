package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/willow/internal/adapter"
	"github.com/fortuna/willow/internal/api/rest"
	"github.com/fortuna/willow/internal/api/websocket"
	"github.com/fortuna/willow/internal/assistant"
	"github.com/fortuna/willow/internal/assistant/llm"
	"github.com/fortuna/willow/internal/auth"
	"github.com/fortuna/willow/internal/cache"
	"github.com/fortuna/willow/internal/config"
	"github.com/fortuna/willow/internal/fantasy"
	"github.com/fortuna/willow/internal/logger"
	"github.com/fortuna/willow/internal/publisher"
	"github.com/fortuna/willow/internal/scheduler"
	"github.com/fortuna/willow/internal/source/archive"
	"github.com/fortuna/willow/internal/source/cricapi"
	"github.com/fortuna/willow/internal/source/rapidapi"
	"github.com/fortuna/willow/internal/source/scraper"
	"github.com/fortuna/willow/internal/source/static"
	"github.com/fortuna/willow/internal/store"
	"github.com/fortuna/willow/internal/store/repository"
	"github.com/fortuna/willow/internal/telegram"
)

const (
	serviceName    = "willow"
	serviceVersion = "1.0.0"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Infof("Starting %s v%s - Fantasy Cricket Assistant", serviceName, serviceVersion)

	// File cache backing every source.
	fileCache, err := cache.NewFileCache(cfg.Cache.Dir, map[string]time.Duration{
		cache.KindLiveMatches:     cfg.Cache.LiveMatches,
		cache.KindUpcomingMatches: cfg.Cache.UpcomingTTL,
		cache.KindRecentMatches:   cfg.Cache.RecentTTL,
		cache.KindMatchDetails:    cfg.Cache.UpcomingTTL,
		cache.KindPlayerStats:     cfg.Cache.PlayerStatsTTL,
		cache.KindPlayerSearch:    cfg.Cache.PlayerStatsTTL,
		cache.KindArchiveIndex:    cfg.Cache.ArchiveTTL,
		cache.KindArchiveMatch:    cfg.Cache.ArchiveTTL,
		cache.KindArchivePlayer:   cfg.Cache.ArchiveTTL,
	}, nil)
	if err != nil {
		log.Fatalf("Failed to initialize file cache: %v", err)
	}
	log.Infof("✓ File cache at %s", cfg.Cache.Dir)

	// Data sources. Each one is optional; the adapter skips nil entries.
	staticData := static.New()
	srcs := adapter.Sources{Static: staticData}

	var archiveClient *archive.Client
	if cfg.Sources.Archive.Enabled {
		archiveClient, err = archive.New(archive.Config{
			BaseURL: cfg.Sources.Archive.BaseURL,
			DataDir: cfg.Sources.Archive.DataDir,
			Formats: cfg.Sources.Archive.Formats,
		}, fileCache, log)
		if err != nil {
			log.Fatalf("Failed to initialize archive source: %v", err)
		}
		srcs.Archive = archiveClient
		log.Info("✓ Archive source enabled")
	}

	if cfg.Sources.CricAPI.Enabled {
		srcs.CricAPI = cricapi.New(cricapi.Config{
			BaseURL: cfg.Sources.CricAPI.BaseURL,
			APIKey:  cfg.Sources.CricAPI.APIKey,
			Timeout: cfg.Sources.CricAPI.Timeout,
		}, fileCache, log)
		log.Info("✓ CricAPI source enabled")
	}

	if cfg.Sources.RapidAPI.Enabled {
		srcs.RapidAPI = rapidapi.New(rapidapi.Config{
			BaseURL: cfg.Sources.RapidAPI.BaseURL,
			Host:    cfg.Sources.RapidAPI.Host,
			APIKey:  cfg.Sources.RapidAPI.APIKey,
			Timeout: cfg.Sources.RapidAPI.Timeout,
		}, fileCache, log)
		log.Info("✓ RapidAPI source enabled")
	}

	var scraperClient *scraper.Client
	if cfg.Sources.Scraper.Enabled {
		scraperClient, err = scraper.New(scraper.Config{
			BaseURL:         cfg.Sources.Scraper.BaseURL,
			RequestInterval: cfg.Sources.Scraper.RequestInterval,
			Headless:        cfg.Sources.Scraper.Headless,
		}, fileCache, log)
		if err != nil {
			log.Fatalf("Failed to initialize scraper source: %v", err)
		}
		defer scraperClient.Close()
		srcs.Scraper = scraperClient
		log.Info("✓ Scraper source enabled")
	}

	// The adapter and engine keep separate RNGs; each guards its own.
	data := adapter.New(srcs, staticData, fileCache,
		rand.New(rand.NewSource(time.Now().UnixNano())), log)
	engine := fantasy.New(data,
		rand.New(rand.NewSource(time.Now().UnixNano()+1)), log)
	rules := assistant.New(data, engine, log)

	// Chat front door: configured model with rule fallback.
	var provider llm.Provider
	switch cfg.LLM.Provider {
	case "gemini":
		provider = llm.NewGemini(cfg.LLM.GeminiAPIKey, "", cfg.LLM.GeminiModel, cfg.LLM.Timeout, log)
		log.Info("✓ Gemini provider enabled")
	case "openai":
		provider = llm.NewOpenAI(cfg.LLM.OpenAIAPIKey, "", cfg.LLM.OpenAIModel, cfg.LLM.Timeout, log)
		log.Info("✓ OpenAI provider enabled")
	default:
		log.Info("No model provider configured, chat runs rules-only")
	}
	chatMgr := llm.NewManager(provider, data, rules.Respond, llm.Config{
		FetchTimeout:  cfg.LLM.FetchTimeout,
		ContextBudget: cfg.LLM.ContextBudget,
	}, log)

	// Persistence. Optional; the REST surface degrades to anonymous-only.
	var (
		authSvc    *auth.Service
		userRepo   *repository.UserRepository
		chatRepo   *repository.ChatRepository
		matchRepo  *repository.MatchRepository
		playerRepo *repository.PlayerRepository
	)
	if cfg.Database.Enabled {
		db, err := store.NewDatabase(cfg.Database.DSN, log)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Info("✓ Connected to database")

		if err := db.RunMigrations(); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}

		userRepo = repository.NewUserRepository(db)
		chatRepo = repository.NewChatRepository(db)
		matchRepo = repository.NewMatchRepository(db)
		playerRepo = repository.NewPlayerRepository(db)
		authSvc = auth.NewService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost, log)
	}

	// Redis: stream publisher plus the hot live-match tier. Optional.
	var (
		redisPublisher *publisher.RedisPublisher
		redisCache     *cache.RedisCache
	)
	if cfg.Redis.Enabled {
		redisCache, err = connectRedis(cfg.Redis.URL, log)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		redisPublisher = publisher.NewRedisPublisher(redisCache.Client())
		log.Info("✓ Connected to Redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial archive sync in the background; the scheduler refreshes it
	// nightly after that.
	if archiveClient != nil {
		go func() {
			if err := archiveClient.Sync(ctx, false); err != nil {
				log.WithError(err).Warn("Initial archive sync failed")
			}
		}()
	}

	// WebSocket server
	wsServer := websocket.NewServer(log)
	go func() {
		if err := wsServer.Start(cfg.Server.WSPort); err != nil {
			log.WithError(err).Error("WebSocket server stopped")
		}
	}()

	// Scheduler
	sched := scheduler.NewOrchestrator(data, archiveClient, redisPublisher, redisCache, wsServer, matchRepo, playerRepo, &scheduler.Config{
		LivePollInterval:   cfg.Scheduler.LivePollInterval,
		ArchiveRefreshSpec: cfg.Scheduler.ArchiveRefreshSpec,
		EnableLivePolling:  cfg.Scheduler.EnableLivePolling,
		EnableArchiveSync:  cfg.Scheduler.EnableArchiveSync,
	}, log)
	go sched.Start(ctx)

	// Telegram bot
	if cfg.Telegram.Enabled {
		bot, err := telegram.NewBot(cfg.Telegram.BotToken, chatMgr, log)
		if err != nil {
			log.Fatalf("Failed to start Telegram bot: %v", err)
		}
		go bot.Run(ctx)
	}

	// REST API server
	handler := rest.NewHandler(data, engine, chatMgr, authSvc, userRepo, chatRepo, matchRepo, playerRepo, redisCache, sched, log)
	restServer := rest.NewServer(cfg.Server.RESTPort, handler, log)
	go func() {
		if err := restServer.Start(); err != nil {
			log.WithError(err).Error("REST server stopped")
		}
	}()

	log.Infof("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Infof("  REST API: http://0.0.0.0:%s", cfg.Server.RESTPort)
	log.Infof("  WebSocket: ws://0.0.0.0:%s", cfg.Server.WSPort)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down gracefully...")

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("REST server shutdown error")
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("WebSocket server shutdown error")
	}

	log.Infof("%s stopped", serviceName)
}

// connectRedis retries for a while so the service survives Redis coming
// up after it in docker-compose.
func connectRedis(url string, log *logrus.Logger) (*cache.RedisCache, error) {
	const maxRetries = 30
	const retryDelay = 2 * time.Second

	var redisCache *cache.RedisCache
	var err error
	for i := 0; i < maxRetries; i++ {
		redisCache, err = cache.NewRedisCache(url)
		if err == nil {
			return redisCache, nil
		}
		if i < maxRetries-1 {
			log.Warnf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
			time.Sleep(retryDelay)
		}
	}
	return nil, err
}
