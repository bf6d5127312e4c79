package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/willow/internal/cache"
	"github.com/fortuna/willow/internal/logger"
	"github.com/fortuna/willow/internal/source/archive"
	"github.com/fortuna/willow/internal/store"
	"github.com/fortuna/willow/internal/store/repository"
)

const (
	appName    = "willow-archive-sync"
	appVersion = "1.0.0"
)

func main() {
	var (
		baseURL  = flag.String("base-url", getEnv("ARCHIVE_BASE_URL", ""), "Archive download base URL")
		dataDir  = flag.String("data-dir", getEnv("ARCHIVE_DATA_DIR", "data/archive"), "Directory for extracted match files")
		cacheDir = flag.String("cache-dir", getEnv("CACHE_DIR", "data/cache"), "File cache directory")
		formats  = flag.String("formats", "t20,odi,ipl", "Comma-separated formats to sync")
		force    = flag.Bool("force", false, "Re-download even if the archive is fresh")
		player   = flag.String("player", "", "Print aggregated stats for one player and exit")
		dsn      = flag.String("dsn", getEnv("DATABASE_DSN", ""), "Postgres DSN; when set, recent matches are snapshotted")
		logLevel = flag.String("log-level", getEnv("LOG_LEVEL", "info"), "Log level")
	)
	flag.Parse()

	log := logger.New(*logLevel, "text")
	log.Infof("=== %s v%s ===", appName, appVersion)

	fc, err := cache.NewFileCache(*cacheDir, nil, nil)
	if err != nil {
		log.Fatalf("create file cache: %v", err)
	}

	client, err := archive.New(archive.Config{
		BaseURL: *baseURL,
		DataDir: *dataDir,
		Formats: splitFormats(*formats),
	}, fc, log)
	if err != nil {
		log.Fatalf("create archive client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	start := time.Now()
	if err := client.Sync(ctx, *force); err != nil {
		log.Fatalf("archive sync failed: %v", err)
	}
	log.Infof("✓ Archive sync complete in %v", time.Since(start).Round(time.Second))

	if *player != "" {
		stats, err := client.PlayerStats(ctx, *player)
		if err != nil {
			log.Fatalf("aggregate player %q: %v", *player, err)
		}
		out, _ := json.MarshalIndent(stats, "", "  ")
		os.Stdout.Write(append(out, '\n'))
		return
	}

	if *dsn != "" {
		snapshotMatches(ctx, client, *dsn, log)
	}
}

// snapshotMatches persists the archive's recent matches so the API can
// serve history without re-reading match files.
func snapshotMatches(ctx context.Context, client *archive.Client, dsn string, log *logrus.Logger) {
	db, err := store.NewDatabase(dsn, log)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	matches, err := client.RecentMatches(ctx)
	if err != nil {
		log.Fatalf("read recent matches: %v", err)
	}

	repo := repository.NewMatchRepository(db)
	saved := 0
	for i := range matches {
		if _, err := repo.Upsert(ctx, &matches[i]); err != nil {
			log.Warnf("snapshot match %s: %v", matches[i].Teams, err)
			continue
		}
		saved++
	}
	log.Infof("✓ Snapshotted %d of %d recent matches", saved, len(matches))
}

func splitFormats(s string) []string {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
