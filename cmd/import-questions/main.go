// Command import-questions upserts a question sheet into Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/anatomyace/anatomy-ace/internal/config"
	"github.com/anatomyace/anatomy-ace/internal/database"
	"github.com/anatomyace/anatomy-ace/internal/logger"
	"github.com/anatomyace/anatomy-ace/internal/repository"
	"github.com/anatomyace/anatomy-ace/internal/service"
)

func main() {
	regenerate := flag.Bool("regenerate", false, "re-derive keywords for every imported question")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: import-questions [-regenerate] <file>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Redis is optional here; without it the server's pool cache expires on its own TTL.
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, question pool cache will not be invalidated")
		rdb = nil
	} else {
		defer rdb.Close()
	}

	questionService := service.NewQuestionService(repository.NewQuestionRepository(pool), rdb, cfg, log)

	fmt.Printf("=== Importing %s ===\n", path)
	res, err := questionService.ImportPath(ctx, path, *regenerate)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	stats, err := questionService.Stats(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read question stats")
	}

	fmt.Printf("Imported %d questions (%d keyword sets generated).\n", res.Imported, res.KeywordsGenerated)
	fmt.Printf("Question bank now holds %d questions.\n", stats.Total)
	for qt, n := range stats.ByType {
		fmt.Printf("  %-14s %d\n", qt, n)
	}
}
