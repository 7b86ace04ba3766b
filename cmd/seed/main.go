package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/blog-publishing-api/internal/config"
	"github.com/blog-publishing-api/internal/database"
	"github.com/blog-publishing-api/internal/errs"
	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
	"github.com/blog-publishing-api/internal/service"
	"github.com/blog-publishing-api/pkg/logger"
)

var (
	defaultCategories = []string{"技术文章", "随笔", "作品集"}
	defaultTags       = []string{"Node.js", "前端", "后端", "生活"}
)

func main() {
	down := flag.Bool("down", false, "roll back the last migration instead of seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log := logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if *down {
		if err := db.MigrateDown(cfg.Database.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to roll back migration")
		}
		return
	}

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	services := service.NewServices(repository.New(db), cfg, log)

	created := 0
	for _, name := range defaultCategories {
		_, err := services.Taxonomy.CreateCategory(ctx, models.Admin, &models.TaxonomyInput{Name: name})
		switch {
		case err == nil:
			created++
		case errs.IsDuplicateKey(err):
			log.Debug().Str("category", name).Msg("Category already exists")
		default:
			log.Fatal().Err(err).Str("category", name).Msg("Failed to seed category")
		}
	}
	for _, name := range defaultTags {
		_, err := services.Taxonomy.CreateTag(ctx, models.Admin, &models.TaxonomyInput{Name: name})
		switch {
		case err == nil:
			created++
		case errs.IsDuplicateKey(err):
			log.Debug().Str("tag", name).Msg("Tag already exists")
		default:
			log.Fatal().Err(err).Str("tag", name).Msg("Failed to seed tag")
		}
	}

	log.Info().Int("created", created).Msg("Seeding completed")
}
