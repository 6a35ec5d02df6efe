package main

import (
	"context"
	"os"

	"github.com/wimwenigerkind/LetsMeet/internal/config"
	"github.com/wimwenigerkind/LetsMeet/internal/db"
	"github.com/wimwenigerkind/LetsMeet/internal/importer"
	"github.com/wimwenigerkind/LetsMeet/internal/logger"
	"github.com/wimwenigerkind/LetsMeet/internal/source"
)

func main() {
	cfg := config.New()

	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// schema first, idempotently; the importers assume the tables exist
	if err := db.Migrate(database); err != nil {
		log.Error("failed to create schema", "err", err)
		os.Exit(1)
	}

	// fixed order: bulk structured dump, then the supplementary hobby
	// list, then the event history whose relationships reference users
	// the earlier sources created
	pipe := importer.New(database, log,
		source.NewExcelSource(cfg.Files.Excel),
		source.NewXMLSource(cfg.Files.XML),
		source.NewMongoSource(cfg.Mongo.URL, cfg.Mongo.Database, cfg.Mongo.Collection),
	)

	report, err := pipe.Run(context.Background())
	if err != nil {
		log.Error("import failed", "err", err)
		os.Exit(1)
	}

	report.Print(os.Stdout)
}
