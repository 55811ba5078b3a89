package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lshigami/orientation-event/config"
	"github.com/lshigami/orientation-event/database"
	"github.com/lshigami/orientation-event/internal/cli"
	"github.com/lshigami/orientation-event/internal/logger"
)

func main() {
	logger.Init("warn", true)

	open := func() (*gorm.DB, error) {
		cfg, err := config.NewConfig()
		if err != nil {
			return nil, err
		}
		db, err := database.NewDatabase(cfg)
		if err != nil {
			return nil, err
		}
		return db, database.Migrate(db)
	}

	if err := cli.NewRootCommand(open).Execute(); err != nil {
		log.Error().Err(err).Msg("orientctl failed")
		os.Exit(1)
	}
}
