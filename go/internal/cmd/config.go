package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/scorekeeper/go/internal/config"
	"github.com/mcdev12/scorekeeper/go/internal/models"
	"github.com/mcdev12/scorekeeper/go/internal/sports/base"
	_ "github.com/mcdev12/scorekeeper/go/internal/sports/cricket"
	_ "github.com/mcdev12/scorekeeper/go/internal/sports/football"
)

func setupLogging(cfg *config.Config) {
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	// Validated by config.Load.
	level, _ := cfg.LogLevel()
	zerolog.SetGlobalLevel(level)
}

// enabledSports checks that every configured sport has a registered plugin.
func enabledSports(cfg *config.Config) ([]models.Sport, error) {
	sports := cfg.EnabledSports()
	for _, sport := range sports {
		if _, err := base.GetPlugin(sport); err != nil {
			return nil, err
		}
		log.Info().Str("sport", string(sport)).Msg("sport plugin enabled")
	}
	return sports, nil
}
