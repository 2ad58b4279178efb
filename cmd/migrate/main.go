package main

import (
	"os"

	"github.com/quocanhngo/kickoff/internal/config"
	"github.com/quocanhngo/kickoff/migrations"
	"github.com/quocanhngo/kickoff/pkg/logger"
	log "github.com/sirupsen/logrus"
)

const usage = "usage: migrate [up|down]"

// Applies pending migrations, or with "down" reverts the most recent one.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	logger.Setup(cfg.App.Env, cfg.App.LogLevel)

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	switch direction {
	case "up":
		err = migrations.Run(cfg.DB.URL())
	case "down":
		err = migrations.Rollback(cfg.DB.URL())
	default:
		log.Fatal(usage)
	}
	if err != nil {
		log.Fatalf("❌ Migration %s failed: %v", direction, err)
	}
}
