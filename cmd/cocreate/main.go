package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"cocreate/internal/app"
	"cocreate/pkg/config"
	"cocreate/pkg/logger"
	"cocreate/pkg/shutdown"
	"cocreate/pkg/state"
)

// set build metadata
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// load .env file if present
	_ = godotenv.Load(".env")

	flags, err := config.ParseConfigFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fileCfg, fileExists, err := config.ParseConfigFile(flags)
	if err != nil {
		shutdown.Abort("failed to load config file", err, "")
	}

	eff, err := config.LoadEffectiveConfig(flags, fileCfg, fileExists)
	if err != nil {
		shutdown.Abort("failed to build effective config", err, "")
	}

	// initialize logger after config is fully loaded
	logger.InitWith(logger.Options{
		Level:  eff.Config.Logging.Level,
		Format: eff.Config.Logging.Format,
		Sink:   eff.Config.Logging.Sink,
	})
	defer logger.Sync()
	logger.Info("effective_config_loaded", "source", eff.Source, "addr", eff.Addr, "db_path", eff.DBPath, "engine", eff.Config.Server.Engine)

	crashDir := state.PathsFor(eff.DBPath).Crash
	a, err := app.New(eff, version, commit, buildDate)
	if err != nil {
		shutdown.Abort("failed to initialize app", err, crashDir)
	}

	// set up context and signal handling for graceful shutdown
	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	if err := a.Run(ctx); err != nil {
		shutdown.Abort("app run failed", err, crashDir)
	}

	// bounded teardown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer shutdownCancel()
	_ = a.Shutdown(shutdownCtx)
}
