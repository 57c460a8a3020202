package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/apiextract/internal/config"
	"github.com/aleister1102/apiextract/internal/history"
	"github.com/aleister1102/apiextract/internal/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, err := ParseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		return 2
	}

	bootstrap := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile, bootstrap)
	if err != nil {
		bootstrap.Error().Err(err).Str("path", flags.GlobalConfigFile).Msg("Could not load config")
		return 1
	}
	if flags.OutputDir != "" {
		gCfg.ExportConfig.OutputDir = flags.OutputDir
	}
	if err := config.ValidateConfig(gCfg); err != nil {
		bootstrap.Error().Err(err).Msg("Configuration validation failed")
		return 1
	}

	runID := uuid.NewString()
	appLogger, err := logger.NewLoggerBuilder().
		WithConfig(gCfg.LogConfig).
		WithRunID(runID).
		Build()
	if err != nil {
		bootstrap.Error().Err(err).Msg("Could not initialize logger")
		return 1
	}
	zLogger := *appLogger.GetZerolog()
	zLogger.Debug().
		Str("mode", flags.Mode).
		Int("inputs", len(flags.Inputs)).
		Str("log_file", appLogger.FilePath()).
		Msg("Logger initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			zLogger.Warn().Str("signal", sig.String()).Msg("Received interrupt, cancelling run")
			cancel()
		case <-ctx.Done():
		}
	}()

	var historyDB *history.DB
	var historyID int64
	if gCfg.HistoryConfig.Enabled {
		historyDB, err = history.NewDB(gCfg.HistoryConfig.SQLiteDBPath, zLogger)
		if err != nil {
			zLogger.Error().Err(err).Msg("Failed to open run history, continuing without it")
		} else {
			defer historyDB.Close()
			historyID, err = historyDB.RecordRunStart(runID, flags.Mode, runInputs(flags), time.Now())
			if err != nil {
				zLogger.Error().Err(err).Msg("Failed to record run start")
				historyDB = nil
			}
		}
	}

	summary, runErr := NewApp(gCfg, flags, runID, zLogger, os.Stdout).Run(ctx)
	if runErr != nil {
		summary.Status = history.StatusFailed
		summary.ErrorMessage = runErr.Error()
	}

	if historyDB != nil {
		if err := historyDB.UpdateRunCompletion(historyID, time.Now(), summary); err != nil {
			zLogger.Error().Err(err).Msg("Failed to record run completion")
		}
	}

	if runErr != nil {
		zLogger.Error().Err(runErr).Msg("Run failed")
		return 1
	}
	zLogger.Info().
		Int("responses", summary.Responses).
		Int("pages", summary.Pages).
		Int("rows", summary.Rows).
		Msg("Run completed")
	return 0
}

func runInputs(flags AppFlags) []string {
	if flags.LoadDir != "" {
		return []string{flags.LoadDir}
	}
	return flags.Inputs
}
