// Command web serves the EnergyMix dashboard API: production series, mix
// breakdowns, health and metrics, plus a WebSocket channel that tells
// connected dashboards when the loader has replaced the table. It shares
// nothing with the loader but the database file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"energymix/internal/app"
	"energymix/internal/config"
	"energymix/pkg/contracts"
)

func main() {
	configPath := flag.String("config", "", "explicit YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to assemble application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		application.Logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
