package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/tbrdeals/cmd/active"
	"github.com/lepinkainen/tbrdeals/cmd/export"
	"github.com/lepinkainen/tbrdeals/cmd/find"
	"github.com/lepinkainen/tbrdeals/cmd/setup"
	"github.com/lepinkainen/tbrdeals/internal/config"
)

var (
	runFind   = find.FindWithParams
	runActive = active.ActiveWithParams
	runLatest = active.LatestWithParams
	runSetup  = setup.SetupWithParams
	runExport = export.ExportWithParams
)

// CLI represents the complete command structure for the tbrdeals application
type CLI struct {
	// Global flags
	Dbfile string `help:"Path to the deal history SQLite database (defaults to deals.dbfile in config)"`

	// Datasette flags
	Datasette       bool   `help:"Mirror appended deals to a remote Datasette"`
	DatasetteRemote string `help:"Base URL of the Datasette instance"`

	Find   FindCmd   `cmd:"" help:"Run the deal finder against your library exports"`
	Active ActiveCmd `cmd:"" help:"List deals that are currently active"`
	Latest LatestCmd `cmd:"" help:"List deals found by the most recent run"`
	Setup  SetupCmd  `cmd:"" help:"Interactive configuration wizard"`
	Export ExportCmd `cmd:"" help:"Download a fresh StoryGraph library export"`
}

// FindCmd runs one deal-finding pass.
type FindCmd struct {
	Covers bool `help:"Download cover thumbnails for found deals" default:"true" negatable:""`
}

// ActiveCmd lists the currently active deals.
type ActiveCmd struct{}

// LatestCmd lists the deals found by the most recent run.
type LatestCmd struct{}

// SetupCmd runs the configuration wizard.
type SetupCmd struct {
	Config string `help:"Path of the config file to write" default:"config.yaml"`
}

// ExportCmd downloads a StoryGraph library export.
type ExportCmd struct {
	DownloadDir string `short:"d" help:"Directory to download the export into"`
	Headful     bool   `help:"Run the browser with a visible window"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("tbrdeals"),
		kong.Description("Find deals on the books in your to-be-read pile."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	// Credentials are usually supplied via the environment.
	viper.AutomaticEnv()
	for key, env := range map[string]string{
		"librofm.username":    "LIBROFM_USERNAME",
		"librofm.password":    "LIBROFM_PASSWORD",
		"storygraph.email":    "STORYGRAPH_EMAIL",
		"storygraph.password": "STORYGRAPH_PASSWORD",
		"datasette.token":     "DATASETTE_TOKEN",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			slog.Error("Failed to bind environment variable", "key", key, "error", err)
		}
	}

	viper.SetDefault("storygraph.automation.timeout", "3m")
	viper.SetDefault("storygraph.automation.download_dir", "exports")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, run 'tbrdeals setup' to create one")
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	if cli.Dbfile != "" {
		config.SetDealsDBFile(cli.Dbfile)
	}

	if cli.Datasette {
		viper.Set("datasette.enabled", true)
		config.DatasetteEnabled = true
	}
	if cli.DatasetteRemote != "" {
		viper.Set("datasette.remote", cli.DatasetteRemote)
		config.DatasetteRemote = cli.DatasetteRemote
	}
}

// Run methods for each command

func (f *FindCmd) Run() error {
	if len(config.LibraryExports) == 0 {
		return fmt.Errorf("no library exports configured (run 'tbrdeals setup' first, or set libraryexports in config)")
	}

	return runFind(config.DealsDBFile, f.Covers)
}

func (a *ActiveCmd) Run() error {
	return runActive(config.DealsDBFile)
}

func (l *LatestCmd) Run() error {
	return runLatest(config.DealsDBFile)
}

func (s *SetupCmd) Run() error {
	return runSetup(s.Config)
}

func (e *ExportCmd) Run() error {
	_, err := runExport(e.DownloadDir, !e.Headful)
	return err
}

func initLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("TBRDEALS_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
