// Command gamehome runs the GameHome bulletin board server.
//
//	gamehome                  start the server (same as `gamehome serve`)
//	gamehome seed             create default tags, prénoms and publish secret, then exit
//	gamehome --config x.toml  read settings from a TOML file
//
// Settings can also come from the environment or a .env file in the working
// directory (see internal/config).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/RebotePadel/GameHome/internal/auth"
	"github.com/RebotePadel/GameHome/internal/config"
	"github.com/RebotePadel/GameHome/internal/server"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var configPath string

var rootCmd = &cobra.Command{
	Use:          "gamehome",
	Short:        "GameHome bulletin board server",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default tags, prénoms and publish secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		store, _, err := server.Prepare(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		tags, err := store.Tags.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing tags: %w", err)
		}
		prenoms, err := store.Prenoms.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing prenoms: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Data directory: %s\n", store.Dir())
		fmt.Fprintf(cmd.OutOrStdout(), "Tags: %d, prénoms: %d\n", len(tags), len(prenoms))
		return nil
	},
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	srv, err := server.New(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		return err
	}
	logger.Info("publish password", slog.String("default", auth.BaselineSecret))

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// setup loads .env, the config and builds the logger every command uses.
func setup(logOut io.Writer) (*config.Config, *slog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("loading .env: %w", err)
	}

	path := configPath
	if path == "" {
		path = os.Getenv("GAMEHOME_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(cfg, logOut)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newLogger builds a text or JSON slog logger at the configured level.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch cfg.LogFormat {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With(slog.String("app", "gamehome")), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file (env GAMEHOME_CONFIG)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.SetContext(context.Background())
}
