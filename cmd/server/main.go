// Package main is the entry point for the configuration-driven API server.
// It resolves configuration from the environment and an optional override
// file, refuses to start on an invalid production configuration, and serves
// a health probe plus, outside production, the effective configuration.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/confengine/internal/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bootstrap holds the settings of the binary itself, as opposed to the
// application configuration it resolves.
type bootstrap struct {
	ConfigFile string
	Check      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Environ(), os.Stdout, os.Stderr))
}

// run executes the server and returns the process exit code.
func run(ctx context.Context, args, environ []string, stdout, stderr io.Writer) int {
	boot, err := parseBootstrap(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	manager := config.NewManager(config.ManagerOptions{
		Environ:      func() []string { return environ },
		OverrideFile: boot.ConfigFile,
		Logger:       slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	})
	cfg, err := manager.Resolve()
	if err != nil {
		reportFailure(stderr, err)
		return 1
	}

	if boot.Check {
		fmt.Fprint(stdout, cfg.Summary())
		return 0
	}

	if err := serve(ctx, manager); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// parseBootstrap reads --config and --check. The override file may also be
// named by APP_CONFIG_FILE in the process environment; the flag wins.
func parseBootstrap(args []string) (bootstrap, error) {
	flags := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.String("config", "", "path to a KEY=value override file")
	flags.Bool("check", false, "resolve and print the configuration, then exit")
	if err := flags.Parse(args); err != nil {
		return bootstrap{}, err
	}

	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return bootstrap{}, fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := v.BindEnv("config", config.ConfigFileKey); err != nil {
		return bootstrap{}, fmt.Errorf("failed to bind %s: %w", config.ConfigFileKey, err)
	}

	return bootstrap{
		ConfigFile: v.GetString("config"),
		Check:      v.GetBool("check"),
	}, nil
}

// reportFailure prints every problem of a fatal resolution.
func reportFailure(w io.Writer, err error) {
	var report *config.ValidationReport
	if errors.As(err, &report) {
		fmt.Fprintf(w, "%s\n", report.Error())
		return
	}
	fmt.Fprintf(w, "configuration error: %v\n", err)
}
