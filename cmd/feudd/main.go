// feudd serves a feud game session: a moderator HTTP API, a websocket
// channel for display and buzzer surfaces, and prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type serverConfig struct {
	bind       string
	port       int
	configPath string
	buzzRate   float64
}

func (c *serverConfig) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.buzzRate <= 0 {
		return fmt.Errorf("invalid buzz rate (must be positive): %v", c.buzzRate)
	}
	return nil
}

func newCmd(cfg *serverConfig) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("FEUD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "feudd",
		Short:         "Runs a crowd-scored survey feud game session.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			// Environment variables fill in flags the caller left alone.
			fs := cmd.Flags()
			for _, name := range []string{"bind", "port", "config", "buzz-rate"} {
				if v.IsSet(name) && !fs.Changed(name) {
					if err := fs.Set(name, v.GetString(name)); err != nil {
						return err
					}
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: FEUD_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: FEUD_PORT)")
	fs.StringVarP(&cfg.configPath, "config", "c", "", "path to game config yaml (env: FEUD_CONFIG)")
	fs.Float64Var(&cfg.buzzRate, "buzz-rate", 4, "max buzz messages per second per connection (env: FEUD_BUZZ_RATE)")

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &serverConfig{}
	if err := newCmd(cfg).ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("feudd exited", "error", err)
		os.Exit(1)
	}
}
