package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	prettyLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "niftyscreener",
	Short: "Nifty 500 stock screener with a Telegram bot",
	Long: `niftyscreener scans the Nifty 500 universe for composite technical setups
and swing trade candidates, and delivers them through a Telegram bot.

Examples:
  niftyscreener full                      # bot commands plus daily schedule
  niftyscreener scan --mode swing         # one-off scan printed to stdout
  niftyscreener status                    # configuration check`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default: search the usual locations)")
	rootCmd.PersistentFlags().BoolVar(&prettyLogs, "pretty", false, "human readable console logs")
}

func setupLogging() {
	level := zerolog.InfoLevel
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(env)); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	if prettyLogs {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "💡 Try: niftyscreener status")
		os.Exit(1)
	}
}
