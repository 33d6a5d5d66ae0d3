package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fazecat/niftyscreener/Internal/app"
	"github.com/fazecat/niftyscreener/Internal/handlers"
	"github.com/fazecat/niftyscreener/Internal/notifications"
	"github.com/fazecat/niftyscreener/Internal/scheduler"
	"github.com/fazecat/niftyscreener/Internal/utils/config"
	"github.com/fazecat/niftyscreener/Internal/utils/formatting"
	"github.com/fazecat/niftyscreener/Internal/utils/scanner"
)

var (
	scanMode   string
	scanLimit  int
	scanFormat string
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram command bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()
		log.Info().Msg("🤖 Starting Telegram Bot (Commands Only)")
		return rt.bot.Run(cmd.Context())
	},
}

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the daily notification schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.close()

		sched, err := scheduler.NewDailyScheduler(rt.bot, rt.cfg)
		if err != nil {
			return err
		}
		sched.Start(ctx)
		if err := rt.bot.Send(ctx, scheduler.StartupMessage(time.Now().In(rt.location()))); err != nil {
			log.Warn().Err(err).Msg("Failed to send startup message")
		}

		heartbeat := time.NewTicker(time.Hour)
		defer heartbeat.Stop()
		for {
			select {
			case <-ctx.Done():
				sched.Stop()
				return nil
			case <-heartbeat.C:
				log.Info().Interface("next_runs", sched.NextRuns()).Msg("💓 Scheduler running")
			}
		}
	},
}

var fullCmd = &cobra.Command{
	Use:   "full",
	Short: "Run the command bot and the daily schedule together",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.close()

		sched, err := scheduler.NewDailyScheduler(rt.bot, rt.cfg)
		if err != nil {
			return err
		}
		sched.Start(ctx)
		rt.bot.SetStatusSource(sched.Status)
		log.Info().Msg("🚀 Starting Full Bot (Commands + Scheduler)")
		if err := rt.bot.Send(ctx, fullStartupMessage(time.Now().In(rt.location()))); err != nil {
			log.Warn().Err(err).Msg("Failed to send startup message")
		}

		runErr := rt.bot.Run(ctx)
		sched.Stop()

		// ctx is already cancelled here
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rt.bot.Send(shutdownCtx, shutdownMessage(time.Now().In(rt.location()))); err != nil {
			log.Warn().Err(err).Msg("Failed to send shutdown message")
		}
		return runErr
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test message to the configured Telegram chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		client, err := notifications.NewTelegramClient(cfg.Secrets.TelegramBotToken, cfg.Secrets.TelegramChatID)
		if err != nil {
			return err
		}

		fmt.Println("🧪 Testing Telegram Connection...")
		msg := fmt.Sprintf("🧪 <b>CONNECTION TEST</b>\n📅 %s\n\n✅ Bot is working correctly!", time.Now().Format("02-01-2006 15:04:05"))
		if err := client.SendMessage(cmd.Context(), msg); err != nil {
			fmt.Println("❌ Telegram connection failed!")
			return err
		}
		fmt.Println("✅ Telegram connection successful!")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configuration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		return writeStatus(cmd.OutOrStdout(), cfg)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan and print the qualifying symbols",
	Long: `Run one scan over the instrument universe and print the result.

Examples:
  niftyscreener scan                          # composite scan of the first 200 symbols
  niftyscreener scan --mode swing --limit 0   # swing scan of the whole universe
  niftyscreener scan --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := scanner.ParseMode(scanMode)
		if err != nil {
			return err
		}
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		limit := scanLimit
		if !cmd.Flags().Changed("limit") {
			limit = cfg.Scan.CompositeLimit
			if mode == scanner.ModeSwing {
				limit = cfg.Scan.SwingLimit
			}
		}

		results, err := a.Scanner.RunScan(cmd.Context(), cfg.Credential(), limit, mode)
		if err != nil {
			return err
		}
		return printResults(cmd.OutOrStdout(), results, mode)
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanMode, "mode", string(scanner.ModeComposite), "scan mode: composite or swing")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "scan the first N instruments (0 = whole universe)")
	scanCmd.Flags().StringVar(&scanFormat, "format", "table", "output format: table, json, digest")

	rootCmd.AddCommand(botCmd, schedulerCmd, fullCmd, testCmd, statusCmd, scanCmd)
}

func printResults(w io.Writer, results []scanner.Result, mode scanner.Mode) error {
	switch scanFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "digest":
		_, err := fmt.Fprintln(w, formatting.FormatDigest(results, mode, time.Now()))
		return err
	case "table", "":
		return formatting.WriteTable(w, results, mode)
	}
	return fmt.Errorf("unknown format %q", scanFormat)
}

// botRuntime bundles what the bot-facing commands share.
type botRuntime struct {
	cfg *config.Config
	app *app.App
	bot *handlers.Bot
}

func newRuntime(ctx context.Context) (*botRuntime, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	client, err := notifications.NewTelegramClient(cfg.Secrets.TelegramBotToken, cfg.Secrets.TelegramChatID)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rt := &botRuntime{cfg: cfg, app: a}
	swing := *a.Scanner.Options().Swing
	rt.bot = handlers.NewBot(a.Scanner, client, client, handlers.BotConfig{
		ChatID:         client.ChatID(),
		Credential:     cfg.Credential(),
		SignalsLimit:   cfg.Scan.SignalsLimit,
		SwingLimit:     cfg.Scan.SwingLimit,
		CompositeLimit: cfg.Scan.CompositeLimit,
		Swing:          &swing,
		Location:       rt.location(),
	})
	if cfg.Credential() == "" {
		log.Warn().Str("provider", cfg.Provider.Name).Msg("No market data credential configured, /getsignals will reply with an error")
	}
	return rt, nil
}

func (rt *botRuntime) location() *time.Location {
	loc, err := time.LoadLocation(rt.cfg.Scheduler.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (rt *botRuntime) close() {
	if err := rt.app.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close resources")
	}
}

func writeStatus(w io.Writer, cfg *config.Config) error {
	fmt.Fprintln(w, "\n📊 CONFIGURATION STATUS")
	fmt.Fprintln(w, formatting.Separator(50))
	config.DisplayConfiguration(w, cfg)

	universeOK := true
	if cfg.Universe.Source == "csv" {
		_, err := os.Stat(cfg.Universe.Path)
		universeOK = err == nil
		fmt.Fprintf(w, "\n📁 %s: %s\n", cfg.Universe.Path, found(universeOK))
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(w, "   • Add %s (columns tradingsymbol, instrument_key)\n", cfg.Universe.Path)
		}
	}

	credentialOK := cfg.Credential() != ""
	if !credentialOK {
		fmt.Fprintf(w, "   • Set the %s market data credential in the environment\n", cfg.Provider.Name)
	}
	if credentialOK && universeOK {
		fmt.Fprintln(w, "\n🚀 READY TO RUN!")
	} else {
		fmt.Fprintln(w, "\n⚠️  SETUP REQUIRED")
	}
	return nil
}

func found(ok bool) string {
	if ok {
		return "✅ Found"
	}
	return "❌ Missing"
}

func fullStartupMessage(now time.Time) string {
	return fmt.Sprintf(`🚀 <b>FULL BOT ACTIVATED</b>
📅 %s

✅ <b>Active Features:</b>
🤖 Command Bot (24/7)
⏰ Daily Scheduler (Auto-signals)
📊 Live Market Scanning
🎯 Swing Trade Analysis

💡 <b>Available Commands:</b>
/help - Show all commands
/getsignals - Get live signals
/swingtop5 - Swing criteria
/backtest - Backtesting guide

🔔 <b>Auto Schedule:</b>
9:15 AM - Market Open Alert
3:00 PM - Daily Signals
3:30 PM - Market Close
10:00 AM (Sat) - Weekend Analysis

Ready to serve! 🎯`, now.Format("02-01-2006 15:04:05"))
}

func shutdownMessage(now time.Time) string {
	return fmt.Sprintf(`🛑 <b>BOT SHUTDOWN</b>
📅 %s

❌ All automated features stopped
💡 Restart when needed

Thanks for using Stock Screener Bot! 👋`, now.Format("02-01-2006 15:04:05"))
}
