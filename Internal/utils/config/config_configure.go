package config

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// DisplayConfiguration prints the effective configuration and which secrets
// are present. Secret values are never printed.
func DisplayConfiguration(w io.Writer, cfg *Config) {
	fmt.Fprintln(w, "📋 Current Configuration:")

	fmt.Fprintln(w, "\n=== Scan ===")
	fmt.Fprintf(w, "Workers: %d | Fetch timeout: %s | Lookback: %d days\n",
		cfg.Scan.Workers, cfg.Scan.FetchTimeout, cfg.Scan.LookbackDays)
	fmt.Fprintf(w, "Limits: composite %d | swing %d | /getsignals %d\n",
		cfg.Scan.CompositeLimit, cfg.Scan.SwingLimit, cfg.Scan.SignalsLimit)

	fmt.Fprintln(w, "\n=== Thresholds ===")
	t := cfg.Thresholds
	fmt.Fprintf(w, "ADX > %.1f | RSI %.0f-%.0f | StochRSI < %.0f | Volume > %.0f | High ≥ %.0f%%\n",
		t.ADXMin, t.RSIMin, t.RSIMax, t.StochRSIMax, t.VolumeMin, t.HighThreshold*100)

	fmt.Fprintln(w, "\n=== Swing ===")
	s := cfg.Swing
	fmt.Fprintf(w, "Price ₹%.0f-₹%.0f | RSI %.0f-%.0f | Vol ≥ %.1fx | R/R ≥ %.1f (%.1f trending)\n",
		s.MinPrice, s.MaxPrice, s.MinRSI, s.MaxRSI, s.MinVolumeRatio, s.MinRiskReward, s.TrendingRiskReward)

	fmt.Fprintln(w, "\n=== Data ===")
	fmt.Fprintf(w, "Provider: %s | Universe: %s %s | Cache: %s (%s)\n",
		cfg.Provider.Name, cfg.Universe.Source, cfg.Universe.Path, enabledStr(cfg.Cache.Enabled), cfg.Cache.TTL)
	if len(cfg.Sectors) > 0 {
		symbols := make([]string, 0, len(cfg.Sectors))
		for symbol := range cfg.Sectors {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)
		pairs := make([]string, len(symbols))
		for i, symbol := range symbols {
			pairs[i] = symbol + "=" + cfg.Sectors[symbol]
		}
		fmt.Fprintf(w, "Sector overrides: %s\n", strings.Join(pairs, ", "))
	}

	fmt.Fprintln(w, "\n=== Secrets ===")
	for _, secret := range []struct {
		name string
		set  bool
	}{
		{"UPSTOX_ACCESS_TOKEN", cfg.Secrets.UpstoxAccessToken != ""},
		{"TELEGRAM_BOT_TOKEN", cfg.Secrets.TelegramBotToken != ""},
		{"TELEGRAM_CHAT_ID", cfg.Secrets.TelegramChatID != ""},
		{"ALPACA_API_KEY", cfg.Secrets.AlpacaAPIKey != ""},
		{"DATABASE_URL", cfg.Secrets.DatabaseURL != ""},
		{"REDIS_ADDR", cfg.Secrets.RedisAddr != ""},
		{"JWT_SECRET_KEY", cfg.Secrets.JWTSecretKey != ""},
	} {
		fmt.Fprintf(w, "%s %s\n", setMark(secret.set), secret.name)
	}
}

func enabledStr(enabled bool) string {
	if enabled {
		return "✅ Enabled"
	}
	return "❌ Disabled"
}

func setMark(set bool) string {
	if set {
		return "✅"
	}
	return "❌"
}
