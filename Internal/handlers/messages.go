package handlers

import (
	"fmt"
	"html"
	"strings"

	"github.com/fazecat/niftyscreener/Internal/strategy/signals"
)

const (
	MissingCredentialMessage = "❌ Access token not configured. Please set UPSTOX_ACCESS_TOKEN environment variable."
	DailyMissingCredential   = "❌ Daily signals failed: Access token not configured."
	ScanningMessage          = "🔄 <b>Scanning markets for signals...</b>\nThis may take 30-60 seconds..."
	DailyHeaderMessage       = "🌅 <b>DAILY MARKET SIGNALS</b>\n🔄 Scanning Nifty 500..."
	DailyNoSetupsMessage     = "📊 Daily Scan Complete\n❌ No qualifying setups found today.\n💡 Market may be consolidating."
	GreetingMessage          = "🤖 Hi! I'm your Stock Screener Bot.\n\nType /help to see available commands."
	ProcessingErrorMessage   = "❌ Error processing your request. Please try again."
	SchedulerOffMessage      = "⏰ Scheduler is not running in this mode.\n💡 Start the bot with <code>full</code> for scheduled alerts."
)

// CriteriaMessage describes the active swing filters for /swingtop5.
func CriteriaMessage(f *signals.SwingFilter) string {
	return fmt.Sprintf(`🎯 <b>SWING TRADE FILTER CRITERIA</b>

📋 <b>Filters Applied:</b>

1️⃣ ✅ <b>Risk/Reward Ratio ≥ %s</b> (≥ %s for trending sectors)
2️⃣ ✅ <b>CMP between ₹%s and ₹%s</b>
3️⃣ ✅ <b>Volume ≥ %sx 30D Avg</b>
4️⃣ ✅ <b>RSI(14) between %s and %s</b>
5️⃣ ✅ <b>Prefer trending sectors:</b>
Finance🔥 | Power🔥 | PSU🔥 | IT🔥 | Defence🔥 | Pharma | FMCG

✔️ A stock qualifies when it passes at least %d of the 5 filters.

📊 <b>Output Format:</b>
🔢 Stock | Entry | SL | Target | R/R | RSI | Sector

🟢 <b>Special Notes:</b>
• 🔥 indicates trending sectors
• Targets and stop loss are ATR based: T1 %sx, T2 %sx, SL %sx
• Focus on technical breakouts with volume confirmation

💡 <b>Use /getsignals to get live swing trade picks!</b>`,
		num(f.MinRiskReward, 1), num(f.TrendingRiskReward, 1),
		num(f.MinPrice, 0), num(f.MaxPrice, 0),
		num(f.MinVolumeRatio, 1),
		num(f.MinRSI, 0), num(f.MaxRSI, 0),
		f.MinFiltersPassed,
		num(f.Target1ATR, 1), num(f.Target2ATR, 1), num(f.StopLossATR, 1),
	)
}

func num(v float64, places int) string {
	return fmt.Sprintf("%.*f", places, v)
}

const BacktestMessage = `📈 <b>BACKTESTING GUIDE</b>

🔍 <b>How to Backtest Your Strategy:</b>

<b>Step 1: Data Collection</b>
• Use historical data (minimum 1 year)
• Include OHLCV data for all stocks
• Ensure data quality and accuracy

<b>Step 2: Strategy Rules</b>
• Define entry conditions clearly
• Set stop loss and target rules
• Include position sizing rules

<b>Step 3: Execution</b>
• Run strategy on historical data
• Record all trades (entry, exit, P&amp;L)
• Include transaction costs (0.1-0.2%)

<b>Step 4: Analysis Metrics</b>
• Win Rate: % of profitable trades
• Average R/R: Avg profit / Avg loss
• Maximum Drawdown: Largest loss streak
• Sharpe Ratio: Risk-adjusted returns
• Total Return vs Buy &amp; Hold

<b>Step 5: Validation</b>
• Test on multiple time periods
• Out-of-sample testing
• Walk-forward analysis

⚠️ <b>Important Notes:</b>
• Past performance ≠ Future results
• Include slippage and real market conditions
• Test during different market cycles
• Paper trade before live implementation`

const HelpMessage = `🤖 <b>STOCK SCREENER BOT - COMMANDS</b>

📋 <b>Available Commands:</b>

🎯 <b>/swingtop5</b>
• Shows swing trade filter criteria
• Explains R/R ratio, volume, RSI filters
• Lists trending sectors

📊 <b>/getsignals</b>
• Runs live market scan
• Returns top 5 swing trade picks
• Includes entry, target, stop loss
• Shows R/R ratio and sector info

📈 <b>/backtest</b>
• Backtesting guide
• Key metrics to track
• Validation techniques

⏰ <b>/status</b>
• Scheduler state and next jobs

❓ <b>/help</b>
• Shows this command list

🔔 <b>Auto Updates:</b>
• Market open and close notices
• Daily signals at 3:00 PM
• Weekend review on Saturday

💡 <b>Pro Tip:</b> Use /getsignals for fresh market opportunities!`

func UnknownCommandMessage(command string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "❓ <b>Unknown Command: %s</b>\n\n", html.EscapeString(command))
	b.WriteString("Available commands:\n")
	b.WriteString("• /swingtop5 - Swing trade criteria\n")
	b.WriteString("• /getsignals - Live market signals\n")
	b.WriteString("• /backtest - Backtesting guide\n")
	b.WriteString("• /status - Scheduler status\n")
	b.WriteString("• /help - Show all commands\n\n")
	b.WriteString("💡 Type /help for detailed information.")
	return b.String()
}

func errorMessage(prefix string, err error) string {
	return fmt.Sprintf("❌ %s: %s", prefix, html.EscapeString(err.Error()))
}

func timestampLine(stamp string) string {
	return "\n⏰ Updated: " + stamp
}
