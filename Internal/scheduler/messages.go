package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/fazecat/niftyscreener/Internal/utils/formatting"
)

func MarketOpenMessage(now time.Time) string {
	return fmt.Sprintf(`🌅 <b>MARKET OPEN</b>
📅 %s
🕘 %s

🚀 Markets are now open!
💡 Use /getsignals for fresh opportunities
📊 Daily signals coming at 3:00 PM

Good luck trading! 📈`, formatting.DayStamp(now), clock(now))
}

func MarketCloseMessage(now time.Time) string {
	return fmt.Sprintf(`🌇 <b>MARKET CLOSED</b>
📅 %s
🕘 %s

📊 Trading session ended
💼 Time to review your trades
📈 Prepare for tomorrow's opportunities

Have a great evening! 🌟`, formatting.DayStamp(now), clock(now))
}

func WeekendMessage(now time.Time) string {
	return fmt.Sprintf(`📊 <b>WEEKEND MARKET ANALYSIS</b>
📅 %s

🔍 <b>This Week's Performance:</b>
• Markets closed for the weekend
• Time for portfolio review
• Plan next week's strategies

📈 <b>Next Week Preparation:</b>
• Review global cues
• Check earnings calendar
• Identify sector trends
• Update watchlists

💡 <b>Weekend Tasks:</b>
• Analyze your trades
• Study new setups
• Read market news
• Practice backtesting

Use /backtest for detailed guidance!

Happy Weekend! 🎉`, formatting.DayStamp(now))
}

func StartupMessage(now time.Time) string {
	return fmt.Sprintf(`🚀 <b>SCHEDULER STARTED</b>
📅 %s - %s

⏰ <b>Automated Schedule:</b>
• 9:15 AM: Market Open Alert
• 3:00 PM: Daily Signals
• 3:30 PM: Market Close
• 10:00 AM (Sat): Weekend Analysis`, formatting.DayStamp(now), clock(now))
}

func StatusMessage(now time.Time, running bool, runs []JobRun, marketDay bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⏰ <b>SCHEDULER STATUS</b>\n📅 %s - %s\n\n", formatting.DayStamp(now), clock(now))

	status := "Stopped"
	if running {
		status = "Running"
	}
	fmt.Fprintf(&b, "🟢 <b>Status:</b> %s\n\n📋 <b>Next Jobs:</b>", status)

	shown := 0
	for _, r := range runs {
		if r.NextRun.IsZero() || shown == 5 {
			continue
		}
		shown++
		fmt.Fprintf(&b, "\n• %s: %s", r.Name, r.NextRun.Format("2006-01-02 15:04:05"))
	}

	market := "Closed"
	if marketDay {
		market = "Open"
	}
	fmt.Fprintf(&b, "\n\n🏪 <b>Market Status:</b> %s", market)
	return b.String()
}

func clock(t time.Time) string {
	return t.Format("15:04 MST")
}
