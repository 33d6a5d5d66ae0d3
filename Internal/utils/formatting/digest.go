package formatting

import (
	"fmt"
	"html"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fazecat/niftyscreener/Internal/strategy/signals"
	"github.com/fazecat/niftyscreener/Internal/utils/scanner"
)

const (
	SwingDigestSize     = 5
	CompositeDigestSize = 10
	SectorSummarySize   = 10
)

// DigestRule separates entries in chat digests.
var DigestRule = RepeatString("━", 40)

func rupees(v float64) string {
	return "₹" + decimal.NewFromFloat(v).StringFixed(2)
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// FormatDigest renders a ranked HTML digest for Telegram: the top 5 swing
// picks or the top 10 composite scores.
func FormatDigest(results []scanner.Result, mode scanner.Mode, now time.Time) string {
	if len(results) == 0 {
		return NoSetupsMessage(mode)
	}

	var b strings.Builder
	stamp := now.Format("02-01-2006 15:04")

	if mode == scanner.ModeSwing {
		fmt.Fprintf(&b, "🎯 <b>TOP 5 SWING TRADE PICKS</b>\n📅 %s\n\n", stamp)
		rank := 0
		for _, r := range results {
			if r.Swing == nil {
				continue
			}
			if rank == SwingDigestSize {
				break
			}
			rank++
			writeSwingPick(&b, rank, r.Swing)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "🚀 <b>NIFTY 500 SCREENER</b>\n📅 %s\n\n", stamp)
	rank := 0
	for _, r := range results {
		if r.Composite == nil {
			continue
		}
		if rank == CompositeDigestSize {
			break
		}
		rank++
		writeCompositePick(&b, rank, r.Composite)
	}
	return b.String()
}

func writeSwingPick(b *strings.Builder, rank int, a *signals.SwingAssessment) {
	volInfo := "Breakout momentum"
	if a.VolumeRatio >= 1.5 {
		volInfo = "≥1.5x 30D Avg"
	}
	fmt.Fprintf(b, "<b>#%d %s</b>\n", rank, html.EscapeString(a.Symbol))
	fmt.Fprintf(b, "💰 Entry: %s | 🛡 SL: %s\n", rupees(a.Price), rupees(a.StopLoss))
	fmt.Fprintf(b, "🎯 Target: %s | ⚖ R/R: %s\n", rupees(a.Target2), fixed(a.RiskReward, 2))
	fmt.Fprintf(b, "📊 RSI: %s | 🔊 %s\n", fixed(a.RSI, 0), volInfo)
	fmt.Fprintf(b, "🏷 %s | Pattern: Technical Breakout\n", html.EscapeString(a.SectorLabel))
	b.WriteString(DigestRule + "\n")
}

func writeCompositePick(b *strings.Builder, rank int, c *scanner.CompositeResult) {
	target1 := c.Price + 1.5*c.ATR
	target2 := c.Price + 2.0*c.ATR
	stopLoss := c.Price - 1.0*c.ATR

	fmt.Fprintf(b, "<b>#%d %s</b>\n", rank, html.EscapeString(c.Symbol))
	fmt.Fprintf(b, "💰 CMP: %s | 🎯 T1: %s | T2: %s\n", rupees(c.Price), rupees(target1), rupees(target2))
	fmt.Fprintf(b, "🛡 SL: %s | 📊 Score: %d/20\n", rupees(stopLoss), c.Score)
	b.WriteString(DigestRule + "\n")
}

func NoSetupsMessage(mode scanner.Mode) string {
	if mode == scanner.ModeSwing {
		return "❌ No qualifying swing trade setups found. Market conditions may not be favorable."
	}
	return "❌ No qualifying setups found. Market may be consolidating."
}

type SectorCount struct {
	Sector string
	Count  int
}

// CountSectors tallies sector labels over the first ten swing results, most
// common first and ties by name.
func CountSectors(results []scanner.Result) []SectorCount {
	counts := map[string]int{}
	seen := 0
	for _, r := range results {
		if r.Swing == nil {
			continue
		}
		if seen == SectorSummarySize {
			break
		}
		seen++
		counts[r.Swing.SectorLabel]++
	}

	out := make([]SectorCount, 0, len(counts))
	for sector, n := range counts {
		out = append(out, SectorCount{Sector: sector, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Sector < out[j].Sector
	})
	return out
}

func SectorSummary(results []scanner.Result) string {
	counts := CountSectors(results)
	if len(counts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n🏷 <b>Sector Summary:</b>\n")
	for _, c := range counts {
		fmt.Fprintf(&b, "• %s: %d stocks\n", html.EscapeString(c.Sector), c.Count)
	}
	return b.String()
}

// WriteTable prints results as a plain-text table for the terminal.
func WriteTable(w io.Writer, results []scanner.Result, mode scanner.Mode) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if mode == scanner.ModeSwing {
		fmt.Fprintln(tw, "#\tSYMBOL\tENTRY\tSL\tTARGET\tR/R\tRSI\tVOL\tSECTOR\tFILTERS")
	} else {
		fmt.Fprintln(tw, "#\tSYMBOL\tPRICE\tRSI\tADX\tATR\tVOLUME\tSCORE")
	}
	fmt.Fprintln(tw, Separator(72))

	for i, r := range results {
		switch {
		case r.Swing != nil:
			a := r.Swing
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%sx\t%s\t%d/5\n",
				i+1, a.Symbol, fixed(a.Price, 2), fixed(a.StopLoss, 2), fixed(a.Target2, 2),
				fixed(a.RiskReward, 2), fixed(a.RSI, 0), fixed(a.VolumeRatio, 1), a.SectorLabel, a.FiltersPassed)
		case r.Composite != nil:
			c := r.Composite
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d/20\n",
				i+1, c.Symbol, fixed(c.Price, 2), fixed(c.RSI, 1), fixed(c.ADX, 1), fixed(c.ATR, 2),
				fixed(c.Volume, 0), c.Score)
		}
	}
	return tw.Flush()
}
