package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const indexRowLimit = 180

// RenderDashboard renders DASHBOARD.md: headline KPIs over the whole
// journal, the equity curve image and the most recent days.
func RenderDashboard(r *Report) string {
	var sb strings.Builder

	var wins, losses, flat int
	var totalR float64
	for _, row := range r.Rows {
		if !row.Scored {
			continue
		}
		totalR += row.RealizedR
		switch {
		case row.RealizedR > 0:
			wins++
		case row.RealizedR < 0:
			losses++
		default:
			flat++
		}
	}
	days := wins + losses + flat
	winRate := 0.0
	if wins+losses > 0 {
		winRate = float64(wins) / float64(wins+losses) * 100
	}
	avgR := 0.0
	if days > 0 {
		avgR = totalR / float64(days)
	}

	sb.WriteString("# BTC Journal Dashboard\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|---|---:|\n")
	sb.WriteString(fmt.Sprintf("| Days tracked | %d |\n", days))
	sb.WriteString(fmt.Sprintf("| Wins / Losses / Flat | %d / %d / %d |\n", wins, losses, flat))
	sb.WriteString(fmt.Sprintf("| Win rate (ignores flat) | %.1f%% |\n", winRate))
	sb.WriteString(fmt.Sprintf("| Total R | %.2f |\n", totalR))
	sb.WriteString(fmt.Sprintf("| Avg R / day | %.3f |\n", avgR))
	sb.WriteString("\n![Equity Curve](assets/equity.svg)\n\n")

	sb.WriteString("## Last 30 days\n\n")
	sb.WriteString("| Date | Side | Result | R |\n")
	sb.WriteString("|---|---|---|---:|\n")
	last := newestFirst(r.Rows)
	if len(last) > 30 {
		last = last[:30]
	}
	for _, row := range last {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.3f |\n",
			row.Date, orDash(row.Side), orDash(row.Result), row.RealizedR))
	}
	sb.WriteString("\n")

	return sb.String()
}

// RenderIndex renders INDEX.md: the full history table, newest first.
func RenderIndex(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# BTC Futures Journal Index\n\n")
	sb.WriteString("Auto-generated after each run.\n\n")
	sb.WriteString("- **Latest:** [LATEST.md](LATEST.md)\n\n")
	sb.WriteString("| Date | BTC Spot (USD) | OKX Funding | Result | R |\n")
	sb.WriteString("|---|---:|---:|---|---:|\n")

	rows := newestFirst(r.Rows)
	if len(rows) > indexRowLimit {
		rows = rows[:indexRowLimit]
	}
	for _, row := range rows {
		rCell := ""
		if row.Scored {
			rCell = fmt.Sprintf("%.2fR", row.RealizedR)
		}
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %.6f | %s | %s |\n",
			row.Date, row.SpotUSD, row.FundingRate, orDash(row.Result), rCell))
	}
	sb.WriteString("\n")

	return sb.String()
}

// RenderMetrics renders METRICS.md from the trailing-window aggregate.
func RenderMetrics(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Metrics (Auto)\n\n")
	if r.Window == nil {
		sb.WriteString("No scored days in the window yet.\n")
		return sb.String()
	}
	w := r.Window

	sb.WriteString(fmt.Sprintf("- Window: last **%d** days\n", w.WindowDays))
	sb.WriteString(fmt.Sprintf("- Total: **%.3fR** | Avg/day: **%.3fR**\n", w.TotalR, w.AvgRPerDay))
	sb.WriteString(fmt.Sprintf("- Trade days: **%d** | No-trade days: **%d**\n", w.TradeDays, w.NoTradeDays))
	sb.WriteString(fmt.Sprintf("- Win rate (trades): **%.1f%%** | Expectancy: **%.3fR/trade**\n", w.WinRatePct, w.ExpectancyR))
	sb.WriteString(fmt.Sprintf("- Max drawdown: **%.3fR** | Max consecutive losses: **%d**\n", w.MaxDrawdownR, w.MaxConsecLoss))

	writeBreakdown(&sb, "Exit breakdown", w.ExitBreakdown)
	writeBreakdown(&sb, "Triggered side breakdown", w.SideBreakdown)

	sb.WriteString("\n## Last days\n\n")
	sb.WriteString("| Date | Side | Result | R |\n")
	sb.WriteString("|---|---|---|---:|\n")
	tail := r.Rows
	if len(tail) > 14 {
		tail = tail[len(tail)-14:]
	}
	for _, row := range tail {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.3f |\n",
			row.Date, orDash(row.Side), orDash(row.Result), row.RealizedR))
	}
	sb.WriteString("\n")

	return sb.String()
}

// RenderLatest renders LATEST.md for the newest journal entry.
func RenderLatest(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Latest BTC Futures Playbook\n\n")
	if r.Latest == nil {
		sb.WriteString("No journal entries yet.\n")
		return sb.String()
	}
	e := r.Latest

	sb.WriteString(fmt.Sprintf("- **Date (ET):** %s\n", e.Date))
	sb.WriteString(fmt.Sprintf("- **BTC Spot (USD):** %.2f\n", e.SpotUSD))
	if e.Funding != nil {
		sb.WriteString(fmt.Sprintf("- **OKX fundingRate:** %.6f\n", e.Funding.FundingRate))
		sb.WriteString(fmt.Sprintf("- **OKX premium:** %.6f\n", e.Funding.Premium))
	}
	sb.WriteString(fmt.Sprintf("- **Plan:** %s\n", e.Plan.PlanID))
	if e.Scored() {
		sb.WriteString(fmt.Sprintf("- **Result:** %s (%.2fR)\n", e.Result, e.RealizedR))
	} else {
		sb.WriteString("- **Result:** pending\n")
	}
	sb.WriteString("\nHistory dashboard: [INDEX.md](INDEX.md)\n")

	return sb.String()
}

// writeBreakdown emits a count table sorted by count descending, then key.
func writeBreakdown(sb *strings.Builder, title string, counts map[string]int64) {
	sb.WriteString(fmt.Sprintf("\n## %s\n\n", title))
	sb.WriteString("| Item | Count |\n|---|---:|\n")

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", k, counts[k]))
	}
}

func newestFirst(rows []DayRow) []DayRow {
	out := make([]DayRow, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
