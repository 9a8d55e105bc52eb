package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Wallet Behavior Report\n\n")
	sb.WriteString(fmt.Sprintf("Wallet: `%s`\n\n", r.Wallet))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Profile computed at (ms): %d\n\n", r.ProfileGeneratedAt))

	// Technique
	sb.WriteString("## Technique\n\n")
	if r.Technique != nil && len(r.Technique.Coins) > 0 {
		sb.WriteString("| Mint | Symbol | Buys | Sells | Spacing Avg (min) | Entry Style | Conf | Closed | Median Gain% | P75 Gain% | Median Hold (min) |\n")
		sb.WriteString("|------|--------|------|-------|-------------------|-------------|------|--------|--------------|-----------|-------------------|\n")
		for _, c := range r.Technique.Coins {
			nClosed := 0
			var medGain, p75Gain, medHold *float64
			if c.Realized != nil {
				nClosed = c.Realized.NClosed
				medGain = c.Realized.MedianGainPct
				p75Gain = c.Realized.P75GainPct
				medHold = c.Realized.MedianHoldMins
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %s | %s | %.2f | %d | %s | %s | %s |\n",
				c.Mint, strOrDash(c.Symbol), c.NBuys, c.NSells,
				fmtFloat(c.EntrySpacingMinsAvg, 2),
				c.EntryStyle.Signal, c.EntryStyle.Confidence,
				nClosed, fmtFloat(medGain, 2), fmtFloat(p75Gain, 2), fmtFloat(medHold, 2)))
		}
		sb.WriteString("\n")

		o := r.Technique.Overall
		sb.WriteString("### Overall\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Coins | %d |\n", o.NCoins))
		sb.WriteString(fmt.Sprintf("| Mean Buys / Coin | %s |\n", fmtFloat(o.MeanBuysPerCoin, 2)))
		sb.WriteString(fmt.Sprintf("| Median Hold (min) | %s |\n", fmtFloat(o.MedianHoldMins, 2)))
		sb.WriteString(fmt.Sprintf("| Win Rate | %s |\n", fmtFloat(o.WinRate, 4)))
		sb.WriteString(fmt.Sprintf("| Avg Realized Gain%% | %s |\n", fmtFloat(o.AvgRealizedGainPct, 2)))
		sb.WriteString("\n")

		if len(o.VenueShare) > 0 {
			sb.WriteString("### Venue Share\n\n")
			sb.WriteString("| Venue | Share |\n")
			sb.WriteString("|-------|-------|\n")
			for _, venue := range sortedKeys(o.VenueShare) {
				sb.WriteString(fmt.Sprintf("| %s | %.4f |\n", venue, o.VenueShare[venue]))
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("No technique data available.\n\n")
	}

	// Outcomes
	sb.WriteString("## Outcome Distribution\n\n")
	if r.Outcomes != nil && r.Outcomes.NMints > 0 {
		out := r.Outcomes
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Mints | %d |\n", out.NMints))
		sb.WriteString(fmt.Sprintf("| Win Rate | %s |\n", fmtFloat(out.WinRate, 4)))
		sb.WriteString(fmt.Sprintf("| Median Exit%% | %s |\n", fmtFloat(out.MedianExitPct, 2)))
		sb.WriteString(fmt.Sprintf("| P25 Exit%% | %s |\n", fmtFloat(out.P25ExitPct, 2)))
		sb.WriteString(fmt.Sprintf("| P75 Exit%% | %s |\n", fmtFloat(out.P75ExitPct, 2)))
		sb.WriteString(fmt.Sprintf("| P95 Exit%% | %s |\n", fmtFloat(out.P95ExitPct, 2)))
		sb.WriteString(fmt.Sprintf("| IQR Exit%% | %s |\n", fmtFloat(out.IqrExitPct, 2)))
		sb.WriteString(fmt.Sprintf("| Max Win%% | %s |\n", fmtFloat(out.MaxWinPct, 2)))
		sb.WriteString(fmt.Sprintf("| Max Loss%% | %s |\n", fmtFloat(out.MaxLossPct, 2)))
		sb.WriteString(fmt.Sprintf("| %% Mints < -10%% | %s |\n", fmtFloat(out.PctTradesLtMinus10, 4)))
		sb.WriteString(fmt.Sprintf("| Median Hold (min) | %s |\n", fmtFloat(out.MedianHoldMins, 2)))
		sb.WriteString(fmt.Sprintf("| Median Round Trip%% | %s |\n", fmtFloat(out.MedianRoundTripPct, 2)))
		sb.WriteString(fmt.Sprintf("| Median Round Trip Hold (min) | %s |\n", fmtFloat(out.MedianRoundTripHoldMins, 2)))
		sb.WriteString("\n")

		if len(out.SpikeDays) > 0 {
			sb.WriteString("### Spike Days\n\n")
			sb.WriteString("| Date | PnL% |\n")
			sb.WriteString("|------|------|\n")
			for _, s := range out.SpikeDays {
				sb.WriteString(fmt.Sprintf("| %s | %.2f |\n", s.Date, s.PnlPct))
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("No realized outcomes available.\n\n")
	}

	// Monthly performance
	sb.WriteString("## Monthly Performance\n\n")
	if len(r.Performance) > 0 {
		sb.WriteString("| Month | PnL% | Start | End |\n")
		sb.WriteString("|-------|------|-------|-----|\n")
		for _, m := range r.Performance {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f |\n",
				m.Month, m.PnlPct, m.StartValue, m.EndValue))
		}
	} else {
		sb.WriteString("No monthly performance available.\n")
	}
	sb.WriteString("\n")

	// Curve stats
	sb.WriteString("## Equity Curve\n\n")
	if r.Curve != nil {
		c := r.Curve
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| PnL Max%% | %.2f |\n", c.PnlMaxPct))
		sb.WriteString(fmt.Sprintf("| PnL Min%% | %.2f |\n", c.PnlMinPct))
		sb.WriteString(fmt.Sprintf("| Max Drawdown%% | %.2f |\n", c.MaxDrawdownPct))
		sb.WriteString(fmt.Sprintf("| 30d Volatility%% | %.2f |\n", c.Volatility30dPct))
		sb.WriteString(fmt.Sprintf("| Recovery Days | %s |\n", fmtInt(c.RecoveryDaysFromLastDD)))
		sb.WriteString(fmt.Sprintf("| Max Up Days | %d |\n", c.MaxUpDays))
		sb.WriteString(fmt.Sprintf("| Max Down Days | %d |\n", c.MaxDownDays))
	} else {
		sb.WriteString("No equity curve data available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// fmtFloat renders a nullable float with the given precision, "n/a" for nil.
func fmtFloat(v *float64, prec int) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", prec, *v)
}

// fmtInt renders a nullable int, "n/a" for nil.
func fmtInt(v *int) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *v)
}

func strOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
