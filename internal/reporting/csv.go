package reporting

import (
	"fmt"
	"strings"

	"wallet-behavior-lab/internal/domain"
)

// RenderCoinsCSV renders per-mint technique rows as CSV string.
func RenderCoinsCSV(coins []*domain.MintFeatureRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("mint,symbol,start_ts,end_ts,n_buys,n_sells,entry_spacing_mins_avg,entry_spacing_mins_std,")
	sb.WriteString("entry_style,entry_confidence,n_closed,median_gain_pct,p75_gain_pct,median_hold_mins,unmatched_sell_qty\n")

	// Rows
	for _, c := range coins {
		nClosed := 0
		unmatched := 0.0
		var medGain, p75Gain, medHold *float64
		if c.Realized != nil {
			nClosed = c.Realized.NClosed
			unmatched = c.Realized.UnmatchedSellQty
			medGain = c.Realized.MedianGainPct
			p75Gain = c.Realized.P75GainPct
			medHold = c.Realized.MedianHoldMins
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%d,%d,%d,%s,%s,%s,%.4f,%d,%s,%s,%s,%.6f\n",
			c.Mint,
			csvStr(c.Symbol),
			c.StartTs,
			c.EndTs,
			c.NBuys,
			c.NSells,
			csvFloat(c.EntrySpacingMinsAvg),
			csvFloat(c.EntrySpacingMinsStd),
			c.EntryStyle.Signal,
			c.EntryStyle.Confidence,
			nClosed,
			csvFloat(medGain),
			csvFloat(p75Gain),
			csvFloat(medHold),
			unmatched,
		))
	}

	return sb.String()
}

// RenderMonthlyCSV renders monthly equity performance as CSV string.
func RenderMonthlyCSV(months []domain.MonthlyPnL) string {
	var sb strings.Builder

	sb.WriteString("month,pnl_pct,start_value,end_value\n")
	for _, m := range months {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f\n",
			m.Month, m.PnlPct, m.StartValue, m.EndValue))
	}

	return sb.String()
}

// csvFloat renders a nullable float, empty cell for nil.
func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}

func csvStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
