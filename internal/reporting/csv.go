package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the per-day journal rows as CSV, oldest first.
func RenderCSV(rows []DayRow) string {
	var sb strings.Builder

	sb.WriteString("date,spot_usd,funding_rate,side,result,realized_r,scored\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%.2f,%.6f,%s,%s,%.4f,%t\n",
			r.Date,
			r.SpotUSD,
			r.FundingRate,
			r.Side,
			r.Result,
			r.RealizedR,
			r.Scored,
		))
	}

	return sb.String()
}
