package report

import (
	"fmt"
	"strings"
)

// FormatSummary formats the run result for the console.
func FormatSummary(snap *Snapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s EHR999 | %s\n", snap.Symbol, snap.LatestTime.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("  价格: $%.2f\n", snap.LatestClose))
	b.WriteString(fmt.Sprintf("  EHR999: %.4f (MA%d / MA%d)\n", snap.LatestValue, snap.Windows.Short, snap.Windows.Long))
	b.WriteString(fmt.Sprintf("  市场状态: %s\n", snap.Band.HeaderLabel))
	b.WriteString(fmt.Sprintf("  定投倍数: %s | 建议操作: %s\n", snap.Band.HeaderMultiplier, snap.Band.Action))
	b.WriteString(fmt.Sprintf("  数据范围: %s 至 %s (%d 根K线, %d 个有效点)\n",
		snap.From.Format("2006-01-02"), snap.To.Format("2006-01-02"), snap.Bars, len(snap.Points)))

	return b.String()
}
