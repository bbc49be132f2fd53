// Package export renders a Portfolio as a DraftKings-upload CSV (spec.md
// §6.5).
package export

import (
	"strings"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
)

// unknownDriverLabel is rendered for a driver id the display-name map
// cannot resolve (spec.md §6.5).
const unknownDriverLabel = "Unknown"

// DraftKingsCSV renders lineups as a DraftKings-upload CSV: one row per
// lineup, one column per roster slot, values are driver display names, no
// header row, UTF-8, LF line endings (spec.md §6.5). displayNames maps
// driver id to display name; a missing entry renders as "Unknown".
func DraftKingsCSV(lineups []model.Lineup, displayNames map[int]string) string {
	var b strings.Builder
	for _, l := range lineups {
		for i, id := range l.DriverIDs {
			if i > 0 {
				b.WriteByte(',')
			}
			name, ok := displayNames[id]
			if !ok || name == "" {
				name = unknownDriverLabel
			}
			b.WriteString(escapeField(name))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// escapeField quotes a field that contains a comma, quote, or newline, per
// standard CSV quoting rules.
func escapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
