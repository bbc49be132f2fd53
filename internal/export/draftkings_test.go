package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
)

func TestDraftKingsCSV_NoHeaderLFTerminatedUnknownDrivers(t *testing.T) {
	lineups := []model.Lineup{
		{DriverIDs: []int{0, 1, 2, 3, 4, 5}},
		{DriverIDs: []int{0, 1, 2, 3, 4, 99}},
	}
	names := map[int]string{
		0: "Kyle Larson", 1: "Chase Elliott", 2: "Denny Hamlin",
		3: "Ryan Blaney", 4: "William Byron", 5: "Christopher Bell",
	}

	out := DraftKingsCSV(lineups, names)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	assert.Len(t, lines, 2)
	assert.NotContains(t, out, "\r")
	assert.Equal(t, "Kyle Larson,Chase Elliott,Denny Hamlin,Ryan Blaney,William Byron,Christopher Bell", lines[0])
	assert.Contains(t, lines[1], "Unknown")
	for _, field := range strings.Split(lines[1], ",") {
		assert.NotEmpty(t, field)
	}
}

func TestDraftKingsCSV_EachRowHasSixFields(t *testing.T) {
	lineups := []model.Lineup{{DriverIDs: []int{1, 2, 3, 4, 5, 6}}}
	out := DraftKingsCSV(lineups, map[int]string{1: "A", 2: "B", 3: "C", 4: "D", 5: "E", 6: "F"})
	fields := strings.Split(strings.TrimSuffix(out, "\n"), ",")
	assert.Len(t, fields, 6)
}
