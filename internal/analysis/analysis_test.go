package analysis

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/raceda/internal/dataset"
)

const raceHeader = "HorseID,MeetingDate,WeightValue,StartingPrice,Weather,TrackType,Won,Hood,Eyecover"

var raceRows = []string{
	"101,2018-01-05,126,5/2,Rain,Turf,1,,",
	"102,2018-01-05,131,7/1,Rain,Turf,0,,",
	"103,2018-01-06,120,05-Feb,Fine,AW,0,,",
	"101,not-a-date,128,Evens,Fine,AW,1,,",
	"104,06/01/2018,,11/4F,,Turf,0,,",
	"105,2018-01-07,122,3/1,Rain,Turf,1,,",
}

func loadTable(t *testing.T, header string, rows []string) *dataset.Table {
	t.Helper()
	content := header + "\n"
	if len(rows) > 0 {
		content += strings.Join(rows, "\n") + "\n"
	}
	p := filepath.Join(t.TempDir(), "Horses.csv")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	tbl, err := dataset.Load(p, dataset.LoadOptions{})
	require.NoError(t, err)
	return tbl
}

func cleaned(t *testing.T) *dataset.Table {
	t.Helper()
	out, _ := dataset.Clean(loadTable(t, raceHeader, raceRows), dataset.DefaultCleanOptions())
	return out
}

func TestDescribe(t *testing.T) {
	s := Describe([]float64{4, 1, 3, 2})
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5, s.Mean, 1e-9)
	assert.InDelta(t, 1.2909944, s.Std, 1e-6)
	assert.Equal(t, 1.0, s.Min)
	assert.InDelta(t, 1.75, s.Q25, 1e-9)
	assert.InDelta(t, 2.5, s.Median, 1e-9)
	assert.InDelta(t, 3.25, s.Q75, 1e-9)
	assert.Equal(t, 4.0, s.Max)

	assert.Equal(t, NumSummary{}, Describe(nil))
	one := Describe([]float64{7})
	assert.Equal(t, 0.0, one.Std)
	assert.Equal(t, 7.0, one.Median)
}

func TestHistogram(t *testing.T) {
	bins := Histogram([]float64{0, 1, 2, 3, 4}, 2)
	require.Len(t, bins, 2)
	assert.Equal(t, 2, bins[0].Count)
	assert.Equal(t, 3, bins[1].Count, "last bin is closed")
	assert.Equal(t, 4.0, bins[1].Hi)

	flat := Histogram([]float64{5, 5, 5}, 4)
	total := 0
	for _, b := range flat {
		total += b.Count
	}
	assert.Equal(t, 3, total)
	assert.Nil(t, Histogram(nil, 10))
}

func TestBoxStats(t *testing.T) {
	b := BoxStats([]float64{1, 2, 3, 4, 100})
	assert.Equal(t, 5, b.N)
	assert.Equal(t, 2.0, b.Q1)
	assert.Equal(t, 3.0, b.Median)
	assert.Equal(t, 4.0, b.Q3)
	assert.Equal(t, 1.0, b.Low)
	assert.Equal(t, 4.0, b.High)
	assert.Equal(t, []float64{100}, b.Outliers)
}

func TestRobustOutliers(t *testing.T) {
	vals := []float64{10, 11, 10, 12, 11, 10, 11, 12, 10, 95}
	n, maxZ := robustOutliers(vals, 3.5)
	assert.Equal(t, 1, n)
	assert.Greater(t, maxZ, 3.5)

	n, _ = robustOutliers([]float64{1, 1, 1, 1}, 3.5)
	assert.Zero(t, n)
}

func TestProfileShapeNullsAndCardinality(t *testing.T) {
	rep := Profile(cleaned(t), DefaultOptions())
	assert.Equal(t, 6, rep.Rows)
	assert.Len(t, rep.Cols, 7)
	assert.Len(t, rep.Samples, 5)

	nulls := rep.NullCounts()
	assert.Equal(t, 1, nulls["MeetingDate"])
	assert.Equal(t, 1, nulls["WeightValue"])
	assert.Equal(t, 1, nulls["Weather"])
	assert.Equal(t, 0, nulls["HorseID"])

	card := rep.Cardinality()
	assert.Equal(t, 5, card["HorseID"])
	assert.Equal(t, 2, card["Weather"])

	date, ok := rep.Column("MeetingDate")
	require.True(t, ok)
	assert.Equal(t, dataset.KindDatetime, date.Kind)
	assert.Nil(t, date.Numeric)

	weight, ok := rep.Column("WeightValue")
	require.True(t, ok)
	require.NotNil(t, weight.Numeric)
	assert.Equal(t, 5, weight.Numeric.Count)
	assert.Equal(t, 120.0, weight.Numeric.Min)
	assert.Equal(t, 131.0, weight.Numeric.Max)

	weather, _ := rep.Column("Weather")
	require.NotEmpty(t, weather.TopValues)
	assert.Equal(t, CategoryCount{Value: "Rain", Count: 3}, weather.TopValues[0])
}

func TestProfileCorrelation(t *testing.T) {
	rep := Profile(cleaned(t), DefaultOptions())
	require.NotNil(t, rep.Corr)
	n := len(rep.Corr.Columns)
	assert.Contains(t, rep.Corr.Columns, "WeightValue")
	assert.NotContains(t, rep.Corr.Columns, "Weather")
	for i := 0; i < n; i++ {
		assert.Equal(t, 1.0, rep.Corr.Values[i][i])
		for j := 0; j < n; j++ {
			a, b := rep.Corr.Values[i][j], rep.Corr.Values[j][i]
			if math.IsNaN(a) {
				assert.True(t, math.IsNaN(b))
				continue
			}
			assert.Equal(t, a, b)
			assert.LessOrEqual(t, math.Abs(a), 1.0)
		}
	}
}

func TestProfileConstantColumnHasUndefinedCorrelation(t *testing.T) {
	tbl := loadTable(t, "a,b", []string{"1,5", "2,5", "3,5"})
	rep := Profile(tbl, DefaultOptions())
	require.NotNil(t, rep.Corr)
	assert.Equal(t, 1.0, rep.Corr.Values[0][0])
	assert.True(t, math.IsNaN(rep.Corr.Values[1][1]))
	assert.True(t, math.IsNaN(rep.Corr.Values[0][1]))
}

func TestProfileMarkdown(t *testing.T) {
	md := Profile(cleaned(t), DefaultOptions()).Markdown()
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 6", "[SCHEMA]", "[SUMMARY STATISTICS]", "| WeightValue | 5 |", "[HEAD]"} {
		assert.Contains(t, md, want)
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "Rain", truncate("Rain", 80))
	long := strings.Repeat("é", 100)
	got := truncate(long, 80)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 80, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestProfileDoesNotModifyTable(t *testing.T) {
	tbl := cleaned(t)
	before := tbl.Records()
	_ = Profile(tbl, DefaultOptions())
	assert.Equal(t, before, tbl.Records())
}

func TestWinLossSumsToRows(t *testing.T) {
	tbl := cleaned(t)
	mix := WinLossMix(tbl, DefaultRoles())
	assert.Equal(t, []CategoryCount{{Value: "0", Count: 3}, {Value: "1", Count: 3}}, mix)
	total := 0
	for _, c := range mix {
		total += c.Count
	}
	assert.Equal(t, tbl.Rows(), total)
}

func TestWinsPerHorseSumsToWins(t *testing.T) {
	wins := WinsPerHorse(cleaned(t), DefaultRoles())
	assert.Equal(t, []CategoryCount{{Value: "101", Count: 2}, {Value: "105", Count: 1}}, wins)
	total := 0
	for _, c := range wins {
		total += c.Count
	}
	assert.Equal(t, 3, total)
}

func TestRacesOverTimeSkipsBadDates(t *testing.T) {
	counts := RacesOverTime(cleaned(t), DefaultRoles())
	require.Len(t, counts, 4)
	got := map[string]int{}
	total := 0
	for i, c := range counts {
		got[c.Date.Format("2006-01-02")] = c.Count
		total += c.Count
		if i > 0 {
			assert.True(t, counts[i-1].Date.Before(c.Date))
		}
	}
	assert.Equal(t, map[string]int{"2018-01-05": 2, "2018-01-06": 1, "2018-01-07": 1, "2018-06-01": 1}, got)
	assert.Equal(t, 5, total)
}

func TestRacesOverTimeNeedsCoercedDates(t *testing.T) {
	raw := loadTable(t, raceHeader, raceRows)
	assert.Empty(t, RacesOverTime(raw, DefaultRoles()))
}

func TestWeatherTrackPivot(t *testing.T) {
	p := WeatherTrackPivot(cleaned(t), DefaultRoles())
	assert.Equal(t, []string{"Fine", "Rain"}, p.Rows)
	assert.Equal(t, []string{"AW", "Turf"}, p.Cols)
	assert.Equal(t, 2, p.Get("Rain", "Turf"))
	assert.Equal(t, 1, p.Get("Fine", "AW"))
	assert.Equal(t, 0, p.Get("Fine", "Turf"))
	assert.Equal(t, 0, p.Get("Snow", "AW"))
	assert.Equal(t, 3, p.Total())
}

func TestWeatherTrackPivotSingleCell(t *testing.T) {
	tbl := loadTable(t, "HorseID,Weather,TrackType,Won", []string{
		"1,Rain,Turf,1",
		"2,Rain,Turf,1",
		"3,Fine,AW,0",
	})
	p := WeatherTrackPivot(tbl, DefaultRoles())
	assert.Equal(t, []string{"Rain"}, p.Rows)
	assert.Equal(t, []string{"Turf"}, p.Cols)
	assert.Equal(t, [][]int{{2}}, p.Cells)
}

func TestWeightsByOutcome(t *testing.T) {
	tbl := cleaned(t)
	groups := WeightsByOutcome(tbl, DefaultRoles())
	require.Len(t, groups, 2)
	assert.Equal(t, "0", groups[0].Outcome)
	assert.ElementsMatch(t, []float64{131, 120}, groups[0].Values)
	assert.Equal(t, "1", groups[1].Outcome)
	assert.ElementsMatch(t, []float64{126, 128, 122}, groups[1].Values)
	assert.ElementsMatch(t, []float64{126, 128, 122}, WinnerWeights(tbl, DefaultRoles()))
}

func TestAggregatesOnMissingColumns(t *testing.T) {
	tbl := cleaned(t)
	r := DefaultRoles()
	r.Outcome = "Placed"
	r.Weather = "Sky"
	assert.Empty(t, WinLossMix(tbl, r))
	assert.Empty(t, WinsPerHorse(tbl, r))
	assert.True(t, WeatherTrackPivot(tbl, r).Empty())
	assert.Empty(t, WinnerWeights(tbl, r))
}

func TestHeaderOnlyGivesEmptyAggregates(t *testing.T) {
	tbl, _ := dataset.Clean(loadTable(t, raceHeader, nil), dataset.DefaultCleanOptions())
	assert.Equal(t, 0, tbl.Rows())

	agg := Aggregate(tbl, DefaultRoles())
	assert.Empty(t, agg.WinLoss)
	assert.Empty(t, agg.RacesOverTime)
	assert.Empty(t, agg.WinsPerHorse)
	assert.True(t, agg.WeatherTrack.Empty())
	assert.Empty(t, agg.WinnerWeights)
	assert.Len(t, agg.Empty(), 4)

	rep := Profile(tbl, DefaultOptions())
	assert.Equal(t, 0, rep.Rows)
	assert.Empty(t, rep.Samples)
	assert.NotEmpty(t, rep.Markdown())
}

func TestExportXLSX(t *testing.T) {
	tbl := cleaned(t)
	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, Profile(tbl, DefaultOptions()), Aggregate(tbl, DefaultRoles())))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Schema", "Summary", "WinLoss", "RacesOverTime", "WinsPerHorse", "WeatherTrack"}, f.GetSheetList())

	rows, err := f.GetRows("WinLoss")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Won", "count"}, {"0", "3"}, {"1", "3"}}, rows)

	rows, err = f.GetRows("WeatherTrack")
	require.NoError(t, err)
	assert.Equal(t, []string{"Weather", "AW", "Turf"}, rows[0])
	assert.Equal(t, []string{"Rain", "0", "2"}, rows[2])
}
