package app

import (
	"cmp"
	"math"
	"slices"
	"strconv"

	"weighttrack/internal/domain"
)

// ChartPoint is a single labelled value of the weight chart.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartSeries is the input of the chart renderer.
type ChartSeries struct {
	Label  string       `json:"label"`
	Unit   string       `json:"unit"`
	Points []ChartPoint `json:"points"`
}

// HasData reports whether there is anything to plot. Renderers show a
// placeholder instead of an empty plot when it is false.
func (s ChartSeries) HasData() bool {
	return len(s.Points) > 0
}

// Values returns the y values in order.
func (s ChartSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// BuildSeries returns the chronological weight series for entries, converted
// to unit ("kg" or "lb"; anything else is treated as kg). Entries sharing a
// date keep their store order.
func BuildSeries(entries []domain.WeightEntry, unit string) ChartSeries {
	if !domain.ValidUnit(unit) {
		unit = domain.UnitKg
	}
	sorted := SortEntries(entries, SortByDate, false)

	points := make([]ChartPoint, 0, len(sorted))
	for _, e := range sorted {
		points = append(points, ChartPoint{
			Label: domain.FormatDisplayDate(e.Date),
			Value: domain.ConvertWeight(e.Weight, domain.UnitKg, unit),
		})
	}
	return ChartSeries{Label: "Weight (" + unit + ")", Unit: unit, Points: points}
}

// SortField selects the history table ordering.
type SortField int

const (
	SortByDate SortField = iota
	SortByWeight
)

func (f SortField) String() string {
	if f == SortByWeight {
		return "weight"
	}
	return "date"
}

// ParseSortField maps "date" and "weight" to a SortField.
func ParseSortField(s string) (SortField, bool) {
	switch s {
	case "date", "":
		return SortByDate, true
	case "weight":
		return SortByWeight, true
	}
	return SortByDate, false
}

// SortEntries returns a sorted copy of entries. The sort is stable, so equal
// keys keep store order.
func SortEntries(entries []domain.WeightEntry, field SortField, descending bool) []domain.WeightEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b domain.WeightEntry) int {
		var c int
		if field == SortByWeight {
			c = cmp.Compare(a.Weight, b.Weight)
		} else {
			c = cmp.Compare(dateKey(a.Date), dateKey(b.Date))
		}
		if descending {
			return -c
		}
		return c
	})
	return out
}

// HistoryRow is one display row of the history table.
type HistoryRow struct {
	ID     string
	Date   string
	Weight string
}

// HistoryRows formats entries for display, in the given order.
func HistoryRows(entries []domain.WeightEntry, unit string) []HistoryRow {
	if !domain.ValidUnit(unit) {
		unit = domain.UnitKg
	}
	rows := make([]HistoryRow, 0, len(entries))
	for _, e := range entries {
		w := domain.ConvertWeight(e.Weight, domain.UnitKg, unit)
		rows = append(rows, HistoryRow{
			ID:     e.ID,
			Date:   domain.FormatDisplayDate(e.Date),
			Weight: strconv.FormatFloat(roundTo(w, 2), 'f', -1, 64),
		})
	}
	return rows
}

func dateKey(s string) string {
	if iso, err := domain.CanonicalDate(s); err == nil {
		return iso
	}
	return s
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
