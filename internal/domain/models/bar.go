package models

import (
	"fmt"
	"sort"
	"time"
)

// PriceBar is one daily OHLCV observation for a ticker.
// (ticker, date) is the unique key; dates are UTC day boundaries.
type PriceBar struct {
	Ticker string    `ch:"ticker" json:"ticker"`
	Date   time.Time `ch:"date" json:"date"`
	Open   float64   `ch:"open" json:"open"`
	High   float64   `ch:"high" json:"high"`
	Low    float64   `ch:"low" json:"low"`
	Close  float64   `ch:"close" json:"close"`
	Volume uint64    `ch:"volume" json:"volume"`
}

// Validate checks basic bar sanity before it enters the raw table.
func (b *PriceBar) Validate() error {
	if b.Ticker == "" {
		return fmt.Errorf("ticker empty")
	}
	if b.Date.IsZero() {
		return fmt.Errorf("date missing")
	}
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return fmt.Errorf("non-positive price")
	}
	return nil
}

// Day truncates a timestamp to its UTC day key.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FeatureRow is a labeled PriceBar extended with named indicator values.
// The label is the next trading day's direction: 1 if close(d+1) > close(d),
// 0 otherwise. Rows whose next-day close is unknown are never materialized.
type FeatureRow struct {
	PriceBar
	Features map[string]float64 `ch:"features" json:"features"`
	Label    int                `ch:"label" json:"label"`
}

// Key returns the (ticker, date) identity of the row.
func (r FeatureRow) Key() string {
	return r.Ticker + "|" + r.Date.Format("2006-01-02")
}

// Table is an ordered set of FeatureRows unique by (ticker, date).
// It is a value: stages derive new tables rather than mutating in place.
type Table struct {
	Rows []FeatureRow
}

// NewTable builds a table from rows, keeping the last row per key and
// ordering by date ascending with ticker as a deterministic tie-break.
func NewTable(rows []FeatureRow) Table {
	byKey := make(map[string]FeatureRow, len(rows))
	for _, r := range rows {
		byKey[r.Key()] = r
	}
	out := make([]FeatureRow, 0, len(byKey))
	for _, r := range byKey {
		out = append(out, r)
	}
	sortRows(out)
	return Table{Rows: out}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// LastDates returns the most recent processed date per ticker.
func (t Table) LastDates() map[string]time.Time {
	last := make(map[string]time.Time)
	for _, r := range t.Rows {
		if cur, ok := last[r.Ticker]; !ok || r.Date.After(cur) {
			last[r.Ticker] = r.Date
		}
	}
	return last
}

func sortRows(rows []FeatureRow) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Ticker < rows[j].Ticker
	})
}
