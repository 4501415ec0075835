package models

import (
	"math"
	"slices"
	"time"

	"github.com/guregu/null/v6"
)

// PriceTable is a dated adjusted close table, one column per ticker.
// A cell is missing when its Valid flag is false.
type PriceTable struct {
	Dates   []time.Time
	Tickers []string
	Prices  map[string][]null.Float
}

// ReturnTable holds simple returns aligned to Dates, NaN marks a missing return.
type ReturnTable struct {
	Dates   []time.Time
	Tickers []string
	Returns map[string][]float64
}

func NewPriceTable(tickers []string) *PriceTable {
	prices := make(map[string][]null.Float, len(tickers))
	for _, t := range tickers {
		prices[t] = []null.Float{}
	}
	return &PriceTable{
		Dates:   []time.Time{},
		Tickers: slices.Clone(tickers),
		Prices:  prices,
	}
}

func (pt *PriceTable) Len() int {
	return len(pt.Dates)
}

// Clone deep copies the table so derived stages never share backing arrays
func (pt *PriceTable) Clone() *PriceTable {
	res := &PriceTable{
		Dates:   slices.Clone(pt.Dates),
		Tickers: slices.Clone(pt.Tickers),
		Prices:  make(map[string][]null.Float, len(pt.Prices)),
	}
	for t, p := range pt.Prices {
		res.Prices[t] = slices.Clone(p)
	}
	return res
}

// HasTicker reports whether the ticker is a column of the table
func (pt *PriceTable) HasTicker(ticker string) bool {
	return slices.Contains(pt.Tickers, ticker)
}

// Values returns a ticker's prices as floats with NaN for missing cells
func (pt *PriceTable) Values(ticker string) []float64 {
	col := pt.Prices[ticker]
	res := make([]float64, len(col))
	for i, v := range col {
		if v.Valid {
			res[i] = v.Float64
		} else {
			res[i] = math.NaN()
		}
	}
	return res
}

// Observations counts the non missing cells of a ticker
func (pt *PriceTable) Observations(ticker string) int {
	n := 0
	for _, v := range pt.Prices[ticker] {
		if v.Valid {
			n++
		}
	}
	return n
}

// RowComplete reports whether every listed ticker has a value at row i
func (pt *PriceTable) RowComplete(i int, tickers []string) bool {
	for _, t := range tickers {
		if !pt.Prices[t][i].Valid {
			return false
		}
	}
	return true
}

func (rt *ReturnTable) Len() int {
	return len(rt.Dates)
}

func (rt *ReturnTable) HasTicker(ticker string) bool {
	return slices.Contains(rt.Tickers, ticker)
}

// Observations returns the non missing returns of a ticker in chronological order
func (rt *ReturnTable) Observations(ticker string) []float64 {
	res := make([]float64, 0, len(rt.Returns[ticker]))
	for _, r := range rt.Returns[ticker] {
		if !math.IsNaN(r) {
			res = append(res, r)
		}
	}
	return res
}
