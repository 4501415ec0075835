package core

import (
	"math"
	"time"

	"github.com/guregu/null/v6"

	dm "github.com/simon-0215/advanced-data-project/data/models"
)

// CleanStats reports what CleanPrices changed, for logging only
type CleanStats struct {
	Missing      int
	Filled       int
	DroppedRows  int
	EmptyTickers []string
}

// CleanPrices forward fills then back fills each ticker, then drops rows still missing a value.
// Tickers with no observation at all cannot be filled; they are kept as empty columns and
// excluded from the row check so they do not wipe out the whole table.
func CleanPrices(pt *dm.PriceTable) (*dm.PriceTable, CleanStats) {
	var stats CleanStats
	filled := pt.Clone()

	observed := make([]string, 0, len(pt.Tickers))
	for _, t := range pt.Tickers {
		col := filled.Prices[t]

		// forward fill
		var last null.Float
		for i := range col {
			if !col[i].Valid {
				stats.Missing++
				if last.Valid {
					col[i] = last
					stats.Filled++
				}
				continue
			}
			last = col[i]
		}

		// back fill, only leading gaps remain at this point
		var next null.Float
		for i := len(col) - 1; i >= 0; i-- {
			if !col[i].Valid {
				if next.Valid {
					col[i] = next
					stats.Filled++
				}
				continue
			}
			next = col[i]
		}

		if next.Valid {
			observed = append(observed, t)
		} else {
			stats.EmptyTickers = append(stats.EmptyTickers, t)
		}
	}

	res := dm.NewPriceTable(pt.Tickers)
	for i, d := range filled.Dates {
		if !filled.RowComplete(i, observed) {
			stats.DroppedRows++
			continue
		}
		res.Dates = append(res.Dates, d)
		for _, t := range pt.Tickers {
			res.Prices[t] = append(res.Prices[t], filled.Prices[t][i])
		}
	}

	return res, stats
}

// ComputeReturns derives simple period over period returns. The first date has no return and
// rows where every ticker is missing are dropped along with their date.
func ComputeReturns(pt *dm.PriceTable) *dm.ReturnTable {
	rt := &dm.ReturnTable{
		Dates:   []time.Time{},
		Tickers: append([]string(nil), pt.Tickers...),
		Returns: make(map[string][]float64, len(pt.Tickers)),
	}
	for _, t := range pt.Tickers {
		rt.Returns[t] = []float64{}
	}

	row := make([]float64, len(pt.Tickers))
	for i := 1; i < pt.Len(); i++ {
		allMissing := true
		for j, t := range pt.Tickers {
			prev, cur := pt.Prices[t][i-1], pt.Prices[t][i]
			if !prev.Valid || !cur.Valid {
				row[j] = math.NaN()
				continue
			}
			row[j] = cur.Float64/prev.Float64 - 1
			allMissing = false
		}

		if allMissing {
			continue
		}

		rt.Dates = append(rt.Dates, pt.Dates[i])
		for j, t := range pt.Tickers {
			rt.Returns[t] = append(rt.Returns[t], row[j])
		}
	}

	return rt
}
