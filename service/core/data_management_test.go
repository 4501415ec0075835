package core

import (
	"math"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "github.com/simon-0215/advanced-data-project/data/extensions"
	dm "github.com/simon-0215/advanced-data-project/data/models"
)

func day(i int) time.Time {
	return time.Date(2024, time.January, 1+i, 0, 0, 0, 0, time.UTC)
}

// priceTable builds a table from float columns, NaN marking a missing cell
func priceTable(tickers []string, cols ...[]float64) *dm.PriceTable {
	pt := dm.NewPriceTable(tickers)
	for i := range cols[0] {
		pt.Dates = append(pt.Dates, day(i))
	}
	for j, t := range tickers {
		for _, v := range cols[j] {
			if math.IsNaN(v) {
				pt.Prices[t] = append(pt.Prices[t], null.Float{})
				continue
			}
			pt.Prices[t] = append(pt.Prices[t], null.FloatFrom(v))
		}
	}
	return pt
}

func TestCleanPricesFillsForwardThenBackward(t *testing.T) {
	nan := math.NaN()
	raw := priceTable([]string{"A", "B"},
		[]float64{nan, 10, nan, 12},
		[]float64{5, nan, 7, 8},
	)

	cleaned, stats := CleanPrices(raw)

	ex.AssertSeriesNear(t, "A", []float64{10, 10, 10, 12}, cleaned.Values("A"), 0)
	ex.AssertSeriesNear(t, "B", []float64{5, 5, 7, 8}, cleaned.Values("B"), 0)
	ex.AssertAreEqual(t, "missing", 3, stats.Missing)
	ex.AssertAreEqual(t, "filled", 3, stats.Filled)
	ex.AssertAreEqual(t, "dropped", 0, stats.DroppedRows)
	assert.Empty(t, stats.EmptyTickers)

	// input untouched
	assert.False(t, raw.Prices["A"][0].Valid)
}

func TestCleanPricesKeepsEmptyTickerWithoutDroppingRows(t *testing.T) {
	nan := math.NaN()
	raw := priceTable([]string{"A", "EMPTY"},
		[]float64{1, 2, 3},
		[]float64{nan, nan, nan},
	)

	cleaned, stats := CleanPrices(raw)

	ex.AssertAreEqual(t, "rows", 3, cleaned.Len())
	assert.Equal(t, []string{"EMPTY"}, stats.EmptyTickers)
	ex.AssertAreEqual(t, "empty observations", 0, cleaned.Observations("EMPTY"))
	assert.Equal(t, []string{"A", "EMPTY"}, cleaned.Tickers)
}

func TestCleanPricesIsIdempotent(t *testing.T) {
	nan := math.NaN()
	raw := priceTable([]string{"A", "B", "C"},
		[]float64{nan, nan, 3, 4, nan},
		[]float64{1, nan, nan, 4, 5},
		[]float64{nan, nan, nan, nan, nan},
	)

	once, _ := CleanPrices(raw)
	twice, stats := CleanPrices(once)

	require.Equal(t, once.Dates, twice.Dates)
	for _, tk := range once.Tickers {
		ex.AssertSeriesNear(t, tk, once.Values(tk), twice.Values(tk), 0)
	}
	ex.AssertAreEqual(t, "filled on second pass", 0, stats.Filled)
}

func TestComputeReturnsFromPrices(t *testing.T) {
	rt := ComputeReturns(priceTable([]string{"A"}, []float64{100, 105, 95, 110}))

	require.Equal(t, 3, rt.Len())
	assert.Equal(t, []time.Time{day(1), day(2), day(3)}, rt.Dates)
	ex.AssertSeriesNear(t, "A", []float64{0.05, 95.0/105 - 1, 110.0/95 - 1}, rt.Returns["A"], 1e-12)
}

func TestComputeReturnsDropsAllMissingRows(t *testing.T) {
	nan := math.NaN()
	rt := ComputeReturns(priceTable([]string{"A", "B"},
		[]float64{100, 101, nan, 103},
		[]float64{50, nan, 52, 53},
	))

	assert.Equal(t, []time.Time{day(1), day(3)}, rt.Dates)
	ex.AssertSeriesNear(t, "A", []float64{0.01, nan}, rt.Returns["A"], 1e-12)
	ex.AssertSeriesNear(t, "B", []float64{nan, 53.0/52 - 1}, rt.Returns["B"], 1e-12)
}

func TestComputeReturnsSingleRowIsEmpty(t *testing.T) {
	rt := ComputeReturns(priceTable([]string{"A"}, []float64{100}))
	ex.AssertAreEqual(t, "rows", 0, rt.Len())
	assert.NotNil(t, rt.Returns["A"])
}
