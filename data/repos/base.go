package repos

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	ex "github.com/simon-0215/advanced-data-project/data/extensions"
	"github.com/simon-0215/advanced-data-project/data/models"
)

const (
	DateColumn = "Date"
)

var (
	ErrNoTickers  = errors.New("price table has no ticker columns")
	ErrEmptyTable = errors.New("price table has no rows")
)

// PriceSource loads a price file into memory, sorted ascending by date
type PriceSource interface {
	Load(ctx context.Context) (*models.PriceTable, error)
}

// NewPriceSource picks the reader for a file by its extension
func NewPriceSource(path string, sheet string) (PriceSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return &CSVPriceSource{Path: path, Delimiter: ','}, nil
	case ".tsv":
		return &CSVPriceSource{Path: path, Delimiter: '\t'}, nil
	case ".xlsx":
		return &XLSXPriceSource{Path: path, Sheet: sheet}, nil
	default:
		return nil, fmt.Errorf("unsupported price file type %q for %s", filepath.Ext(path), path)
	}
}

type priceRow struct {
	date   time.Time
	values []null.Float
}

// buildPriceTable converts a header and its string rows into a date sorted price table.
// The date column is the one named Date, falling back to the first column.
func buildPriceTable(header []string, rows [][]string) (*models.PriceTable, error) {
	if len(header) == 0 {
		return nil, ErrEmptyTable
	}

	dateIdx := ex.IndexOfFold(header, DateColumn)
	if dateIdx < 0 {
		dateIdx = 0
	}

	tickers := make([]string, 0, len(header)-1)
	tickerCols := make([]int, 0, len(header)-1)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == dateIdx || h == "" {
			continue
		}
		tickers = append(tickers, h)
		tickerCols = append(tickerCols, i)
	}

	if len(tickers) == 0 {
		return nil, ErrNoTickers
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	parsed := make([]priceRow, 0, len(rows))
	for r, row := range rows {
		line := r + 2 // header is line 1
		if len(row) < len(header) {
			// trailing empty cells are commonly trimmed by spreadsheet exports
			row = append(row, make([]string, len(header)-len(row))...)
		}
		if len(row) > len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(header), len(row))
		}

		date, err := parseDate(row[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		values := make([]null.Float, len(tickers))
		for i, col := range tickerCols {
			v, err := parseFloat(row[col])
			if err != nil {
				return nil, fmt.Errorf("line %d, column %s: %w", line, tickers[i], err)
			}
			values[i] = v
		}

		parsed = append(parsed, priceRow{date: date, values: values})
	}

	// stable so duplicate dates keep file order
	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].date.Before(parsed[j].date)
	})

	pt := models.NewPriceTable(tickers)
	for _, p := range parsed {
		pt.Dates = append(pt.Dates, p.date)
		for i, t := range tickers {
			pt.Prices[t] = append(pt.Prices[t], p.values[i])
		}
	}

	return pt, nil
}

// DuplicateDates counts rows whose date equals the previous row's date in a sorted table
func DuplicateDates(pt *models.PriceTable) int {
	n := 0
	for i := 1; i < len(pt.Dates); i++ {
		if pt.Dates[i].Equal(pt.Dates[i-1]) {
			n++
		}
	}
	return n
}
