package repos

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	ex "github.com/simon-0215/advanced-data-project/data/extensions"
	"github.com/simon-0215/advanced-data-project/data/models"
)

// XLSXPriceSource reads a price table from one sheet of a workbook, the first sheet when Sheet is empty
type XLSXPriceSource struct {
	Path  string
	Sheet string
}

func (s *XLSXPriceSource) Load(ctx context.Context) (*models.PriceTable, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening price workbook: %w", err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", s.Path)
		}
		sheet = sheets[0]
	}

	// raw values so dates come back as serial numbers instead of locale formatted text
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %s of %s: %w", sheet, s.Path, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows = ex.FilterMultiple(rows, func(r []string) bool { return !isBlank(r) })
	if len(rows) == 0 {
		return nil, fmt.Errorf("error reading sheet %s of %s: %w", sheet, s.Path, ErrEmptyTable)
	}

	header := rows[0]
	dateIdx := ex.IndexOfFold(header, DateColumn)
	if dateIdx < 0 {
		dateIdx = 0
	}

	body := rows[1:]
	for i, row := range body {
		if dateIdx >= len(row) {
			continue
		}
		converted, err := serialToDate(row[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("error reading sheet %s row %d: %w", sheet, i+2, err)
		}
		body[i][dateIdx] = converted
	}

	pt, err := buildPriceTable(header, body)
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %s of %s: %w", sheet, s.Path, err)
	}
	return pt, nil
}

// serialToDate rewrites an excel serial date as an ISO date, leaving text dates untouched
func serialToDate(cell string) (string, error) {
	cell = strings.TrimSpace(cell)
	serial, err := strconv.ParseFloat(cell, 64)
	if err != nil || (len(cell) == 8 && !strings.Contains(cell, ".")) {
		// not a serial number, or a yyyymmdd literal
		return cell, nil
	}

	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return "", fmt.Errorf("error converting excel serial %s to date: %w", cell, err)
	}
	return ex.FmtShort(t), nil
}
