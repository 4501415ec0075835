package repos

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/simon-0215/advanced-data-project/data/models"
)

// CSVPriceSource reads a delimited price file with a header row
type CSVPriceSource struct {
	Path      string
	Delimiter rune
}

func (s *CSVPriceSource) Load(ctx context.Context) (*models.PriceTable, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening price file: %w", err)
	}
	defer f.Close()

	pt, err := s.read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("error reading price file %s: %w", s.Path, err)
	}
	return pt, nil
}

func (s *CSVPriceSource) read(ctx context.Context, r io.Reader) (*models.PriceTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are checked against the header in buildPriceTable
	reader.TrimLeadingSpace = true
	if s.Delimiter != 0 {
		reader.Comma = s.Delimiter
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(row) {
			continue
		}
		rows = append(rows, row)
	}

	return buildPriceTable(header, rows)
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
