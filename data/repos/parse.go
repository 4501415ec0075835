package repos

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

var (
	priceDateFormats = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006/01/02",
		"01/02/2006",
		"02-Jan-2006",
		"Jan 2, 2006",
		"20060102",
	}

	missingTokens = []string{"", "na", "n/a", "nan", "null", "none", "-"}
)

func parseDate(dateString string) (time.Time, error) {
	dateString = strings.TrimSpace(dateString)
	for _, format := range priceDateFormats {
		t, err := time.Parse(format, dateString)
		if err != nil {
			continue
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("error converting date %q to time.Time", dateString)
}

// parseFloat returns an invalid null.Float for gap markers and an error for anything non numeric
func parseFloat(val string) (null.Float, error) {
	val = strings.TrimSpace(val)
	for _, token := range missingTokens {
		if strings.EqualFold(val, token) {
			return null.Float{}, nil
		}
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return null.Float{}, fmt.Errorf("error converting %q to float: %w", val, err)
	}
	return null.FloatFrom(f), nil
}
