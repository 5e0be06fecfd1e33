// Package ratecsv turns the provider's CSV export into (date, rate) pairs.
//
// The provider format drifts: it may start with a BOM, use ';' or ',' as the
// separator, carry a TIME_PERIOD header and several metadata lines, mark
// missing values with '.', and write decimals with a comma. Bad rows are
// skipped and counted, never fatal.
package ratecsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/apperrors"
	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	headerMarker = "TIME_PERIOD"
	missingValue = "."
	bom          = "\uFEFF"
	nbsp         = "\u00A0"
)

// Row is one parsed observation for a single currency.
type Row struct {
	RateDate time.Time
	Rate     decimal.Decimal
}

// Result holds the parsed rows and the number of rows dropped because they could not be parsed.
// Header and missing-value rows are expected noise and are not counted as skipped.
type Result struct {
	Rows    []Row
	Skipped int
}

// Empty reports whether no usable rows were parsed.
func (r Result) Empty() bool {
	return len(r.Rows) == 0
}

// Observations converts the rows into domain observations for currency.
func (r Result) Observations(currency string) []domain.RateObservation {
	out := make([]domain.RateObservation, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = domain.RateObservation{Currency: currency, Rate: row.Rate, RateDate: row.RateDate}
	}
	return out
}

// DetectDelimiter returns ';' when the first line contains one, otherwise ','.
func DetectDelimiter(text string) rune {
	firstLine, _, _ := strings.Cut(text, "\n")
	if strings.Contains(firstLine, ";") {
		return ';'
	}
	return ','
}

// NormalizeRate strips non-breaking spaces and turns a decimal comma into a decimal point.
func NormalizeRate(raw string) string {
	s := strings.ReplaceAll(raw, nbsp, "")
	s = strings.ReplaceAll(s, ",", ".")
	return strings.TrimSpace(s)
}

// Parse extracts observations from raw CSV text. currency is only used for logging.
// A nil logger falls back to slog.Default().
func Parse(raw, currency string, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("currency", currency))

	text := strings.TrimPrefix(raw, bom)
	if strings.TrimSpace(text) == "" {
		return Result{}
	}

	delimiter := DetectDelimiter(text)

	var result Result
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		record, err := readLine(line, delimiter)
		if err != nil {
			result.Skipped++
			logger.Warn("Skipping unreadable CSV line", slog.Int("line", i+1), slog.String("error", err.Error()))
			continue
		}

		row, err := parseRecord(record)
		switch {
		case err == nil:
			result.Rows = append(result.Rows, row)
		case errors.Is(err, errNoise):
			// header, blank or missing-value line
		default:
			result.Skipped++
			logger.Debug("Skipping malformed CSV row", slog.Any("record", record), slog.String("error", err.Error()))
		}
	}

	if result.Skipped > 0 {
		logger.Info("Parsed provider CSV with skipped rows", slog.Int("rows", len(result.Rows)), slog.Int("skipped", result.Skipped))
	}
	return result
}

var errNoise = errors.New("noise row")

// readLine reads a single physical line, so an unbalanced quote stays confined to it.
func readLine(line string, delimiter rune) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	record, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	return record, err
}

func parseRecord(record []string) (Row, error) {
	if len(record) < 2 {
		return Row{}, fmt.Errorf("%w: expected at least 2 fields, got %d", apperrors.ErrParseSkip, len(record))
	}

	dateField := strings.TrimSpace(record[0])
	if dateField == "" || strings.EqualFold(dateField, headerMarker) {
		return Row{}, errNoise
	}

	rateField := strings.TrimSpace(record[1])
	if rateField == "" || rateField == missingValue {
		return Row{}, errNoise
	}

	date, err := domain.ParseDate(dateField)
	if err != nil {
		return Row{}, fmt.Errorf("%w: bad date %q: %v", apperrors.ErrParseSkip, dateField, err)
	}

	rate, err := decimal.NewFromString(NormalizeRate(rateField))
	if err != nil {
		return Row{}, fmt.Errorf("%w: bad rate %q: %v", apperrors.ErrParseSkip, rateField, err)
	}
	if rate.IsNegative() {
		return Row{}, fmt.Errorf("%w: negative rate %q", apperrors.ErrParseSkip, rateField)
	}

	return Row{RateDate: date, Rate: rate}, nil
}
