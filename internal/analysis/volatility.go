package analysis

import (
	"io"
	"math"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
)

// DefaultTradingDays annualises daily returns.
const DefaultTradingDays = 252

// LogReturns returns ln(c[i]/c[i-1]) for consecutive closes.
func LogReturns(closes []float64) ([]float64, error) {
	if len(closes) < 2 {
		return nil, apperrors.ErrInsufficientData
	}
	returns := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if !(closes[i-1] > 0) || !(closes[i] > 0) {
			return nil, apperrors.NewValidationError("close", closes[i], "prices must be positive")
		}
		returns[i-1] = math.Log(closes[i] / closes[i-1])
	}
	return returns, nil
}

// HistoricalVolatility is the annualised sample standard deviation of the
// log returns of closes, as a fraction (0.2 == 20%). It needs at least three
// closes.
func HistoricalVolatility(closes []float64, tradingDays int) (float64, error) {
	if tradingDays <= 0 {
		return 0, apperrors.NewValidationError("trading_days", tradingDays, "must be positive")
	}
	returns, err := LogReturns(closes)
	if err != nil {
		return 0, err
	}
	if len(returns) < 2 {
		return 0, apperrors.ErrInsufficientData
	}
	sd, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return 0, apperrors.Wrap(err, "standard deviation")
	}
	return sd * math.Sqrt(float64(tradingDays)), nil
}

// RollingVolatility computes HistoricalVolatility over each trailing window
// of period returns. result[i] covers closes[i-period..i]; earlier entries
// are zero.
func RollingVolatility(closes []float64, period, tradingDays int) ([]float64, error) {
	if period < 2 {
		return nil, apperrors.NewValidationError("period", period, "must be at least 2")
	}
	if len(closes) < period+1 {
		return nil, apperrors.ErrInsufficientData
	}

	result := make([]float64, len(closes))
	for i := period; i < len(closes); i++ {
		hv, err := HistoricalVolatility(closes[i-period:i+1], tradingDays)
		if err != nil {
			return nil, err
		}
		result[i] = hv
	}
	return result, nil
}

// LoadCloses reads a CSV with "date" and "close" columns.
func LoadCloses(r io.Reader) ([]float64, error) {
	var bars []*models.PriceBar
	if err := gocsv.Unmarshal(r, &bars); err != nil {
		return nil, apperrors.NewDataError("closes", "csv", "failed to parse", err)
	}
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	return closes, nil
}

// LoadClosesFile reads closes from a CSV file.
func LoadClosesFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewDataError("closes", path, "failed to open", err)
	}
	defer f.Close()
	return LoadCloses(f)
}
