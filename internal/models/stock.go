package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Stock prices go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// StockRecord is one synthesized financial data point.
type StockRecord struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Volume int64           `json:"volume"`
}

// Validate enforces the record shape: non-empty symbol, price >= 0 with at
// most two decimal places, volume >= 0.
func (r StockRecord) Validate() error {
	if r.Symbol == "" {
		return fmt.Errorf("stock record: empty symbol")
	}
	if r.Price.IsNegative() {
		return fmt.Errorf("stock record %s: negative price %s", r.Symbol, r.Price)
	}
	if !r.Price.Equal(r.Price.Round(2)) {
		return fmt.Errorf("stock record %s: price %s has more than 2 decimal places", r.Symbol, r.Price)
	}
	if r.Volume < 0 {
		return fmt.Errorf("stock record %s: negative volume %d", r.Symbol, r.Volume)
	}
	return nil
}

// ValidateRecords checks a synthesized batch: between min and max entries,
// every record well formed.
func ValidateRecords(records []StockRecord, min, max int) error {
	if len(records) < min || len(records) > max {
		return fmt.Errorf("expected %d-%d records, got %d", min, max, len(records))
	}
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}
