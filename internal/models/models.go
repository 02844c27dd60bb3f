// Package models provides domain models for the options toolkit.
package models

// PriceBar is one row of an end-of-day price history.
type PriceBar struct {
	Date  string  `csv:"date"`
	Close float64 `csv:"close"`
}
