package vending

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the engine. Callers branch with errors.Is.
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrOutOfStock          = errors.New("product out of stock")
	ErrInsufficientReserve = errors.New("not enough change in reserve")
)

// InsufficientFundsError reports that the inserted total does not cover the
// product price.
type InsufficientFundsError struct {
	Inserted int64
	Price    int64
}

// Shortfall returns how many stotinki are still missing.
func (e *InsufficientFundsError) Shortfall() int64 { return e.Price - e.Inserted }

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient amount: need %d stotinki more", e.Shortfall())
}

// ValidationError reports a rejected product write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
