package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

type Item struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Description string
	Quantity    int32
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// LineTotal computes quantity * unitPrice with exact decimal arithmetic.
func LineTotal(quantity int32, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	qty, err := decimal.New(int64(quantity), 0)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("math error:%w", err)
	}
	total, err := unitPrice.Mul(qty)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("math error:%w", err)
	}
	return total, nil
}

// SumLineTotals adds up the line totals of items. The empty set sums to zero.
func SumLineTotals(items []*Item) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, item := range items {
		next, err := sum.Add(item.LineTotal)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("math error:%w", err)
		}
		sum = next
	}
	return sum, nil
}
