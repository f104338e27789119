package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Денежные поля хранятся в NUMERIC(12,2)
const MoneyScale = 2

var maxMoney = decimal.New(1, 10)

// ValidateMoney отклоняет суммы, которые NUMERIC(12,2) округлил бы или не вместил
func ValidateMoney(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return NewError(ErrCodeValidation, fmt.Sprintf("%s must not be negative", field))
	}
	if !d.Equal(d.Truncate(MoneyScale)) {
		return NewError(ErrCodeValidation, fmt.Sprintf("%s must have at most %d decimal places", field, MoneyScale))
	}
	if d.GreaterThanOrEqual(maxMoney) {
		return NewError(ErrCodeValidation, fmt.Sprintf("%s must be less than %s", field, maxMoney.String()))
	}
	return nil
}
