package ledger

import (
	"github.com/cardledger/internal/domain/payment"
	"github.com/cardledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FeeRule charges amount*Rate+Flat, never less than Minimum
type FeeRule struct {
	Rate    decimal.Decimal
	Minimum decimal.Decimal
	Flat    decimal.Decimal
}

// FeeSchedule maps withdrawal methods to their fee rule. Unlisted methods are free.
type FeeSchedule map[payment.Method]FeeRule

// DefaultFeeSchedule returns the standard withdrawal fees
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		payment.MethodMobileMoney: {
			Rate:    decimal.RequireFromString("0.01"),
			Minimum: decimal.NewFromInt(2),
		},
		payment.MethodBankTransfer: {
			Flat: decimal.NewFromInt(5),
		},
	}
}

// Calculate returns the fee for withdrawing amount through method, rounded half away from zero to cents
func (s FeeSchedule) Calculate(method payment.Method, amount decimal.Decimal) decimal.Decimal {
	rule, ok := s[method]
	if !ok {
		return decimal.Zero
	}

	fee := amount.Mul(rule.Rate).Add(rule.Flat)
	if fee.LessThan(rule.Minimum) {
		fee = rule.Minimum
	}
	if fee.IsNegative() {
		return decimal.Zero
	}
	return fee.Round(shared.MoneyScale)
}
