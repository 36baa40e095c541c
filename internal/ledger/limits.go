package ledger

import "github.com/shopspring/decimal"

// Limits caps the amount of a single operation
type Limits struct {
	DepositMax    decimal.Decimal
	WithdrawalMax decimal.Decimal
	TransferMax   decimal.Decimal
}

func DefaultLimits() Limits {
	return Limits{
		DepositMax:    decimal.NewFromInt(10000),
		WithdrawalMax: decimal.NewFromInt(20000),
		TransferMax:   decimal.NewFromInt(50000),
	}
}
