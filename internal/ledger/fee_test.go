package ledger

import (
	"testing"

	"github.com/cardledger/internal/domain/payment"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFeeSchedule_Calculate(t *testing.T) {
	fees := DefaultFeeSchedule()

	testCases := []struct {
		name   string
		method payment.Method
		amount string
		want   string
	}{
		{"MobileMoneyMinimum", payment.MethodMobileMoney, "100", "2"},
		{"MobileMoneyAtMinimumBoundary", payment.MethodMobileMoney, "200", "2"},
		{"MobileMoneyPercentage", payment.MethodMobileMoney, "1000", "10"},
		{"MobileMoneyRoundsHalfUp", payment.MethodMobileMoney, "250.50", "2.51"},
		{"BankTransferFlat", payment.MethodBankTransfer, "1", "5"},
		{"BankTransferFlatLarge", payment.MethodBankTransfer, "20000", "5"},
		{"CashPickupFree", payment.MethodCashPickup, "500", "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := fees.Calculate(tc.method, decimal.RequireFromString(tc.amount))
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s", got)
		})
	}
}

func TestFeeSchedule_Custom(t *testing.T) {
	fees := FeeSchedule{
		payment.MethodCashPickup: {Rate: decimal.RequireFromString("0.005"), Flat: decimal.NewFromInt(1)},
	}

	got := fees.Calculate(payment.MethodCashPickup, decimal.RequireFromString("333"))
	assert.True(t, decimal.RequireFromString("2.67").Equal(got), "got %s", got)
	assert.True(t, fees.Calculate(payment.MethodMobileMoney, decimal.NewFromInt(100)).IsZero())
}

func TestEscrowInstructions(t *testing.T) {
	g := NewEscrowInstructions(EscrowAccounts{
		MobileMoneyNumber: "0800 111 222",
		MobileMoneyName:   "Card Escrow",
		BankName:          "CRDB",
		BankAccountNumber: "0150099999",
		BankAccountName:   "Card Escrow Ltd",
		CashAgentNetwork:  "Wakala",
	})
	txn := &transaction.Transaction{
		ID:        uuid.New(),
		Amount:    decimal.RequireFromString("500"),
		Currency:  "TZS",
		Reference: "DEP-ABCDEF12",
	}

	got := g.DepositInstructions(txn, payment.BankTransferDetails{BankName: "NMB", AccountNumber: "1"})
	assert.Equal(t, "Transfer 500.00 TZS to CRDB account 0150099999 (Card Escrow Ltd) with reference DEP-ABCDEF12.", got)

	got = g.DepositInstructions(txn, payment.MobileMoneyDetails{MobileNumber: "255712345678"})
	assert.Contains(t, got, "0800 111 222")
	assert.Contains(t, got, "DEP-ABCDEF12")

	withdrawal := &transaction.Transaction{Amount: decimal.RequireFromString("-80"), Currency: "TZS", Reference: "WDR-1"}
	got = g.WithdrawalInstructions(withdrawal, payment.CashPickupDetails{RecipientName: "Amina"})
	assert.Equal(t, "80.00 TZS is ready for pickup by Amina at any Wakala agent. Present reference WDR-1 and a valid ID.", got)
}
