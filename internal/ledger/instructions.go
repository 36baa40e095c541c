package ledger

import (
	"fmt"

	"github.com/cardledger/internal/domain/payment"
	"github.com/cardledger/internal/domain/transaction"
)

// InstructionGenerator renders the human-readable steps shown after a deposit or withdrawal commits
type InstructionGenerator interface {
	DepositInstructions(txn *transaction.Transaction, details payment.Details) string
	WithdrawalInstructions(txn *transaction.Transaction, details payment.Details) string
}

// EscrowAccounts holds the destinations customers pay deposits into
type EscrowAccounts struct {
	MobileMoneyNumber string
	MobileMoneyName   string
	BankName          string
	BankAccountNumber string
	BankAccountName   string
	CashAgentNetwork  string
}

// EscrowInstructions renders instructions against fixed escrow accounts
type EscrowInstructions struct {
	accounts EscrowAccounts
}

func NewEscrowInstructions(accounts EscrowAccounts) *EscrowInstructions {
	return &EscrowInstructions{accounts: accounts}
}

func (g *EscrowInstructions) DepositInstructions(txn *transaction.Transaction, details payment.Details) string {
	amount := txn.Amount.StringFixed(2) + " " + txn.Currency
	switch d := details.(type) {
	case payment.MobileMoneyDetails:
		return fmt.Sprintf("Send %s from %s to mobile money number %s (%s) using reference %s.",
			amount, d.MobileNumber, g.accounts.MobileMoneyNumber, g.accounts.MobileMoneyName, txn.Reference)
	case payment.BankTransferDetails:
		return fmt.Sprintf("Transfer %s to %s account %s (%s) with reference %s.",
			amount, g.accounts.BankName, g.accounts.BankAccountNumber, g.accounts.BankAccountName, txn.Reference)
	case payment.CashPickupDetails:
		return fmt.Sprintf("Pay %s in cash at any %s agent quoting reference %s.",
			amount, g.accounts.CashAgentNetwork, txn.Reference)
	default:
		return "Quote reference " + txn.Reference + " when paying " + amount + "."
	}
}

func (g *EscrowInstructions) WithdrawalInstructions(txn *transaction.Transaction, details payment.Details) string {
	amount := txn.Amount.Neg().StringFixed(2) + " " + txn.Currency
	switch d := details.(type) {
	case payment.MobileMoneyDetails:
		return fmt.Sprintf("%s will be sent to mobile number %s. Reference %s.", amount, d.MobileNumber, txn.Reference)
	case payment.BankTransferDetails:
		return fmt.Sprintf("%s will be transferred to %s account %s within 1-2 business days. Reference %s.",
			amount, d.BankName, d.AccountNumber, txn.Reference)
	case payment.CashPickupDetails:
		return fmt.Sprintf("%s is ready for pickup by %s at any %s agent. Present reference %s and a valid ID.",
			amount, d.RecipientName, g.accounts.CashAgentNetwork, txn.Reference)
	default:
		return "Withdrawal reference " + txn.Reference + "."
	}
}
