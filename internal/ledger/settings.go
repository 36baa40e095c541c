package ledger

import (
	"github.com/cardledger/internal/config"
	"github.com/cardledger/internal/domain/payment"
)

// ConfigFromSettings builds the engine configuration from process settings
func ConfigFromSettings(cfg *config.Config, observer Observer) Config {
	return Config{
		Limits: Limits{
			DepositMax:    cfg.Limits.DepositMax,
			WithdrawalMax: cfg.Limits.WithdrawalMax,
			TransferMax:   cfg.Limits.TransferMax,
		},
		Fees: FeeSchedule{
			payment.MethodMobileMoney:  feeRule(cfg.Fees.MobileMoney),
			payment.MethodBankTransfer: feeRule(cfg.Fees.BankTransfer),
			payment.MethodCashPickup:   feeRule(cfg.Fees.CashPickup),
		},
		Instructions: NewEscrowInstructions(EscrowAccounts{
			MobileMoneyNumber: cfg.Escrow.MobileMoneyNumber,
			MobileMoneyName:   cfg.Escrow.MobileMoneyName,
			BankName:          cfg.Escrow.BankName,
			BankAccountNumber: cfg.Escrow.BankAccountNumber,
			BankAccountName:   cfg.Escrow.BankAccountName,
			CashAgentNetwork:  cfg.Escrow.CashAgentNetwork,
		}),
		Observer: observer,
	}
}

func feeRule(rule config.FeeRuleConfig) FeeRule {
	return FeeRule{Rate: rule.Rate, Minimum: rule.Minimum, Flat: rule.Flat}
}
