package payment

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/cardledger/internal/domain/shared"
)

// Method identifies an external channel funds enter or leave through
type Method string

const (
	MethodMobileMoney  Method = "mobile_money"
	MethodBankTransfer Method = "bank_transfer"
	MethodCashPickup   Method = "cash_pickup"
)

// Details carries the method-specific fields of a deposit or withdrawal
type Details interface {
	Method() Method
	Validate() error
}

// MobileMoneyDetails identifies a mobile wallet
type MobileMoneyDetails struct {
	Provider     string `json:"provider,omitempty"`
	MobileNumber string `json:"mobile_number"`
}

func (MobileMoneyDetails) Method() Method { return MethodMobileMoney }

func (d MobileMoneyDetails) Validate() error {
	number := strings.TrimPrefix(strings.TrimSpace(d.MobileNumber), "+")
	if number == "" {
		return shared.ValidationError{Field: "method_details.mobile_number", Reason: "is required"}
	}
	if len(number) < 9 || len(number) > 15 {
		return shared.ValidationError{Field: "method_details.mobile_number", Reason: "must have between 9 and 15 digits"}
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return shared.ValidationError{Field: "method_details.mobile_number", Reason: "must contain digits only"}
		}
	}
	return nil
}

// BankTransferDetails identifies a bank account
type BankTransferDetails struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name,omitempty"`
}

func (BankTransferDetails) Method() Method { return MethodBankTransfer }

func (d BankTransferDetails) Validate() error {
	if strings.TrimSpace(d.BankName) == "" {
		return shared.ValidationError{Field: "method_details.bank_name", Reason: "is required"}
	}
	if strings.TrimSpace(d.AccountNumber) == "" {
		return shared.ValidationError{Field: "method_details.account_number", Reason: "is required"}
	}
	return nil
}

// CashPickupDetails names who collects cash and where
type CashPickupDetails struct {
	RecipientName  string `json:"recipient_name"`
	PickupLocation string `json:"pickup_location,omitempty"`
}

func (CashPickupDetails) Method() Method { return MethodCashPickup }

func (d CashPickupDetails) Validate() error {
	if strings.TrimSpace(d.RecipientName) == "" {
		return shared.ValidationError{Field: "method_details.recipient_name", Reason: "is required"}
	}
	return nil
}

// ParseMethod resolves a wire name into a known Method
func ParseMethod(name string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(name))); m {
	case MethodMobileMoney, MethodBankTransfer, MethodCashPickup:
		return m, nil
	case "":
		return "", shared.ValidationError{Field: "method", Reason: "is required"}
	default:
		return "", shared.ValidationError{Field: "method", Reason: "unsupported method " + name}
	}
}

// Decode parses raw JSON into the Details variant for method and validates it
func Decode(method string, raw json.RawMessage) (Details, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return nil, err
	}

	var details Details
	switch m {
	case MethodMobileMoney:
		var d MobileMoneyDetails
		err = unmarshalStrict(raw, &d)
		details = d
	case MethodBankTransfer:
		var d BankTransferDetails
		err = unmarshalStrict(raw, &d)
		details = d
	case MethodCashPickup:
		var d CashPickupDetails
		err = unmarshalStrict(raw, &d)
		details = d
	}
	if err != nil {
		return nil, shared.ValidationError{Field: "method_details", Reason: "malformed: " + err.Error()}
	}

	if err := details.Validate(); err != nil {
		return nil, err
	}
	return details, nil
}

func unmarshalStrict(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
