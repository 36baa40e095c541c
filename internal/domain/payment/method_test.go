package payment

import (
	"encoding/json"
	"testing"

	"github.com/cardledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	testCases := []struct {
		name      string
		method    string
		raw       string
		want      Details
		wantField string
	}{
		{
			name:   "MobileMoney",
			method: "mobile_money",
			raw:    `{"provider":"M-Pesa","mobile_number":"+255712345678"}`,
			want:   MobileMoneyDetails{Provider: "M-Pesa", MobileNumber: "+255712345678"},
		},
		{
			name:      "MobileMoneyWithoutNumber",
			method:    "mobile_money",
			raw:       `{"provider":"M-Pesa"}`,
			wantField: "method_details.mobile_number",
		},
		{
			name:      "MobileMoneyWithLetters",
			method:    "mobile_money",
			raw:       `{"mobile_number":"07123abc99"}`,
			wantField: "method_details.mobile_number",
		},
		{
			name:      "MobileMoneyWithArabicIndicDigits",
			method:    "mobile_money",
			raw:       `{"mobile_number":"٠٧١٢٣٤٥"}`,
			wantField: "method_details.mobile_number",
		},
		{
			name:   "BankTransfer",
			method: "BANK_TRANSFER",
			raw:    `{"bank_name":"CRDB","account_number":"0150012345"}`,
			want:   BankTransferDetails{BankName: "CRDB", AccountNumber: "0150012345"},
		},
		{
			name:      "BankTransferWithoutAccount",
			method:    "bank_transfer",
			raw:       `{"bank_name":"CRDB"}`,
			wantField: "method_details.account_number",
		},
		{
			name:   "CashPickup",
			method: "cash_pickup",
			raw:    `{"recipient_name":"Amina Said"}`,
			want:   CashPickupDetails{RecipientName: "Amina Said"},
		},
		{
			name:      "CashPickupMissingDetails",
			method:    "cash_pickup",
			raw:       ``,
			wantField: "method_details.recipient_name",
		},
		{
			name:      "UnknownField",
			method:    "cash_pickup",
			raw:       `{"recipient_name":"Amina","iban":"x"}`,
			wantField: "method_details",
		},
		{
			name:      "UnsupportedMethod",
			method:    "crypto",
			raw:       `{}`,
			wantField: "method",
		},
		{
			name:      "MissingMethod",
			method:    "",
			raw:       `{}`,
			wantField: "method",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			details, err := Decode(tc.method, json.RawMessage(tc.raw))

			if tc.wantField != "" {
				var validationErr shared.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, tc.wantField, validationErr.Field)
				assert.Nil(t, details)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, details)
			assert.Equal(t, tc.want.Method(), details.Method())
		})
	}
}

func TestMetadata(t *testing.T) {
	meta := Metadata(BankTransferDetails{BankName: "CRDB", AccountNumber: "0150012345"})
	assert.Equal(t, map[string]string{"bank_name": "CRDB", "account_number": "0150012345"}, meta)
	assert.Nil(t, Metadata(nil))
}
