package payment

import "encoding/json"

// Metadata flattens details into the string map stored alongside a transaction
func Metadata(d Details) map[string]string {
	if d == nil {
		return nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
