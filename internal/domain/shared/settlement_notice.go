package shared

import (
	"time"

	"github.com/google/uuid"
)

// SettlementNotice defines a Kafka message reporting the escrow outcome of a pending deposit
type SettlementNotice struct {
	DepositID     uuid.UUID         `json:"deposit_id"`
	Outcome       SettlementOutcome `json:"outcome"`
	Reason        string            `json:"reason,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}
