package model

import (
	"time"
)

type RedemptionStatus string

const (
	RedemptionStatusActive        RedemptionStatus = "active"
	RedemptionStatusFalsePositive RedemptionStatus = "false_positive"
)

// Redemption is the permanent ledger record that a code was consumed. At most
// one row exists per code; the unique constraint on the code column is what
// makes redemption exactly-once under concurrent attempts. Rows are never
// deleted. Status may later be corrected to false_positive by admin tooling.
type Redemption struct {
	ID         string // ULID, sortable by creation time
	Code       string
	UserID     string
	PlanType   PlanType
	Status     RedemptionStatus
	RedeemedAt time.Time
}
