package model

import (
	"regexp"
	"strings"
	"time"
)

type CodeStatus string

const (
	CodeStatusAvailable CodeStatus = "available"
	CodeStatusRedeemed  CodeStatus = "redeemed"
	CodeStatusExpired   CodeStatus = "expired"
)

// LTDCode is an issued lifetime-deal license token. Codes are created by a
// bulk import (cmd/seed) and only ever transition to redeemed through the
// redemption ledger, or to expired lazily at validation time.
type LTDCode struct {
	ID        string
	Code      string // canonical form: trimmed, uppercased, globally unique
	PlanType  PlanType
	Status    CodeStatus
	IssuedAt  time.Time
	ExpiresAt *time.Time // nil means the code never expires
}

// IsExpired reports whether the code has passed its expiry at the given instant.
func (c *LTDCode) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

var (
	// Legacy dash-prefixed form handed out in the first campaign batch.
	legacyCodePattern = regexp.MustCompile(`^AS-[A-Z0-9]{6,}$`)
	// Fixed-length form used by the later partner batches.
	fixedCodePattern = regexp.MustCompile(`^[A-Z0-9]{15}$`)
)

// NormalizeCode returns the canonical representation of a raw code string.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidCodeFormat reports whether a canonical code matches one of the two
// accepted historical formats.
func ValidCodeFormat(code string) bool {
	return legacyCodePattern.MatchString(code) || fixedCodePattern.MatchString(code)
}

// HeuristicPlanForCode buckets a canonical code into a tier from fixed
// character positions. This is a migration shim for the pre-backfill batch
// whose codes are not yet in the lookup table; it stays behind the
// redemption.heuristic_plan_fallback config flag and goes away once the
// backfill lands.
func HeuristicPlanForCode(code string) (PlanType, bool) {
	if !ValidCodeFormat(code) || len(code) < 8 {
		return "", false
	}
	sum := charValue(code[3]) + charValue(code[7])
	return KnownPlanTypes[sum%len(KnownPlanTypes)], true
}

func charValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return 10 + int(c-'A')
	}
	return 0
}
