// Package tier derives a sender's membership tier from a directory lookup.
package tier

import (
	"strings"

	"trader-bot/internal/domain"
)

var falsy = map[string]struct{}{
	"false": {},
	"0":     {},
	"no":    {},
	"":      {},
	"none":  {},
}

// Classify maps a lookup outcome onto exactly one tier. It is recomputed on
// every message; nothing about the outcome is stored.
func Classify(rec domain.Record, found bool) domain.Classification {
	if !found {
		return domain.Classification{Tier: domain.TierUnregistered}
	}
	if !IsActive(rec) {
		return domain.Classification{Tier: domain.TierInactive, Record: rec}
	}
	level := strings.TrimSpace(rec.Level)
	if level == "" {
		level = domain.BaselineLevel
	}
	return domain.Classification{Tier: domain.TierActive, Level: level, Record: rec}
}

// IsActive reports whether the record's activation field is set to anything
// outside the falsy tokens. A missing field counts as inactive.
func IsActive(rec domain.Record) bool {
	if !rec.HasActive {
		return false
	}
	_, off := falsy[strings.ToLower(domain.Text(rec.Active))]
	return !off
}
