// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

// Package quota holds the pure decision logic for the free-tier daily limit
// and the time-bounded premium grant. No I/O happens here; callers load and
// persist records through models.EntitlementStore.
package quota

import (
	"time"

	"github.com/edutask/edutask/internal/models"
)

// DefaultPremiumDays is the length of a premium grant.
const DefaultPremiumDays = 30

// CanGenerate reports whether a new generation is allowed right now.
//
// Callers must pass a record obtained from EntitlementStore.Load so that
// lazy expiry has already been applied. Premium records are always allowed.
// Free-tier records are allowed once per local calendar date: the comparison
// is date equality, not a rolling 24-hour window, so generating at 23:59 and
// again at 00:01 is allowed. That trade-off is intentional.
func CanGenerate(record models.EntitlementRecord, now time.Time) bool {
	if record.IsPremium {
		return true
	}

	if record.LastFreeGeneration == nil {
		return true
	}
	return *record.LastFreeGeneration != now.Format(models.DateLayout)
}

// RecordFreeUse returns the record updated after a successful generation.
// Premium records pass through untouched; the free-quota field is never
// written while a grant is active.
func RecordFreeUse(record models.EntitlementRecord, now time.Time) models.EntitlementRecord {
	if record.IsPremium {
		return record
	}

	today := now.Format(models.DateLayout)
	record.LastFreeGeneration = &today
	return record
}

// GrantPremium returns the record with an unconditional premium grant for
// the given number of days, regardless of any prior state (including an
// already expired grant). Verifying that a payment actually happened is the
// caller's problem, not this layer's.
func GrantPremium(record models.EntitlementRecord, now time.Time, days int) models.EntitlementRecord {
	until := now.Add(time.Duration(days) * 24 * time.Hour)
	record.IsPremium = true
	record.PremiumUntil = &until
	return record
}
