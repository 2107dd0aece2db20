// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrCorruptEntitlement indicates the persisted entitlement state exists but
// cannot be parsed. It is surfaced rather than silently reset: a reset would
// hand out an extra free generation.
var ErrCorruptEntitlement = errors.New("corrupt entitlement state")

// DateLayout is the calendar-date format used for the free-tier bookkeeping.
const DateLayout = "2006-01-02"

const entitlementKey = "entitlement"

// EntitlementRecord is the persisted premium/quota status for this device.
//
// The invariant IsPremium => PremiumUntil != nil holds for every record
// returned by EntitlementStore.Load. Expiry is lazy: an expired premium
// record is normalized back to free tier on the next Load, nowhere else.
type EntitlementRecord struct {
	IsPremium bool
	// PremiumUntil is the absolute expiry instant. Present iff a premium
	// grant was ever issued; may be in the past until Load normalizes it.
	PremiumUntil *time.Time
	// LastFreeGeneration is the local calendar date (YYYY-MM-DD) of the most
	// recent free-tier generation, nil if the free quota was never used.
	LastFreeGeneration *string
}

// entitlementJSON is the stored wire format. premiumUntil is epoch
// milliseconds to stay readable by the original single-page app.
type entitlementJSON struct {
	IsPremium          bool    `json:"isPremium"`
	PremiumUntil       *int64  `json:"premiumUntil"`
	LastFreeGeneration *string `json:"lastFreeGeneration"`
}

// MarshalJSON implements the stored wire format.
func (r EntitlementRecord) MarshalJSON() ([]byte, error) {
	wire := entitlementJSON{
		IsPremium:          r.IsPremium,
		LastFreeGeneration: r.LastFreeGeneration,
	}
	if r.PremiumUntil != nil {
		millis := r.PremiumUntil.UnixMilli()
		wire.PremiumUntil = &millis
	}
	return json.Marshal(wire)
}

// UnmarshalJSON implements the stored wire format.
func (r *EntitlementRecord) UnmarshalJSON(data []byte) error {
	var wire entitlementJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	r.IsPremium = wire.IsPremium
	r.LastFreeGeneration = wire.LastFreeGeneration
	r.PremiumUntil = nil
	if wire.PremiumUntil != nil {
		t := time.UnixMilli(*wire.PremiumUntil)
		r.PremiumUntil = &t
	}
	return nil
}

// EntitlementStore persists the single entitlement record in the app_state
// key-value table.
type EntitlementStore struct {
	db *sql.DB
}

func NewEntitlementStore(db *sql.DB) *EntitlementStore {
	return &EntitlementStore{db: db}
}

// Load reads the persisted record. When nothing is stored yet it returns the
// zero record without persisting anything. When the stored record is premium
// with an expiry at or before now, Load returns the normalized free-tier copy
// and writes it through. This is the only place expiry is evaluated.
func (s *EntitlementStore) Load(ctx context.Context, now time.Time) (EntitlementRecord, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM app_state WHERE key = ?`, entitlementKey,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return EntitlementRecord{}, nil
	}
	if err != nil {
		return EntitlementRecord{}, pkgerrors.Wrap(err, "failed to read entitlement state")
	}

	var record EntitlementRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return EntitlementRecord{}, pkgerrors.Wrap(ErrCorruptEntitlement, err.Error())
	}

	if record.IsPremium && record.PremiumUntil != nil && !record.PremiumUntil.After(now) {
		log.Info().
			Time("premiumUntil", *record.PremiumUntil).
			Msg("Premium grant expired, reverting to free tier")

		record.IsPremium = false
		record.PremiumUntil = nil
		if err := s.Save(ctx, record); err != nil {
			return EntitlementRecord{}, err
		}
	}

	return record, nil
}

// Save overwrites the persisted record entirely. Last writer wins.
func (s *EntitlementStore) Save(ctx context.Context, record EntitlementRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to encode entitlement state")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, entitlementKey, string(raw))
	if err != nil {
		return pkgerrors.Wrap(err, "failed to write entitlement state")
	}

	return nil
}
