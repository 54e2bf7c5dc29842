// Package store persists the tracker snapshot. The snapshot is encoded as
// versioned JSON with a SHA-256 checksum and written as a single value to a
// Backend (file, memory, SQLite or Redis).
package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/aishcalc/internal/domain"
)

const checksumPrefix = "sha256:"

// Encode serialises snap at the current version and stamps its checksum.
// snap is not modified.
func Encode(snap *domain.Snapshot) ([]byte, error) {
	out := snap.Clone()
	out.Version = domain.SnapshotVersion
	out.Checksum = ""

	sum, err := checksum(out)
	if err != nil {
		return nil, err
	}
	out.Checksum = sum

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a persisted snapshot. Exports without a version are read as
// legacy data and skip the checksum check. Missing collections come back
// empty.
func Decode(data []byte) (*domain.Snapshot, error) {
	snap, err := decode(data)
	if err != nil {
		return nil, err
	}
	normalize(snap)
	return snap, nil
}

// DecodeImport parses an export file. Unlike Decode it rejects data carrying
// neither paydays nor aishPayments.
func DecodeImport(data []byte) (*domain.Snapshot, error) {
	snap, err := decode(data)
	if err != nil {
		return nil, err
	}
	if snap.Paydays == nil && snap.AishPayments == nil {
		return nil, domain.ErrMissingCollections
	}
	normalize(snap)
	return snap, nil
}

// snapshotAlias drops the methods of domain.Snapshot so wireSnapshot can
// embed it without inheriting them. The embed is by value: the decoder cannot
// allocate an embedded pointer to an unexported type.
type snapshotAlias domain.Snapshot

// wireSnapshot accepts the loosely typed fields of older exports
type wireSnapshot struct {
	snapshotAlias
	AdjustmentCount flexInt `json:"adjustmentCount"`
}

func decode(data []byte) (*domain.Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrMalformedSnapshot)
	}

	var wire wireSnapshot
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSnapshot, err)
	}
	snap := (*domain.Snapshot)(&wire.snapshotAlias)
	snap.AdjustmentCount = int(wire.AdjustmentCount)

	if snap.Version > domain.SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", domain.ErrMalformedSnapshot, snap.Version)
	}
	if snap.Version > 0 {
		if err := verify(snap); err != nil {
			return nil, err
		}
	}

	switch snap.AdjustmentMode {
	case "", domain.AdjustmentDerived, domain.AdjustmentOverridden:
	default:
		return nil, fmt.Errorf("%w: unknown adjustment mode %q", domain.ErrMalformedSnapshot, snap.AdjustmentMode)
	}
	return snap, nil
}

func verify(snap *domain.Snapshot) error {
	if snap.Checksum == "" {
		return fmt.Errorf("%w: version %d snapshot without checksum", domain.ErrMalformedSnapshot, snap.Version)
	}
	want := snap.Checksum
	snap.Checksum = ""
	got, err := checksum(snap)
	snap.Checksum = want
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: checksum mismatch", domain.ErrMalformedSnapshot)
	}
	return nil
}

// checksum hashes the compact encoding of snap. Map keys are written in
// sorted order so equal snapshots hash equally.
func checksum(snap *domain.Snapshot) (string, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot for checksum: %w", err)
	}
	sum := sha256.Sum256(payload)
	return checksumPrefix + hex.EncodeToString(sum[:]), nil
}

func normalize(snap *domain.Snapshot) {
	if snap.Paydays == nil {
		snap.Paydays = domain.PaydayBook{}
	}
	if snap.AishPayments == nil {
		snap.AishPayments = domain.PaymentBook{}
	}
	if snap.AdjustmentHistory == nil {
		snap.AdjustmentHistory = []domain.AdjustmentHistoryEntry{}
	}
	if snap.AdjustmentMode == "" {
		snap.AdjustmentMode = domain.AdjustmentDerived
	}
	snap.Version = domain.SnapshotVersion
	snap.Checksum = ""
}

// flexInt reads a JSON number or a quoted number
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid count %s", data)
	}
	*f = flexInt(n)
	return nil
}
