package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rgehrsitz/aishcalc/internal/domain"
	"go.uber.org/zap"
)

// Backend stores one encoded snapshot
type Backend interface {
	// Read returns the stored bytes, or domain.ErrNotFound when nothing has
	// been written yet.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the stored bytes
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Repository loads and saves snapshots through a Backend
type Repository struct {
	backend Backend
	logger  *zap.Logger
}

// NewRepository creates a repository. A nil logger discards output.
func NewRepository(backend Backend, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{backend: backend, logger: logger}
}

// Load returns the stored snapshot. A missing or malformed snapshot yields an
// empty one; a malformed one is logged at warn level. Only backend I/O
// failures are returned as errors.
func (r *Repository) Load(ctx context.Context) (*domain.Snapshot, error) {
	data, err := r.backend.Read(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		r.logger.Debug("no stored snapshot, starting empty")
		return domain.EmptySnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	snap, err := Decode(data)
	if err != nil {
		r.logger.Warn("stored snapshot is malformed, starting empty", zap.Error(err))
		return domain.EmptySnapshot(), nil
	}

	r.logger.Debug("loaded snapshot",
		zap.Int("paydays", snap.Paydays.Len()),
		zap.Int("payments", snap.AishPayments.Len()),
		zap.String("adjustment_factor", snap.AdjustmentFactor.String()))
	return snap, nil
}

// Save encodes and writes snap
func (r *Repository) Save(ctx context.Context, snap *domain.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := r.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Close releases the backend
func (r *Repository) Close() error {
	return r.backend.Close()
}
