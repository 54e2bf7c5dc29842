package tracker

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/rgehrsitz/aishcalc/internal/store"
	"go.uber.org/zap"
)

// ImportSummary describes what an import replaced the state with
type ImportSummary struct {
	Paydays    int                    `json:"paydays"`
	Payments   int                    `json:"payments"`
	Adjustment domain.AdjustmentState `json:"adjustment"`
	Legacy     bool                   `json:"legacy"`
}

// ExportFileName is the default file name for an export taken at t
func ExportFileName(t time.Time) string {
	return "aish_calculator_data_" + t.UTC().Format("2006-01-02") + ".json"
}

// Export returns the full state as an export document stamped with the
// current time
func (s *Service) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.snap.Clone()
	exported := s.now().UTC()
	out.ExportDate = &exported
	s.metrics.RecordOperation("export", nil)
	return store.Encode(out)
}

// Import replaces the whole state with an export document. Collections
// missing from the document become empty. Data with neither paydays nor
// payments is rejected with domain.ErrMissingCollections and the current
// state is kept.
func (s *Service) Import(ctx context.Context, data []byte) (ImportSummary, error) {
	snap, err := store.DecodeImport(data)
	if err != nil {
		s.metrics.RecordOperation("import", err)
		return ImportSummary{}, err
	}
	legacy := isLegacyDocument(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.update(ctx, "import", func(next *domain.Snapshot) error {
		*next = *snap
		return nil
	})
	if err != nil {
		return ImportSummary{}, err
	}

	summary := ImportSummary{
		Paydays:    snap.Paydays.Len(),
		Payments:   snap.AishPayments.Len(),
		Adjustment: snap.Adjustment(),
		Legacy:     legacy,
	}
	s.logger.Info("state imported",
		zap.Int("paydays", summary.Paydays),
		zap.Int("payments", summary.Payments),
		zap.Bool("legacy", legacy))
	return summary, nil
}

// ClearAll deletes every record, the calculator inputs and the factor
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, "clear_all", func(next *domain.Snapshot) error {
		*next = *domain.EmptySnapshot()
		return nil
	})
}

func isLegacyDocument(data []byte) bool {
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Version == 0
}
