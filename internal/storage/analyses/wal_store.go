package analyses

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/dmikhr/cardtrend/internal/domain"
)

const (
	DefaultDir   = "./wal/analyses"
	segmentLimit = 100
	maxSegments  = 10

	reportKeyPrefix = "report_"
)

// ReportRecord is one persisted analysis report with its WAL position.
type ReportRecord struct {
	Index  uint64
	Report domain.AnalysisReport
}

// WALStore persists analysis reports in a WAL so signal changes can be
// detected across runs.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed report store.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "analysis_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init analysis WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the report to the WAL.
func (s *WALStore) Save(report domain.AnalysisReport) error {
	if s == nil || s.wal == nil {
		return errors.New("analysis store is not initialized")
	}
	if report.CardName == "" {
		return fmt.Errorf("analysis report card name is required")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "marshal analysis report")
	}

	key := fmt.Sprintf("%s%s", reportKeyPrefix, report.CardName)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// ReportsAfter returns all reports written after the provided WAL index.
func (s *WALStore) ReportsAfter(index uint64) ([]ReportRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("analysis store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]ReportRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(key, reportKeyPrefix) {
			continue
		}

		var report domain.AnalysisReport
		if err := json.Unmarshal(payload, &report); err != nil {
			return nil, errors.Wrap(err, "decode analysis report")
		}
		records = append(records, ReportRecord{Index: idx, Report: report})
	}

	return records, nil
}

// LatestFor returns the most recent stored report for a card, or nil.
func (s *WALStore) LatestFor(cardName string) (*domain.AnalysisReport, error) {
	records, err := s.ReportsAfter(0)
	if err != nil {
		return nil, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Report.CardName == cardName {
			return &records[i].Report, nil
		}
	}
	return nil, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("analysis store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
