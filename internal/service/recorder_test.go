package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/evsite/internal/domain"
)

type fakeRecorder struct {
	mu      sync.Mutex
	records []domain.PredictionRecord
	err     error
	delay   time.Duration
}

func (f *fakeRecorder) RecordPrediction(ctx context.Context, rec domain.PredictionRecord) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return f.err
}

func (f *fakeRecorder) recorded() []domain.PredictionRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.PredictionRecord(nil), f.records...)
}

func TestRecordingService_FansOutToAllRecorders(t *testing.T) {
	slow := &fakeRecorder{delay: 20 * time.Millisecond}
	failing := &fakeRecorder{err: errors.New("broker down")}
	s := NewRecordingService(time.Second, slow, nil, failing)

	loc := domain.SampleLocation()
	analysis := domain.Analysis{
		AnalysisID:   "ev_test",
		LocationName: "Downtown Business District",
		Timestamp:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		PredictionResult: domain.PredictionResult{
			ViabilityScore: 95,
		},
	}

	s.RecordAsync(loc, analysis)
	s.WaitBackground()

	for _, r := range []*fakeRecorder{slow, failing} {
		recs := r.recorded()
		require.Len(t, recs, 1)
		assert.Equal(t, "ev_test", recs[0].AnalysisID)
		assert.Equal(t, "Downtown Business District", recs[0].LocationName)
		assert.Equal(t, 95.0, recs[0].Result.ViabilityScore)
		assert.Equal(t, analysis.Timestamp, recs[0].CreatedAt)
		assert.Equal(t, loc, recs[0].Location)
	}
}

func TestRecordingService_NoRecorders(t *testing.T) {
	s := NewRecordingService(0)
	s.RecordAsync(domain.SampleLocation(), domain.Analysis{})
	s.WaitBackground()
	assert.Equal(t, 5*time.Second, s.timeout)
}

func TestRecordingService_Timeout(t *testing.T) {
	stuck := &fakeRecorder{delay: time.Minute}
	s := NewRecordingService(10*time.Millisecond, stuck)

	s.RecordAsync(domain.SampleLocation(), domain.Analysis{AnalysisID: "ev_slow"})
	s.WaitBackground()
	assert.Empty(t, stuck.recorded())
}
