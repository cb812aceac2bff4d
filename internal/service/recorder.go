package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smartcity/evsite/internal/domain"
)

// RecordingService fans completed analyses out to recorders in the background.
type RecordingService struct {
	recorders []domain.PredictionRecorder
	timeout   time.Duration

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewRecordingService creates a recording service. Nil recorders are skipped.
func NewRecordingService(timeout time.Duration, recorders ...domain.PredictionRecorder) *RecordingService {
	s := &RecordingService{timeout: timeout}
	for _, r := range recorders {
		if r != nil {
			s.recorders = append(s.recorders, r)
		}
	}
	if s.timeout <= 0 {
		s.timeout = 5 * time.Second
	}
	return s
}

// RecordAsync records an analysis without blocking the caller. Failures are logged.
func (s *RecordingService) RecordAsync(loc domain.LocationRecord, analysis domain.Analysis) {
	if len(s.recorders) == 0 {
		return
	}

	rec := domain.PredictionRecord{
		AnalysisID:   analysis.AnalysisID,
		LocationName: analysis.LocationName,
		Location:     loc,
		Result:       analysis.PredictionResult,
		CreatedAt:    analysis.Timestamp,
	}

	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		for _, r := range s.recorders {
			if err := r.RecordPrediction(bgCtx, rec); err != nil {
				zap.L().Error("failed to record prediction",
					zap.String("analysis_id", rec.AnalysisID),
					zap.Error(err),
				)
			}
		}
	}()
}

// WaitBackground blocks until all background recordings complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *RecordingService) WaitBackground() {
	s.wgBg.Wait()
}
