// Package loader wraps backend fetches with the dashboard's error policy.
//
// Read never fails: any fault is logged and replaced by a fallback payload of
// the same type, so renderers cannot tell live data from placeholder data.
// Act returns the fault to the caller, for user-triggered actions that must
// report failure instead of pretending to succeed.
package loader

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Source tells where a payload came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Result is the outcome of a Read.
type Result[T any] struct {
	Data   T
	Source Source
	// Err is the fault that triggered the fallback, nil for live data.
	Err error
}

// Fallback reports whether Data is placeholder data.
func (r Result[T]) Fallback() bool {
	return r.Source == SourceFallback
}

// Recorder receives load observations.
type Recorder interface {
	RecordLoad(endpoint, source string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordLoad(string, string, time.Duration) {}

// Loader carries the logger and recorder shared by all loads.
type Loader struct {
	logger   *zap.Logger
	recorder Recorder
}

// New creates a loader. Nil arguments are replaced by no-ops.
func New(logger *zap.Logger, recorder Recorder) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Loader{logger: logger, recorder: recorder}
}

// Read runs fetch and substitutes fallback() on any error.
func Read[T any](ctx context.Context, l *Loader, endpoint string, fetch func(context.Context) (T, error), fallback func() T) Result[T] {
	start := time.Now()
	data, err := fetch(ctx)
	elapsed := time.Since(start)

	if err == nil {
		l.recorder.RecordLoad(endpoint, string(SourceLive), elapsed)
		return Result[T]{Data: data, Source: SourceLive}
	}

	l.logger.Warn("using fallback data",
		zap.String("endpoint", endpoint),
		zap.Duration("duration", elapsed),
		zap.Error(err),
	)
	l.recorder.RecordLoad(endpoint, string(SourceFallback), elapsed)
	return Result[T]{Data: fallback(), Source: SourceFallback, Err: err}
}

// Act runs fetch and returns its error unchanged.
func Act[T any](ctx context.Context, l *Loader, endpoint string, fetch func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	data, err := fetch(ctx)
	elapsed := time.Since(start)

	if err != nil {
		l.logger.Error("load failed",
			zap.String("endpoint", endpoint),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		l.recorder.RecordLoad(endpoint, "error", elapsed)
		return data, err
	}
	l.recorder.RecordLoad(endpoint, string(SourceLive), elapsed)
	return data, nil
}
