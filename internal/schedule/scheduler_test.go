package schedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type funcJob struct {
	name string
	run  func(ctx context.Context) error
}

func (j funcJob) Name() string { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.run(ctx) }

func TestCronScheduler_AddJob(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "five fields", spec: "*/30 * * * *"},
		{name: "descriptor", spec: "@hourly"},
		{name: "interval", spec: "@every 15m"},
		{name: "six fields rejected", spec: "0 */30 * * * *", wantErr: true},
		{name: "garbage", spec: "every now and then", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewCronScheduler()
			job := funcJob{name: "noop", run: func(context.Context) error { return nil }}

			err := s.AddJob(job, tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AddJob() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			s.Start(context.Background())
			defer s.Stop()
			if next := s.Next("noop"); next.IsZero() || !next.After(time.Now()) {
				t.Errorf("Next() = %v, want a future time", next)
			}
		})
	}
}

func TestCronScheduler_Next_UnknownJob(t *testing.T) {
	s := NewCronScheduler()
	if next := s.Next("missing"); !next.IsZero() {
		t.Errorf("Next() = %v, want zero time", next)
	}
}

func TestCronScheduler_SkipsOverlappingRuns(t *testing.T) {
	s := NewCronScheduler()

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	job := funcJob{name: "slow", run: func(context.Context) error {
		calls.Add(1)
		close(started)
		<-release
		return nil
	}}
	tick := s.wrap(job, "@every 1m")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tick()
	}()
	<-started

	// A tick while the first run is blocked returns immediately.
	tick()
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("job runs = %d, want 1", got)
	}
}

func TestCronScheduler_RunsAgainAfterFailure(t *testing.T) {
	s := NewCronScheduler()

	var calls int
	job := funcJob{name: "flaky", run: func(context.Context) error {
		calls++
		return errors.New("upstream unavailable")
	}}
	tick := s.wrap(job, "@every 1m")

	tick()
	tick()

	if calls != 2 {
		t.Errorf("job runs = %d, want 2", calls)
	}
}

func TestCronScheduler_PassesStartContext(t *testing.T) {
	s := NewCronScheduler()

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "scheduler")

	var got any
	job := funcJob{name: "ctx", run: func(ctx context.Context) error {
		got = ctx.Value(ctxKey{})
		return nil
	}}
	tick := s.wrap(job, "@every 1m")

	s.Start(ctx)
	defer s.Stop()
	tick()

	if got != "scheduler" {
		t.Errorf("job context value = %v, want scheduler", got)
	}
}
