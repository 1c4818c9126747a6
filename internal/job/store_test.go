package job

import (
	"errors"
	"testing"
	"time"

	"github.com/newthinker/tasi/internal/core"
)

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(100, time.Hour)

	job := store.Create("strategy:rsi", "s1")
	if job.ID == "" {
		t.Error("expected job ID")
	}
	if job.Status != StatusPending {
		t.Errorf("expected pending, got %s", job.Status)
	}

	retrieved, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if retrieved.ID != job.ID || retrieved.Session != "s1" {
		t.Errorf("unexpected job: %+v", retrieved)
	}
}

func TestStore_CreateReturnsCopy(t *testing.T) {
	store := NewStore(100, time.Hour)

	job := store.Create("strategy:macd", "")
	job.Status = StatusFailed

	retrieved, _ := store.Get(job.ID)
	if retrieved.Status != StatusPending {
		t.Errorf("mutating the returned job changed the store: %s", retrieved.Status)
	}
}

func TestStore_Update(t *testing.T) {
	store := NewStore(100, time.Hour)
	job := store.Create("strategy:rsi", "")

	err := store.Update(job.ID, func(j *Job) {
		j.Status = StatusComplete
		j.Result = core.StrategyResult{Name: "RSI"}
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	retrieved, _ := store.Get(job.ID)
	if retrieved.Status != StatusComplete {
		t.Errorf("expected complete, got %s", retrieved.Status)
	}
	if res, ok := retrieved.Result.(core.StrategyResult); !ok || res.Name != "RSI" {
		t.Errorf("unexpected result %v", retrieved.Result)
	}
}

func TestStore_MaxSize(t *testing.T) {
	store := NewStore(2, time.Hour)

	job1 := store.Create("strategy:rsi", "")
	store.Create("strategy:rsi", "")
	store.Create("strategy:rsi", "") // Should evict job1

	_, err := store.Get(job1.ID)
	if err == nil {
		t.Error("expected job1 to be evicted")
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 jobs, got %d", store.Len())
	}
}

func TestStore_NotFound(t *testing.T) {
	store := NewStore(100, time.Hour)

	_, err := store.Get("nonexistent")
	if !errors.Is(err, core.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
	if err := store.Update("nonexistent", func(*Job) {}); !errors.Is(err, core.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound from Update, got %v", err)
	}
}

func TestStore_List(t *testing.T) {
	store := NewStore(100, time.Hour)
	first := store.Create("strategy:moving_average", "")
	store.Create("strategy:rsi", "")

	jobs := store.List()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != first.ID {
		t.Errorf("expected oldest job first")
	}
}

func TestStore_Prune(t *testing.T) {
	store := NewStore(100, time.Minute)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	done := store.Create("strategy:rsi", "")
	store.Update(done.ID, func(j *Job) { j.Status = StatusComplete })
	running := store.Create("strategy:macd", "")
	store.Update(running.ID, func(j *Job) { j.Status = StatusRunning })

	now = now.Add(2 * time.Minute)

	if n := store.Prune(); n != 1 {
		t.Errorf("expected 1 pruned job, got %d", n)
	}
	if _, err := store.Get(done.ID); err == nil {
		t.Error("expected finished job to be pruned")
	}
	if _, err := store.Get(running.ID); err != nil {
		t.Error("running job must survive pruning")
	}
}
