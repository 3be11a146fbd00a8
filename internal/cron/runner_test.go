package cronrunner

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type ctxKey struct{}

func TestAdd_JobRunsOnBaseContext(t *testing.T) {
	base := context.WithValue(context.Background(), ctxKey{}, "marker")
	r := New(zap.NewNop(), base)

	var got any
	id, err := r.Add("@daily", "check", func(ctx context.Context) error {
		got = ctx.Value(ctxKey{})
		return nil
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	r.cron.Entry(id).WrappedJob.Run()
	if got != "marker" {
		t.Fatalf("job context value=%v want=marker", got)
	}
}

func TestAdd_FailingJobIsAbsorbed(t *testing.T) {
	r := New(zap.NewNop(), context.Background())
	id, err := r.Add("@hourly", "flaky", func(ctx context.Context) error {
		return errors.New("boom")
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	// Must log and return, not panic or stop the schedule.
	r.cron.Entry(id).WrappedJob.Run()
}

func TestAdd_InvalidSpec(t *testing.T) {
	r := New(zap.NewNop(), context.Background())
	if _, err := r.Add("every other tuesday", "bad", func(ctx context.Context) error { return nil }); err == nil {
		t.Fatalf("expected an error for an unparseable schedule")
	}
}
