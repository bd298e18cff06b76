package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"cv-analyzer/pkg/memorydb"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := memorydb.NewFromAddr(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("connect to miniredis: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return NewQueue(rdb, "cv_analysis_queue", zap.NewNop())
}

func TestQueue_EnqueueDequeueRoundtrip(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	in := Descriptor{
		JobID:         "job-1",
		CVID:          "cv-1",
		Provider:      "openai",
		PromptVersion: "v2",
		Metadata:      map[string]any{"source": "api"},
	}
	if err := q.Enqueue(ctx, in); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	out, err := q.Dequeue(ctx, time.Second)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if out == nil {
		t.Fatalf("expected descriptor, got empty")
	}
	if out.JobID != in.JobID || out.CVID != in.CVID || out.Provider != in.Provider || out.PromptVersion != in.PromptVersion {
		t.Fatalf("descriptor mismatch: %+v", out)
	}
	if out.CreatedAt.IsZero() {
		t.Fatalf("enqueue should stamp created_at")
	}
}

func TestQueue_FIFOOrder(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := q.Enqueue(ctx, Descriptor{JobID: id, CVID: "cv-" + id}); err != nil {
			t.Fatalf("Enqueue(%s): %v", id, err)
		}
	}

	n, err := q.Len(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Len: got %d, %v", n, err)
	}

	for _, want := range []string{"a", "b", "c"} {
		d, err := q.Dequeue(ctx, time.Second)
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		if d == nil || d.JobID != want {
			t.Fatalf("expected %s, got %+v", want, d)
		}
	}
}

func TestQueue_DequeueTimeoutIsEmptyNotError(t *testing.T) {
	q := newTestQueue(t)

	d, err := q.Dequeue(context.Background(), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("timeout should not be an error: %v", err)
	}
	if d != nil {
		t.Fatalf("expected empty result, got %+v", d)
	}
}

func TestQueue_EnqueueRequiresJobID(t *testing.T) {
	q := newTestQueue(t)

	if err := q.Enqueue(context.Background(), Descriptor{CVID: "cv-1"}); err == nil {
		t.Fatalf("expected error for descriptor without job_id")
	}
}
