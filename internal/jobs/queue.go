package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "cv-analyzer/pkg/errors"
	"cv-analyzer/pkg/memorydb"
)

// Queue is a durable FIFO list of job descriptors in Redis. Delivery is
// at-least-once with pop-once semantics: a popped descriptor is never
// redelivered, so a consumer crash mid-processing loses the message. There is
// no acknowledgement or requeue mechanism.
type Queue struct {
	rdb  *memorydb.RedisClient
	name string
	log  *zap.Logger
}

func NewQueue(rdb *memorydb.RedisClient, name string, log *zap.Logger) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{rdb: rdb, name: name, log: log}
}

// Name returns the queue's Redis list key.
func (q *Queue) Name() string {
	return q.name
}

// Enqueue pushes a descriptor onto the queue. The job id is generated by the
// producer before the job store record is written, never by the queue.
func (q *Queue) Enqueue(ctx context.Context, d Descriptor) error {
	if d.JobID == "" {
		return fmt.Errorf("descriptor job_id is required")
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal descriptor: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.name, payload); err != nil {
		return apperrors.WrapError(err, apperrors.ErrDependency.Code, "enqueue descriptor", http.StatusBadGateway)
	}

	q.log.Info("job enqueued", zap.String("job_id", d.JobID), zap.String("queue", q.name))
	return nil
}

// Dequeue blocks up to timeout for the next descriptor. Returns (nil, nil)
// when the timeout elapses with nothing to pop, letting the consumer loop and
// check for shutdown.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Descriptor, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.name)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperrors.WrapError(err, apperrors.ErrDependency.Code, "dequeue descriptor", http.StatusBadGateway)
	}
	if len(res) < 2 {
		return nil, nil
	}

	var d Descriptor
	if err := json.Unmarshal([]byte(res[1]), &d); err != nil {
		return nil, fmt.Errorf("unmarshal descriptor: %w", err)
	}

	q.log.Info("job dequeued", zap.String("job_id", d.JobID), zap.String("queue", q.name))
	return &d, nil
}

// Len returns the number of descriptors waiting on the queue.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.name)
}
