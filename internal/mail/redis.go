package mail

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/docuchat/docuchat/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

// JobTypeSendMail is the job type the worker dispatches on.
const JobTypeSendMail = "send-mail"

// Job is the envelope pushed onto the queue list.
type Job struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Message Message `json:"message"`
}

// RedisQueue pushes mail jobs onto a Redis list consumed by the worker.
type RedisQueue struct {
	Client *redis.Client
	Queue  string
}

// NewRedisQueue parses url (redis://...) and returns a queue on list name.
func NewRedisQueue(url, name string) (*RedisQueue, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisQueue{Client: redis.NewClient(opts), Queue: name}, nil
}

// Send enqueues msg. The job id is a digest of the message so a worker can
// drop duplicates.
func (q *RedisQueue) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	job, err := json.Marshal(Job{
		ID:      cryptox.FingerprintToken(string(body)),
		Type:    JobTypeSendMail,
		Message: msg,
	})
	if err != nil {
		return err
	}

	if err := q.Client.LPush(ctx, q.Queue, job).Err(); err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	return nil
}

// Ping checks the Redis connection for readiness probes.
func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.Client.Ping(ctx).Err()
}

func (q *RedisQueue) Close() error {
	return q.Client.Close()
}
