package stream

import (
	"context"

	"github.com/goccy/go-json"

	"market_server/adapter/in/worker"
	"market_server/pkg/logger"
)

// Consumer bridges Redis Streams to the worker pool: it reads jobs from the
// behavior and profile streams and submits them as pool messages.
type Consumer struct {
	stream *RedisStream
	pool   *worker.Pool
	name   string
	log    *logger.Logger
}

func NewConsumer(stream *RedisStream, pool *worker.Pool, name string) *Consumer {
	return &Consumer{
		stream: stream,
		pool:   pool,
		name:   name,
		log:    logger.WithField("component", "consumer"),
	}
}

func (c *Consumer) Start(ctx context.Context) {
	// Create consumer groups
	streams := []string{StreamBehavior, StreamProfile}
	for _, s := range streams {
		if err := c.stream.CreateGroup(ctx, s); err != nil {
			c.log.WithError(err).WithField("stream", s).Error("failed to create consumer group")
		}
	}

	go c.consume(ctx, StreamBehavior)
	go c.consume(ctx, StreamProfile)
}

func (c *Consumer) consume(ctx context.Context, stream string) {
	c.stream.Consume(ctx, stream, c.name, func(id string, data []byte) error {
		var job Job
		if err := json.Unmarshal(data, &job); err != nil {
			c.log.WithError(err).WithField("message_id", id).Error("failed to unmarshal job")
			return err
		}

		msg := &worker.Message{
			ID:        job.ID,
			Type:      job.Type,
			Payload:   job.Payload,
			CreatedAt: job.CreatedAt,
		}

		if !c.pool.Submit(msg) {
			c.log.WithField("job_id", job.ID).Warn("pool not running, job dropped")
		}
		return nil
	})
}
