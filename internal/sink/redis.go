package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/civictriage/ticketsynth/internal/config"
	"github.com/civictriage/ticketsynth/internal/synth"
)

// Redis appends each ticket to a stream with XADD, pipelining batchSize commands per round trip.
type Redis struct {
	client    *redis.Client
	pipe      redis.Pipeliner
	stream    string
	maxLen    int64
	batchSize int
	pending   int
}

func OpenRedis(ctx context.Context, cfg config.RedisConfig, batchSize int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return NewRedis(client, cfg.Stream, cfg.MaxLen, batchSize), nil
}

// NewRedis wraps client; the writer closes it on Close.
func NewRedis(client *redis.Client, stream string, maxLen int64, batchSize int) *Redis {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Redis{
		client:    client,
		pipe:      client.Pipeline(),
		stream:    stream,
		maxLen:    maxLen,
		batchSize: batchSize,
	}
}

func (r *Redis) Write(ctx context.Context, t *synth.Ticket) error {
	payload, err := MarshalLine(t)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{
			"ticket_id": t.TicketID,
			"ticket":    payload,
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}
	r.pipe.XAdd(ctx, args)
	r.pending++
	if r.pending >= r.batchSize {
		return r.flush(ctx)
	}
	return nil
}

func (r *Redis) Close() error {
	return errors.Join(r.flush(context.Background()), r.client.Close())
}

func (r *Redis) flush(ctx context.Context) error {
	if r.pending == 0 {
		return nil
	}
	r.pending = 0
	if _, err := r.pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to stream %s: %w", r.stream, err)
	}
	return nil
}
