package publish

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// DefaultDB is the Redis database deltas are written to (CONFIG_DB).
const DefaultDB = 4

// MetaKey holds the generation of the last published state.
const MetaKey = "SWRECONCILE|state"

// Publisher writes state deltas to Redis. Each delta is applied in one
// MULTI/EXEC transaction, so readers never see half a generation.
type Publisher struct {
	client *redis.Client
	addr   string
}

// NewPublisher creates a publisher for the Redis server at addr.
func NewPublisher(addr string, db int) *Publisher {
	return &Publisher{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
		addr: addr,
	}
}

// Connect tests the connection.
func (p *Publisher) Connect(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connecting to redis at %s: %w", p.addr, err)
	}
	return nil
}

// Close closes the connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Publish writes every entry of delta and records its generation.
func (p *Publisher) Publish(ctx context.Context, delta state.Delta) error {
	ops, err := Ops(delta.Entries())
	if err != nil {
		return err
	}
	gen := delta.New.Generation()

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range ops {
			pipe.Del(ctx, op.Key)
			if op.Kind == OpSet {
				pipe.HSet(ctx, op.Key, hsetArgs(op.Fields)...)
			}
		}
		pipe.HSet(ctx, MetaKey,
			"generation", strconv.FormatUint(gen, 10),
			"published_at", time.Now().UTC().Format(time.RFC3339))
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing %d entries to redis: %w", len(ops), err)
	}
	util.WithGeneration(gen).WithField("entries", len(ops)).Debug("delta published")
	return nil
}

// Generation reads back the generation recorded by the last Publish. It
// returns 0 when nothing was published yet.
func (p *Publisher) Generation(ctx context.Context) (uint64, error) {
	v, err := p.client.HGet(ctx, MetaKey, "generation").Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(v, 10, 64)
}

func hsetArgs(fields map[string]string) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
