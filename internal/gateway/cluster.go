package gateway

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"pkg.mon.icu/relay/internal/event"
	"pkg.mon.icu/relay/internal/metrics"
)

// identifyInterval is the minimum delay between two shards identifying.
const identifyInterval = 5 * time.Second

type Cluster struct {
	logger     *zap.Logger
	metrics    *metrics.Registry
	dispatcher *event.Dispatcher
	shards     []*Shard
	rest       requester
}

func NewCluster(log *zap.Logger, auth string, shards int, d *event.Dispatcher, m *metrics.Registry) (*Cluster, error) {
	if shards < 1 {
		return nil, fmt.Errorf("invalid shard count %d", shards)
	}

	log = log.Named("gateway")
	c := &Cluster{logger: log, metrics: m, dispatcher: d, shards: make([]*Shard, shards)}
	for i := range c.shards {
		s, err := newShard(i, shards, auth, d, log)
		if err != nil {
			return nil, fmt.Errorf("couldn't create shard %d: %w", i, err)
		}
		c.shards[i] = s
	}
	c.rest = c.shards[0].session

	return c, nil
}

func (c *Cluster) Dispatcher() *event.Dispatcher {
	return c.dispatcher
}

func (c *Cluster) Shards() []*Shard {
	return c.shards
}

// Open connects every shard, spacing out identifies. It fails if any shard
// fails to connect; shards already open are left for Close.
func (c *Cluster) Open(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range c.shards {
		i, s := i, s
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i) * identifyInterval):
			}

			c.logger.Debug("Opening shard.", zap.Int("shard", i))
			if err := s.Open(); err != nil {
				return fmt.Errorf("couldn't open shard %d: %w", i, err)
			}
			c.metrics.ShardOpened()
			return nil
		})
	}
	return g.Wait()
}

func (c *Cluster) Close() error {
	var err error
	for _, s := range c.shards {
		wasOpen, cerr := s.Close()
		if wasOpen {
			c.metrics.ShardClosed()
		}
		if cerr != nil {
			err = multierr.Append(err, fmt.Errorf("couldn't close shard %d: %w", s.id, cerr))
		}
	}
	return err
}
