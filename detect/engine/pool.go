package engine

import (
	"context"
	"hash/fnv"
	"runtime"

	"nidscore/detect"
	"nidscore/detect/evaluation"
	"nidscore/flow"
	"nidscore/logging"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Pool runs an Engine on a fixed set of workers. All packets of a flow go to the same worker, so they are
// inspected in arrival order.
type Pool struct {
	logger     zerolog.Logger
	engine     Engine
	flows      *flow.Table
	alerts     logging.AlertLogger
	workers    int
	queueDepth int
}

// NewPool creates a Pool. workers of zero or less uses one worker per CPU.
func NewPool(logger zerolog.Logger, engine Engine, flows *flow.Table, alerts logging.AlertLogger, workers, queueDepth int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueDepth <= 0 {
		queueDepth = 1
	}

	return &Pool{
		logger:     logger,
		engine:     engine,
		flows:      flows,
		alerts:     alerts,
		workers:    workers,
		queueDepth: queueDepth,
	}
}

// Workers is the number of workers.
func (p *Pool) Workers() int { return p.workers }

// Run inspects packets until the channel is closed and every queued packet is done, or until ctx is cancelled.
// Packets without a Flow get one from the flow table.
func (p *Pool) Run(ctx context.Context, packets <-chan *detect.Packet) error {
	g, ctx := errgroup.WithContext(ctx)

	queues := make([]chan *detect.Packet, p.workers)
	for i := range queues {
		q := make(chan *detect.Packet, p.queueDepth)
		queues[i] = q
		worker := i

		g.Go(func() error {
			return p.work(ctx, worker, q)
		})
	}

	g.Go(func() error {
		defer func() {
			for _, q := range queues {
				close(q)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case pkt, ok := <-packets:
				if !ok {
					return nil
				}

				if pkt.Flow == nil && p.flows != nil {
					pkt.Flow = p.flows.Get(pkt.FlowKey)
				}

				select {
				case queues[p.workerFor(pkt.FlowKey)] <- pkt:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	})

	return g.Wait()
}

func (p *Pool) work(ctx context.Context, worker int, q <-chan *detect.Packet) error {
	tctx := evaluation.NewThreadCtx()
	inspected := 0

	for pkt := range q {
		if ctx.Err() != nil {
			// Drain so the dispatcher never blocks on a dead worker.
			continue
		}

		for _, a := range p.engine.Inspect(tctx, pkt) {
			p.alerts.AlertTriggered(a)
		}
		inspected++
	}

	p.logger.Debug().Int("worker", worker).Int("packets", inspected).Msg("Worker done")
	return nil
}

func (p *Pool) workerFor(key flow.Key) int {
	h := fnv.New32a()
	h.Write([]byte(key.Normalize().String()))
	return int(h.Sum32() % uint32(p.workers))
}
