// Package loader runs slow source loads on a background worker pool,
// delivering progress and exactly one terminal outcome per submission.
package loader

import (
	"context"
	"sync"

	"github.com/flickread/flick/internal/source"
)

// Sink receives load lifecycle callbacks. Progress calls happen strictly
// between OnStarted and the terminal callback; exactly one of OnSucceeded or
// OnFailed fires. Callbacks run on a worker goroutine, so implementations
// hand results back to their own domain (e.g. via a channel) rather than
// mutating shared state.
type Sink interface {
	OnStarted()
	OnProgress(ratio float64)
	OnSucceeded()
	OnFailed(err error)
}

// Ticket identifies one submitted load. Detach suppresses all further
// callbacks without aborting the in-flight work: the decode still completes
// in the background, its result is simply discarded.
type Ticket struct {
	mu       sync.Mutex
	detached bool
	sink     Sink
}

// Detach stops callback delivery. After Detach returns, no callback starts.
func (t *Ticket) Detach() {
	t.mu.Lock()
	t.detached = true
	t.mu.Unlock()
}

// deliver invokes fn against the sink unless the ticket has been detached.
// The lock is held across the call so that Detach can never return while a
// callback is executing; sinks must not call Detach from inside a callback.
func (t *Ticket) deliver(fn func(Sink)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.detached {
		return
	}
	fn(t.sink)
}

type job struct {
	ctx    context.Context
	parser *source.Parser
	ticket *Ticket
}

// Pipeline is a fixed pool of workers executing parser loads.
type Pipeline struct {
	jobs chan job
	wg   sync.WaitGroup
}

// New starts a pipeline with the given number of workers (minimum one).
func New(workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	p := &Pipeline{jobs: make(chan job, workers*2)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit schedules the parser's load on a background worker and returns
// immediately. The returned ticket lets the requester detach if it goes away
// before the terminal callback fires.
func (p *Pipeline) Submit(ctx context.Context, parser *source.Parser, sink Sink) *Ticket {
	t := &Ticket{sink: sink}
	p.jobs <- job{ctx: ctx, parser: parser, ticket: t}
	return t
}

// Close stops accepting work and waits for in-flight loads to finish.
func (p *Pipeline) Close() {
	close(p.jobs)
	p.wg.Wait()
}

func (p *Pipeline) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		run(j)
	}
}

func run(j job) {
	j.ticket.deliver(func(s Sink) { s.OnStarted() })

	err := j.parser.Load(j.ctx, func(ratio float64) {
		j.ticket.deliver(func(s Sink) { s.OnProgress(ratio) })
	})

	if err != nil {
		j.ticket.deliver(func(s Sink) { s.OnFailed(err) })
		return
	}
	j.ticket.deliver(func(s Sink) { s.OnSucceeded() })
}
