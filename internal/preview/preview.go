// Package preview coalesces interactive renders so only the newest request
// is ever delivered.
//
// Interactive edits arrive faster than the pipeline can render them. A
// Scheduler keeps at most one pending request: submitting a new one
// supersedes whatever was waiting, and a render that finishes after a newer
// request arrived is discarded rather than delivered.
package preview

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/ironsheep/idcard-studio/internal/imaging"
)

var (
	// ErrSuperseded is reported to a ticket whose request was replaced by a
	// newer one before its result could be delivered.
	ErrSuperseded = errors.New("preview superseded by a newer request")

	// ErrStopped is reported to tickets submitted after Run returned.
	ErrStopped = errors.New("preview scheduler stopped")
)

// Request is one interactive render.
type Request struct {
	Source *imaging.Buffer
	Region imaging.CropRegion
	Params imaging.EditParams
	Scale  float64
}

// RenderFunc renders a request. It is called from the Run goroutine only.
type RenderFunc func(Request) (*imaging.Buffer, error)

// Ticket is the handle returned by Submit.
type Ticket struct {
	// Generation increases by one with every Submit.
	Generation uint64

	done chan struct{}
	buf  *imaging.Buffer
	err  error
}

func newTicket(gen uint64) *Ticket {
	return &Ticket{Generation: gen, done: make(chan struct{})}
}

func (t *Ticket) finish(buf *imaging.Buffer, err error) {
	t.buf, t.err = buf, err
	close(t.done)
}

// Done is closed once the ticket has a result.
func (t *Ticket) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the ticket's render is delivered, superseded or failed,
// or until ctx is done.
func (t *Ticket) Wait(ctx context.Context) (*imaging.Buffer, error) {
	select {
	case <-t.done:
		return t.buf, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type job struct {
	req    Request
	ticket *Ticket
}

// Scheduler runs interactive renders one at a time, latest request wins.
type Scheduler struct {
	render RenderFunc
	debug  bool

	mu      sync.Mutex
	gen     uint64
	pending *job
	stopped bool

	wake chan struct{}
}

// New creates a Scheduler that renders with render. Call Run to start it.
func New(render RenderFunc, debug bool) *Scheduler {
	return &Scheduler{
		render: render,
		debug:  debug,
		wake:   make(chan struct{}, 1),
	}
}

// NewForRenderer creates a Scheduler backed by an imaging.Renderer.
func NewForRenderer(r *imaging.Renderer, debug bool) *Scheduler {
	return New(func(req Request) (*imaging.Buffer, error) {
		return r.Render(req.Source, req.Region, req.Params, req.Scale)
	}, debug)
}

// Generation returns the generation of the most recent Submit.
func (s *Scheduler) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Submit queues req, superseding any request that has not started yet.
// It never blocks.
func (s *Scheduler) Submit(req Request) *Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	t := newTicket(s.gen)
	if s.stopped {
		t.finish(nil, ErrStopped)
		return t
	}
	if s.pending != nil {
		s.pending.ticket.finish(nil, ErrSuperseded)
	}
	s.pending = &job{req: req, ticket: t}

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return t
}

// Render submits req and waits for its result.
func (s *Scheduler) Render(ctx context.Context, req Request) (*imaging.Buffer, error) {
	return s.Submit(req).Wait(ctx)
}

// Run renders pending requests until ctx is done. Requests still pending
// when Run returns fail with ErrStopped.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
		}

		s.mu.Lock()
		j := s.pending
		s.pending = nil
		s.mu.Unlock()
		if j == nil {
			continue
		}

		buf, err := s.render(j.req)
		if err != nil {
			log.Printf("Preview %d failed: %v", j.ticket.Generation, err)
		}

		s.mu.Lock()
		stale := j.ticket.Generation != s.gen
		s.mu.Unlock()

		if stale {
			if s.debug {
				log.Printf("Preview %d dropped, superseded", j.ticket.Generation)
			}
			j.ticket.finish(nil, ErrSuperseded)
			continue
		}
		j.ticket.finish(buf, err)
	}
}

func (s *Scheduler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.pending != nil {
		s.pending.ticket.finish(nil, ErrStopped)
		s.pending = nil
	}
}
