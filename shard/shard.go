// Package shard implements the per-thread-slot runtime that owns a
// disjoint partition of instruments and order books. Every mutation on an
// instrument's books runs on that instrument's shard; no lock is taken on
// book content, shard affinity substitutes (spec section 4.6/5).
//
// Grounded in the teacher's bufio.Reader-driven single-goroutine scan loop
// idiom (dbn_scanner.go) generalized here into a single-goroutine task
// queue, the common Go substitute for the original's external
// thread-scheduler abstraction.
package shard

import (
	"log/slog"
	"sync"

	"github.com/nimblemarkets/mdbook/book"
	"github.com/nimblemarkets/mdbook/instrument"
	"github.com/nimblemarkets/mdbook/wire"
)

// DefaultQueueSize is the task queue depth used when callers don't specify
// one.
const DefaultQueueSize = 1024

// Shard owns one partition of instruments/order books and runs every
// mutation on them through a single goroutine, so book content never needs
// its own lock (spec 4.6).
type Shard struct {
	ID         int
	ThreadName string
	Logger     *slog.Logger

	tasks chan func()
	done  chan struct{}
	once  sync.Once

	mu          sync.RWMutex // guards the two index maps' structure only
	instruments map[wire.InstrumentKey]*instrument.Instrument
	books       map[wire.OrderBookKey]*book.OrderBook
}

// New constructs a Shard bound to threadName and starts its task loop.
func New(id int, threadName string, queueSize int, logger *slog.Logger) *Shard {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Shard{
		ID:          id,
		ThreadName:  threadName,
		Logger:      logger,
		tasks:       make(chan func(), queueSize),
		done:        make(chan struct{}),
		instruments: make(map[wire.InstrumentKey]*instrument.Instrument),
		books:       make(map[wire.OrderBookKey]*book.OrderBook),
	}
	go s.loop()
	return s
}

func (s *Shard) loop() {
	for {
		select {
		case fn := <-s.tasks:
			fn()
		case <-s.done:
			return
		}
	}
}

// Invoke enqueues fn on this shard's thread and blocks until it runs (spec
// 4.6: "Shard::invoke(fn) enqueues fn on that thread").
func (s *Shard) Invoke(fn func()) {
	wait := make(chan struct{})
	s.tasks <- func() {
		fn()
		close(wait)
	}
	<-wait
}

// Run enqueues fn as fire-and-forget (spec 4.6: "Shard::run(fn) is a
// fire-and-forget variant").
func (s *Shard) Run(fn func()) {
	s.tasks <- fn
}

// Stop terminates the shard's task loop. Safe to call multiple times.
func (s *Shard) Stop() {
	s.once.Do(func() { close(s.done) })
}

// AddInstrument registers inst as owned by this shard.
func (s *Shard) AddInstrument(inst *instrument.Instrument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.instruments[inst.Key]; exists {
		return ErrInstrumentExists
	}
	s.instruments[inst.Key] = inst
	return nil
}

// Instrument looks up an owned instrument by key.
func (s *Shard) Instrument(key wire.InstrumentKey) (*instrument.Instrument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.instruments[key]
	return i, ok
}

// DelInstrument removes an owned instrument.
func (s *Shard) DelInstrument(key wire.InstrumentKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.instruments, key)
}

// Instruments returns every instrument this shard owns, unordered.
func (s *Shard) Instruments() []*instrument.Instrument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*instrument.Instrument, 0, len(s.instruments))
	for _, i := range s.instruments {
		out = append(out, i)
	}
	return out
}

// AddOrderBook registers ob as owned by this shard.
func (s *Shard) AddOrderBook(ob *book.OrderBook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.books[ob.Key]; exists {
		return ErrOrderBookExists
	}
	s.books[ob.Key] = ob
	return nil
}

// OrderBook looks up an owned order book by key.
func (s *Shard) OrderBook(key wire.OrderBookKey) (*book.OrderBook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ob, ok := s.books[key]
	return ob, ok
}

// DelOrderBook removes an owned order book.
func (s *Shard) DelOrderBook(key wire.OrderBookKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.books, key)
}

// OrderBooks returns every order book this shard owns, unordered.
func (s *Shard) OrderBooks() []*book.OrderBook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*book.OrderBook, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	return out
}
