package subscriber

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nimblemarkets/mdbook/wire"
)

// Subscriber owns one Link per configured channel and runs them
// concurrently, replaying every reassembled record against apply (spec
// section 5: "a process subscribes to one or more channels; each channel
// is an independent link").
type Subscriber struct {
	tuning Tuning
	logger *slog.Logger
	apply  ApplyFunc

	mu    sync.RWMutex
	links map[string]*Link
}

// New constructs a Subscriber. apply is invoked once per record, already
// ordered, from whichever link's goroutine produced it — callers whose
// apply touches shared state (e.g. *library.Library.Apply) must be safe
// for concurrent use across links, which library.Library already is by
// construction (shard-dispatch, spec section 4.6).
func New(tuning Tuning, logger *slog.Logger, apply ApplyFunc) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{
		tuning: tuning,
		logger: logger,
		apply:  apply,
		links:  make(map[string]*Link),
	}
}

// AddChannel registers a link from one channel CSV row. It does not start
// the link; call Run to start all registered, enabled links.
func (s *Subscriber) AddChannel(cfg LinkConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[cfg.ID] = NewLink(cfg, s.tuning, s.logger.With("link", cfg.ID), s.apply)
}

// Run starts every enabled link and blocks until ctx is done, at which
// point all links are given a chance to tear down before Run returns.
func (s *Subscriber) Run(ctx context.Context) error {
	s.mu.RLock()
	if len(s.links) == 0 {
		s.mu.RUnlock()
		return ErrNoChannels
	}
	links := make([]*Link, 0, len(s.links))
	for _, l := range s.links {
		if l.cfg.Enabled {
			links = append(links, l)
		}
	}
	s.mu.RUnlock()

	if len(links) == 0 {
		return ErrNoChannels
	}

	var wg sync.WaitGroup
	for _, l := range links {
		wg.Add(1)
		go func(l *Link) {
			defer wg.Done()
			l.Run(ctx)
		}(l)
	}
	wg.Wait()
	return ctx.Err()
}

// Link returns the named link, for diag's subscriber.status/resend
// commands (spec section 6).
func (s *Subscriber) Link(id string) (*Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.links[id]
	return l, ok
}

// Links returns every registered link, in CSV row order is not
// guaranteed since links are keyed by ID in a map; callers that need a
// stable order should sort by LinkStatus.ID.
func (s *Subscriber) Links() []*Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Link, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l)
	}
	return out
}

// LinkStatus is the snapshot reported by subscriber.status (spec section
// 6): per link, its configured endpoints, credentials, engine state,
// reconnect count, and Rx sequencing/queue depth.
type LinkStatus struct {
	ID    string
	State string

	TCPAddr     string
	TCPAddr2    string
	UDPAddr     string
	UDPAddr2    string
	ResendAddr  string
	ResendAddr2 string
	TCPUsername string

	TCPSub string
	UDPSub string

	Reconnects int
	UseAlt     bool

	NextSeq    uint64
	RxSeq      uint64
	TxSeq      uint64
	QueueLen   int
	QueueTotal uint64
	GapSeqNo   uint64
	GapCount   uint32
	HasGap     bool
}

// Status reports l's current diagnostic snapshot.
func (l *Link) Status() LinkStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := LinkStatus{
		ID:          l.ID,
		State:       l.state.String(),
		TCPAddr:     l.cfg.TCPAddr,
		TCPAddr2:    l.cfg.TCPAddr2,
		UDPAddr:     l.cfg.UDPAddr,
		UDPAddr2:    l.cfg.UDPAddr2,
		ResendAddr:  l.cfg.ResendAddr,
		ResendAddr2: l.cfg.ResendAddr2,
		TCPUsername: l.cfg.TCPUsername,
		TCPSub:      l.tcpSub.String(),
		UDPSub:      l.udpSub.String(),
		Reconnects:  l.reconnects,
		UseAlt:      l.useAlt,
		NextSeq:     l.nextSeq,
		RxSeq:       l.rxSeq,
		TxSeq:       l.txSeq,
		QueueLen:    len(l.queue),
		QueueTotal:  l.queuedTotal,
	}
	if l.autoGap != nil {
		st.HasGap = true
		st.GapSeqNo = l.autoGap.seqNo
		st.GapCount = l.autoGap.count
	}
	return st
}

// LibraryApply adapts a method with this exact shape (satisfied by
// *library.Library.Apply) into an ApplyFunc, spelled out so callers don't
// need a direct import of the wire package just to wire the two together.
func LibraryApply(fn func(hdr wire.Hdr, body []byte) error) ApplyFunc {
	return ApplyFunc(fn)
}
