// Package library implements Library: the registry tying shards, venues,
// instruments and order books together into the global indices a
// subscriber or diagnostic tool queries, plus the broadcast emission
// protocol that serializes every state-changing mutation onto a wire.Writer
// (spec section 4.7/4.8).
//
// Grounded in the teacher's top-level client/registry idiom
// (github.com/NimbleMarkets/dbn-go's DbnHistoricalClient: a struct holding
// shared state behind a mutex, with methods that mutate it and report
// results), generalized here from a single HTTP client into a mutex-guarded
// multi-shard registry.
package library

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nimblemarkets/mdbook/book"
	"github.com/nimblemarkets/mdbook/instrument"
	"github.com/nimblemarkets/mdbook/shard"
	"github.com/nimblemarkets/mdbook/venue"
	"github.com/nimblemarkets/mdbook/wire"
)

// ShardFunc maps an instrument key to the index of the shard that owns it
// (spec 4.6: "every mutating library operation on an instrument or book
// MUST execute on that instrument's shard").
type ShardFunc func(wire.InstrumentKey) int

// DefaultShardFunc hashes an instrument's ID bytes to spread instruments
// evenly across n shards.
func DefaultShardFunc(n int) ShardFunc {
	return func(key wire.InstrumentKey) int {
		var h uint32 = 2166136261
		for _, b := range key.Instrument {
			h = (h ^ uint32(b)) * 16777619
		}
		return int(h % uint32(n))
	}
}

// Library owns a fixed set of shards and indexes everything trading across
// them. The library-level mutex below guards only the container maps
// (add/delete instrument, add/delete book, venue/feed sets); book content
// mutations stay on their owning shard's goroutine and never take this lock
// (spec 4.7).
type Library struct {
	Logger *slog.Logger

	shards    []*shard.Shard
	shardFunc ShardFunc

	writeMu sync.Mutex
	writer  *wire.Writer
	nsecFn  func() uint32

	mu       sync.RWMutex
	venues   map[wire.ID8]*venue.Venue
	feeds    map[string]struct{}
	ready    map[wire.ID8]bool
	venueMap map[wire.InstrumentKey]wire.InstrumentKey // derivative instrument key -> its underlying's key, recorded by linkUnderlying

	allInstruments map[wire.InstrumentKey]*instrument.Instrument
	allOrderBooks  map[wire.OrderBookKey]*book.OrderBook
	bookShard      map[wire.OrderBookKey]*shard.Shard // owning shard, for Apply's subscriber-side dispatch
	symbolIndex    map[wire.SymKey]*instrument.Instrument
}

// New constructs a Library over shards. w may be nil, in which case no
// broadcast frames are emitted (useful for tests and for a library run
// purely as an in-process book cache). nsecFn supplies the nanosecond stamp
// for each emitted frame; a nil nsecFn stamps every frame 0.
func New(shards []*shard.Shard, shardFunc ShardFunc, w *wire.Writer, nsecFn func() uint32) *Library {
	if shardFunc == nil {
		shardFunc = DefaultShardFunc(len(shards))
	}
	if nsecFn == nil {
		nsecFn = func() uint32 { return 0 }
	}
	return &Library{
		Logger:         slog.Default(),
		shards:         shards,
		shardFunc:      shardFunc,
		writer:         w,
		nsecFn:         nsecFn,
		venues:         make(map[wire.ID8]*venue.Venue),
		feeds:          make(map[string]struct{}),
		ready:          make(map[wire.ID8]bool),
		venueMap:       make(map[wire.InstrumentKey]wire.InstrumentKey),
		allInstruments: make(map[wire.InstrumentKey]*instrument.Instrument),
		allOrderBooks:  make(map[wire.OrderBookKey]*book.OrderBook),
		bookShard:      make(map[wire.OrderBookKey]*shard.Shard),
		symbolIndex:    make(map[wire.SymKey]*instrument.Instrument),
	}
}

// BookHandler returns the shared handler every OrderBook built under this
// library should install at construction, so its state-changing methods
// funnel into the broadcast emission protocol (spec 4.8). One instance is
// safe to share across every book: each callback receives the originating
// *book.OrderBook and reads its Key from there.
func (l *Library) BookHandler() *book.Handler {
	return &book.Handler{
		OnAddOrder:        l.onAddOrder,
		OnModifyOrder:     l.onModifyOrder,
		OnCancelOrder:     l.onCancelOrder,
		OnPxLevel:         l.onPxLevel,
		OnL1:              l.onL1,
		OnL2:              l.onL2,
		OnReset:           l.onReset,
		OnMissedUpdates:   l.onMissedUpdates,
		OnMissedOBUpdates: l.onMissedOBUpdates,
	}
}

func (l *Library) shardForKey(key wire.InstrumentKey) *shard.Shard {
	return l.shards[l.shardFunc(key)%len(l.shards)]
}

// AddVenue registers v, wires its TradingSession hook, and broadcasts its
// arrival.
func (l *Library) AddVenue(v *venue.Venue) error {
	l.mu.Lock()
	if _, exists := l.venues[v.ID]; exists {
		l.mu.Unlock()
		return ErrVenueExists
	}
	l.venues[v.ID] = v
	l.feeds[v.Feed] = struct{}{}
	l.mu.Unlock()

	v.OnTradingSession = l.onTradingSession

	var feedBytes [16]byte
	copy(feedBytes[:], v.Feed)
	l.emit(&wire.AddVenueBody{Venue: v.ID, Feed: feedBytes, Scope: uint8(v.Scope), Flags: v.Flags})
	return nil
}

// Venue looks up a registered venue by ID.
func (l *Library) Venue(id wire.ID8) (*venue.Venue, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.venues[id]
	return v, ok
}

// Venues returns every registered venue, unordered.
func (l *Library) Venues() []*venue.Venue {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*venue.Venue, 0, len(l.venues))
	for _, v := range l.venues {
		out = append(out, v)
	}
	return out
}

// AddInstrument assigns inst to its shard (spec 4.6), wires its
// RegisterBook/OnRefDataUpdate hooks so later book/refdata mutations stay
// indexed, adds it to the global indices, resolves or auto-creates its
// underlying link (spec 4.4), and broadcasts its arrival.
func (l *Library) AddInstrument(inst *instrument.Instrument) error {
	inst.RegisterBook = l.registerBook
	inst.OnRefDataUpdate = l.onRefDataUpdate

	sh := l.shardForKey(inst.Key)
	var addErr error
	sh.Invoke(func() { addErr = sh.AddInstrument(inst) })
	if addErr != nil {
		return addErr
	}

	l.mu.Lock()
	l.allInstruments[inst.Key] = inst
	for _, sym := range inst.RefData.Symbols {
		l.symbolIndex[sym] = inst
	}
	l.mu.Unlock()

	l.linkUnderlying(inst)

	l.emit(&wire.AddInstrumentBody{
		Venue:      inst.Key.Venue,
		Segment:    inst.Key.Segment,
		Instrument: inst.Key.Instrument,
		PxNDP:      uint8(inst.RefData.PxNDP),
		QtyNDP:     uint8(inst.RefData.QtyNDP),
		Flags:      inst.RefData.Flags,
	})
	return nil
}

// linkUnderlying resolves inst's declared underlying, auto-creating a
// placeholder Instrument if it isn't yet known (spec 4.4: "the library
// auto-creates a placeholder instrument if the underlying is not yet
// known, then links the two").
func (l *Library) linkUnderlying(inst *instrument.Instrument) {
	if !inst.RefData.HasUnderlying() {
		return
	}
	underKey := inst.RefData.Underlying

	l.mu.Lock()
	l.venueMap[inst.Key] = underKey
	under, ok := l.allInstruments[underKey]
	l.mu.Unlock()

	if !ok {
		under = instrument.New(underKey, instrument.RefData{})
		if err := l.AddInstrument(under); err != nil {
			l.Logger.Error("library: auto-create placeholder underlying failed", "key", underKey, "err", err)
			return
		}
	}
	inst.LinkUnderlying(under)
}

// Instrument looks up a globally-indexed instrument by key.
func (l *Library) Instrument(key wire.InstrumentKey) (*instrument.Instrument, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.allInstruments[key]
	return i, ok
}

// InstrumentBySymbol looks up a globally-indexed instrument by symbology key.
func (l *Library) InstrumentBySymbol(sym wire.SymKey) (*instrument.Instrument, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.symbolIndex[sym]
	return i, ok
}

// AddOrderBook attaches ob to inst on inst's owning shard, registering it in
// the global index via Instrument.AddOrderBook's RegisterBook hook, and
// wires ob's order-ID lookups to its venue's scoped VenueShard index (spec
// 4.5) so AddOrder/CancelOrder honor whichever of ScopeVenue/ScopeOrderBook/
// ScopeOBSide the venue asserts instead of only the book's own local map.
func (l *Library) AddOrderBook(inst *instrument.Instrument, key wire.OrderBookKey, ob *book.OrderBook) error {
	sh := l.shardForKey(inst.Key)
	l.mu.RLock()
	v, ok := l.venues[key.Venue]
	l.mu.RUnlock()
	if ok {
		ob.SetOrderIndex(v.Shard(sh.ID))
	}
	var err error
	sh.Invoke(func() {
		if err = inst.AddOrderBook(key, ob); err != nil {
			return
		}
		err = sh.AddOrderBook(ob)
	})
	return err
}

// registerBook is Instrument.RegisterBook: invoked synchronously, already
// on inst's shard, by Instrument.AddOrderBook.
func (l *Library) registerBook(inst *instrument.Instrument, ob *book.OrderBook) error {
	l.mu.Lock()
	if _, exists := l.allOrderBooks[ob.Key]; exists {
		l.mu.Unlock()
		return ErrOrderBookExists
	}
	l.allOrderBooks[ob.Key] = ob
	l.bookShard[ob.Key] = l.shardForKey(inst.Key)
	l.mu.Unlock()

	l.emit(&wire.AddOrderBookBody{
		Venue:      ob.Key.Venue,
		Segment:    ob.Key.Segment,
		Instrument: inst.Key.Instrument,
		PxNDP:      uint8(ob.L1.PxNDP),
		QtyNDP:     uint8(ob.L1.QtyNDP),
		Flags:      0,
	})
	return nil
}

// OrderBook looks up a globally-indexed order book by key.
func (l *Library) OrderBook(key wire.OrderBookKey) (*book.OrderBook, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ob, ok := l.allOrderBooks[key]
	return ob, ok
}

// DelOrderBook removes ob from inst and the global index, on inst's shard.
func (l *Library) DelOrderBook(inst *instrument.Instrument, key wire.OrderBookKey, t int64) {
	sh := l.shardForKey(inst.Key)
	sh.Invoke(func() {
		inst.DelOrderBook(key)
	})
	l.mu.Lock()
	delete(l.allOrderBooks, key)
	delete(l.bookShard, key)
	l.mu.Unlock()
	l.emit(&wire.DelOrderBookBody{Venue: key.Venue, Segment: key.Segment, TransactTime: t})
}

// onRefDataUpdate is Instrument.OnRefDataUpdate: keeps the symbol index
// consistent with a ref-data change by dropping the old symbols and
// re-indexing under the new ones, so a re-symbol (e.g. a RIC change)
// doesn't leave symbolIndex pointing at stale keys or missing the new
// ones (spec 4.4: "update(refData, t, fn) ... updates symbology indices
// in the library").
func (l *Library) onRefDataUpdate(inst *instrument.Instrument, old, new instrument.RefData) {
	l.mu.Lock()
	for _, sym := range old.Symbols {
		delete(l.symbolIndex, sym)
	}
	for _, sym := range new.Symbols {
		l.symbolIndex[sym] = inst
	}
	l.mu.Unlock()
}

// onTradingSession is Venue.OnTradingSession: broadcasts a session change.
func (l *Library) onTradingSession(v *venue.Venue, seg venue.Segment) {
	l.emit(&wire.TradingSessionBody{
		Venue:   v.ID,
		Segment: seg.ID,
		Stamp:   seg.Stamp,
		Session: seg.Session,
		ID:      seg.SeqID,
	})
}

// AddTickSizeTable registers t on v and broadcasts it.
func (l *Library) AddTickSizeTable(v *venue.Venue, t *book.TickSizeTable) error {
	if err := v.AddTickSizeTable(t); err != nil {
		return err
	}
	var tblID [16]byte
	copy(tblID[:], t.ID)
	l.emit(&wire.AddTickSizeTblBody{Venue: v.ID, TableID: tblID})
	return nil
}

// Loaded synchronously drains every shard's task queue — so any mutation
// enqueued before this call has completed — then marks venue's reference
// data ready and broadcasts refDataLoaded (spec 4.7: "loaded(venue)
// synchronously drains all shard queues before marking a venue's reference
// data ready").
func (l *Library) Loaded(ctx context.Context, venueID wire.ID8, stamp int64) error {
	if err := shard.Sync(ctx, l.shards, func(*shard.Shard) {}); err != nil {
		return err
	}
	l.mu.Lock()
	l.ready[venueID] = true
	l.mu.Unlock()
	l.emit(&wire.RefDataLoadedBody{Venue: venueID, Stamp: stamp})
	return nil
}

// IsLoaded reports whether Loaded has completed for venueID.
func (l *Library) IsLoaded(venueID wire.ID8) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ready[venueID]
}

// AllInstruments fans a read-only snapshot across every shard, serially
// (spec 4.6: "Cross-shard reads ... fan out via a per-shard invocation with
// a synchronizing semaphore; the iteration is serial across shards").
func (l *Library) AllInstruments(ctx context.Context) ([]*instrument.Instrument, error) {
	var out []*instrument.Instrument
	err := shard.Sync(ctx, l.shards, func(s *shard.Shard) {
		out = append(out, s.Instruments()...)
	})
	return out, err
}

// AllOrderBooks fans a read-only snapshot across every shard, serially.
func (l *Library) AllOrderBooks(ctx context.Context) ([]*book.OrderBook, error) {
	var out []*book.OrderBook
	err := shard.Sync(ctx, l.shards, func(s *shard.Shard) {
		out = append(out, s.OrderBooks()...)
	})
	return out, err
}

func (l *Library) emit(body wire.Body) {
	if l.writer == nil {
		return
	}
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	if _, err := l.writer.Write(l.nsecFn(), body); err != nil {
		l.Logger.Error("library: broadcast emit failed", "type", body.RType(), "err", err)
	}
}
