// Package venue implements Venue and VenueShard: per-venue metadata,
// tick-size tables, segment/session state, and the scoped order-ID index
// each shard uses to resolve a feed order ID back to a live order (spec
// section 4.5).
//
// Grounded in the original's MxMDVenue/MxMDVenueShard (djnz00/z-mx,
// mxmd/src/MxMD.hh) for the shape, written in the mutex-guarded-map idiom
// the teacher uses for its own symbol tables (internal/symbol_map.go).
package venue

import (
	"sync"

	"github.com/nimblemarkets/mdbook/book"
	"github.com/nimblemarkets/mdbook/wire"
)

// Segment is a venue's per-segment trading-session record (spec 4.5:
// "tradingSession(segment) updates the venue's per-segment state under a
// lock and broadcasts a session change").
type Segment struct {
	ID      wire.ID8
	Session uint8
	Stamp   int64
	SeqID   uint64
}

// Venue is a feed's metadata: its order-ID scoping strategy, tick-size
// tables, and current segment/session map.
type Venue struct {
	ID    wire.ID8
	Feed  string
	Scope OrderIDScope
	Flags uint32

	// OnTradingSession, when set, is invoked after a segment's state is
	// updated so a containing Library can broadcast the change.
	OnTradingSession func(v *Venue, seg Segment)

	mu           sync.Mutex
	segments     map[wire.ID8]Segment
	tickSizeTbls map[string]*book.TickSizeTable

	sharedIndex OrderIndex // used only when Scope == ScopeVenue
	shardsMu    sync.Mutex
	shards      map[int]*VenueShard
}

// New constructs a Venue with the given order-ID scope.
func New(id wire.ID8, feed string, scope OrderIDScope) *Venue {
	v := &Venue{
		ID:           id,
		Feed:         feed,
		Scope:        scope,
		segments:     make(map[wire.ID8]Segment),
		tickSizeTbls: make(map[string]*book.TickSizeTable),
		shards:       make(map[int]*VenueShard),
	}
	if scope == ScopeVenue {
		v.sharedIndex = NewOrderIndex(ScopeVenue)
	}
	return v
}

// Shard returns this venue's VenueShard for shardID, creating it (and, for
// ScopeOrderBook/ScopeOBSide, its own private index) on first use. Exactly
// one VenueShard exists per Shard (spec 3: data model invariant).
func (v *Venue) Shard(shardID int) *VenueShard {
	v.shardsMu.Lock()
	defer v.shardsMu.Unlock()
	if vs, ok := v.shards[shardID]; ok {
		return vs
	}
	idx := v.sharedIndex
	if idx == nil {
		idx = NewOrderIndex(v.Scope)
	}
	vs := &VenueShard{ShardID: shardID, Venue: v, index: idx}
	v.shards[shardID] = vs
	return vs
}

// AddTickSizeTable registers a TickSizeTable under its ID.
func (v *Venue) AddTickSizeTable(t *book.TickSizeTable) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, exists := v.tickSizeTbls[t.ID]; exists {
		return ErrTickSizeTblExists
	}
	v.tickSizeTbls[t.ID] = t
	return nil
}

// TickSizeTable looks up a registered table by ID.
func (v *Venue) TickSizeTable(id string) (*book.TickSizeTable, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.tickSizeTbls[id]
	return t, ok
}

// TradingSession updates the per-segment session record under the venue's
// lock and fires OnTradingSession.
func (v *Venue) TradingSession(seg Segment) {
	v.mu.Lock()
	v.segments[seg.ID] = seg
	v.mu.Unlock()
	if v.OnTradingSession != nil {
		v.OnTradingSession(v, seg)
	}
}

// Segment returns the current session record for segment id.
func (v *Venue) Segment(id wire.ID8) (Segment, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s, ok := v.segments[id]
	return s, ok
}

// VenueShard is a venue's per-shard order-ID lookup table (spec 3: "holds
// the per-shard order-ID index (not owning the orders)").
type VenueShard struct {
	ShardID int
	Venue   *Venue

	index OrderIndex
}

func (vs *VenueShard) AddOrder(bk wire.OrderBookKey, side book.Side, orderID string, o *book.Order) {
	vs.index.Add(bk, side, orderID, o)
}

func (vs *VenueShard) FindOrder(bk wire.OrderBookKey, side book.Side, orderID string) (*book.Order, bool) {
	return vs.index.Find(bk, side, orderID)
}

func (vs *VenueShard) RemoveOrder(bk wire.OrderBookKey, side book.Side, orderID string) {
	vs.index.Remove(bk, side, orderID)
}
