package library

import (
	"context"
	"testing"

	"github.com/nimblemarkets/mdbook/book"
	"github.com/nimblemarkets/mdbook/instrument"
	"github.com/nimblemarkets/mdbook/shard"
	"github.com/nimblemarkets/mdbook/venue"
	"github.com/nimblemarkets/mdbook/wire"
)

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	shards := []*shard.Shard{
		shard.New(0, "t0", 16, nil),
		shard.New(1, "t1", 16, nil),
	}
	t.Cleanup(func() {
		for _, s := range shards {
			s.Stop()
		}
	})
	return New(shards, nil, nil, nil)
}

func TestAddVenue(t *testing.T) {
	l := newTestLibrary(t)
	v := venue.New(wire.NewID8("XNYS"), "feedA", venue.ScopeVenue)
	if err := l.AddVenue(v); err != nil {
		t.Fatalf("AddVenue: %v", err)
	}
	if err := l.AddVenue(v); err != ErrVenueExists {
		t.Fatalf("expected ErrVenueExists, got %v", err)
	}
	if _, ok := l.Venue(wire.NewID8("XNYS")); !ok {
		t.Fatal("venue not indexed")
	}
}

func TestAddInstrumentAutoCreatesUnderlying(t *testing.T) {
	l := newTestLibrary(t)

	derivKey := wire.InstrumentKey{Venue: wire.NewID8("XNYS"), Segment: wire.NewID8("OPT"), Instrument: wire.NewID8("OPT1")}
	underKey := wire.InstrumentKey{Venue: wire.NewID8("XNYS"), Segment: wire.NewID8("EQ"), Instrument: wire.NewID8("ACME")}

	deriv := instrument.New(derivKey, instrument.RefData{Underlying: underKey})
	if err := l.AddInstrument(deriv); err != nil {
		t.Fatalf("AddInstrument: %v", err)
	}

	under, ok := l.Instrument(underKey)
	if !ok {
		t.Fatal("underlying was not auto-created")
	}
	got, ok := deriv.Underlying()
	if !ok || got != under {
		t.Fatalf("deriv.Underlying() = %+v, %v, want underlying", got, ok)
	}
	if _, ok := under.Derivative(instrument.DerivKey{}); !ok {
		t.Fatal("underlying does not index deriv back")
	}
}

func TestAddOrderBookIndexesGlobally(t *testing.T) {
	l := newTestLibrary(t)

	instKey := wire.InstrumentKey{Venue: wire.NewID8("XNYS"), Segment: wire.NewID8("EQ"), Instrument: wire.NewID8("ACME")}
	inst := instrument.New(instKey, instrument.RefData{PxNDP: 2, QtyNDP: 0})
	if err := l.AddInstrument(inst); err != nil {
		t.Fatalf("AddInstrument: %v", err)
	}

	obKey := wire.OrderBookKey{Venue: instKey.Venue, Segment: instKey.Segment}
	ob := book.NewOrderBook(obKey, 2, 0, false, l.BookHandler())
	if err := l.AddOrderBook(inst, obKey, ob); err != nil {
		t.Fatalf("AddOrderBook: %v", err)
	}
	if err := l.AddOrderBook(inst, obKey, ob); err != instrument.ErrOrderBookExists {
		t.Fatalf("expected instrument.ErrOrderBookExists, got %v", err)
	}

	got, ok := l.OrderBook(obKey)
	if !ok || got != ob {
		t.Fatalf("OrderBook lookup = %+v, %v", got, ok)
	}

	l.DelOrderBook(inst, obKey, 1)
	if _, ok := l.OrderBook(obKey); ok {
		t.Fatal("order book still indexed after DelOrderBook")
	}
}

func TestAddOrderBookWiresVenueScopedOrderIndex(t *testing.T) {
	l := newTestLibrary(t)

	v := venue.New(wire.NewID8("XNYS"), "feedA", venue.ScopeVenue)
	if err := l.AddVenue(v); err != nil {
		t.Fatalf("AddVenue: %v", err)
	}

	inst1Key := wire.InstrumentKey{Venue: wire.NewID8("XNYS"), Segment: wire.NewID8("EQ1"), Instrument: wire.NewID8("ACME1")}
	inst2Key := wire.InstrumentKey{Venue: wire.NewID8("XNYS"), Segment: wire.NewID8("EQ2"), Instrument: wire.NewID8("ACME2")}
	inst1 := instrument.New(inst1Key, instrument.RefData{PxNDP: 2, QtyNDP: 0})
	inst2 := instrument.New(inst2Key, instrument.RefData{PxNDP: 2, QtyNDP: 0})
	if err := l.AddInstrument(inst1); err != nil {
		t.Fatalf("AddInstrument inst1: %v", err)
	}
	if err := l.AddInstrument(inst2); err != nil {
		t.Fatalf("AddInstrument inst2: %v", err)
	}

	ob1Key := wire.OrderBookKey{Venue: inst1Key.Venue, Segment: inst1Key.Segment}
	ob2Key := wire.OrderBookKey{Venue: inst2Key.Venue, Segment: inst2Key.Segment}
	ob1 := book.NewOrderBook(ob1Key, 2, 0, false, l.BookHandler())
	ob2 := book.NewOrderBook(ob2Key, 2, 0, false, l.BookHandler())
	if err := l.AddOrderBook(inst1, ob1Key, ob1); err != nil {
		t.Fatalf("AddOrderBook ob1: %v", err)
	}
	if err := l.AddOrderBook(inst2, ob2Key, ob2); err != nil {
		t.Fatalf("AddOrderBook ob2: %v", err)
	}

	if _, err := ob1.AddOrder("O1", book.Buy, 1, 10000, 100, 0, 1, true); err != nil {
		t.Fatalf("AddOrder on ob1: %v", err)
	}
	// Same order ID reused on a different book of the same ScopeVenue venue
	// must be rejected: the venue's single shared index already holds "O1".
	if _, err := ob2.AddOrder("O1", book.Buy, 1, 10000, 100, 0, 1, true); err != book.ErrOrderExists {
		t.Fatalf("expected ErrOrderExists for cross-book ScopeVenue id reuse, got %v", err)
	}

	if _, err := ob1.CancelOrder("O1", 2, true); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	// Once cancelled, the id is free to reuse anywhere in the venue.
	if _, err := ob2.AddOrder("O1", book.Buy, 1, 10000, 100, 0, 1, true); err != nil {
		t.Fatalf("expected id reuse to succeed after cancel, got %v", err)
	}
}

func TestUpdateInstrumentReindexesSymbolsUnderNewKeys(t *testing.T) {
	l := newTestLibrary(t)

	instKey := wire.InstrumentKey{Venue: wire.NewID8("XNYS"), Segment: wire.NewID8("EQ"), Instrument: wire.NewID8("ACME")}
	oldSym := wire.SymKey{ID: "US0000000001", Src: wire.SymSrc_ISIN}
	newSym := wire.SymKey{ID: "US0000000002", Src: wire.SymSrc_ISIN}

	inst := instrument.New(instKey, instrument.RefData{PxNDP: 2, QtyNDP: 0, Symbols: []wire.SymKey{oldSym}})
	if err := l.AddInstrument(inst); err != nil {
		t.Fatalf("AddInstrument: %v", err)
	}
	if got, ok := l.InstrumentBySymbol(oldSym); !ok || got != inst {
		t.Fatalf("expected instrument indexed under oldSym")
	}

	if err := inst.Update(instrument.RefData{PxNDP: 2, QtyNDP: 0, Symbols: []wire.SymKey{newSym}}, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, ok := l.InstrumentBySymbol(oldSym); ok {
		t.Fatal("expected oldSym dropped from symbolIndex after re-symbol")
	}
	if got, ok := l.InstrumentBySymbol(newSym); !ok || got != inst {
		t.Fatal("expected instrument re-indexed under newSym after re-symbol")
	}
}

func TestLoadedDrainsShardsBeforeMarkingReady(t *testing.T) {
	l := newTestLibrary(t)
	venueID := wire.NewID8("XNYS")
	if l.IsLoaded(venueID) {
		t.Fatal("expected not loaded before Loaded() is called")
	}
	if err := l.Loaded(context.Background(), venueID, 1); err != nil {
		t.Fatalf("Loaded: %v", err)
	}
	if !l.IsLoaded(venueID) {
		t.Fatal("expected loaded after Loaded()")
	}
}

func TestAllInstrumentsFansOutAcrossShards(t *testing.T) {
	l := newTestLibrary(t)
	for i := 0; i < 4; i++ {
		key := wire.InstrumentKey{Venue: wire.NewID8("XNYS"), Segment: wire.NewID8("EQ"), Instrument: wire.NewID8(string(rune('A' + i)))}
		if err := l.AddInstrument(instrument.New(key, instrument.RefData{})); err != nil {
			t.Fatalf("AddInstrument %d: %v", i, err)
		}
	}
	got, err := l.AllInstruments(context.Background())
	if err != nil {
		t.Fatalf("AllInstruments: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d instruments, want 4", len(got))
	}
}
