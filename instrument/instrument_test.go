package instrument

import (
	"testing"

	"github.com/nimblemarkets/mdbook/book"
	"github.com/nimblemarkets/mdbook/wire"
)

func testKey(seg string) wire.OrderBookKey {
	return wire.OrderBookKey{Venue: wire.NewID8("XTKS"), Segment: wire.NewID8(seg)}
}

func TestAddOrderBookInvokesRegisterHook(t *testing.T) {
	inst := New(wire.InstrumentKey{Venue: wire.NewID8("XTKS"), Instrument: wire.NewID8("SYM1")}, RefData{PxNDP: 2})
	var registered []wire.OrderBookKey
	inst.RegisterBook = func(_ *Instrument, ob *book.OrderBook) error {
		registered = append(registered, ob.Key)
		return nil
	}

	ob := book.NewOrderBook(testKey("0"), 2, 0, false, &book.Handler{})
	if err := inst.AddOrderBook(testKey("0"), ob); err != nil {
		t.Fatalf("AddOrderBook: %v", err)
	}
	if len(registered) != 1 || registered[0] != testKey("0") {
		t.Fatalf("expected RegisterBook invoked once with key, got %+v", registered)
	}
	if err := inst.AddOrderBook(testKey("0"), ob); err != ErrOrderBookExists {
		t.Fatalf("expected ErrOrderBookExists, got %v", err)
	}
}

func TestUpdateCascadesNDPChange(t *testing.T) {
	inst := New(wire.InstrumentKey{Venue: wire.NewID8("XTKS"), Instrument: wire.NewID8("SYM1")}, RefData{PxNDP: 2, QtyNDP: 0})
	ob := book.NewOrderBook(testKey("0"), 2, 0, false, &book.Handler{})
	inst.AddOrderBook(testKey("0"), ob)
	ob.AddOrder("o1", book.Buy, 1, 10050, 10, 0, 1, true)

	seen := 0
	if err := inst.Update(RefData{PxNDP: 4, QtyNDP: 0}, func(*book.Order) { seen++ }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if seen != 1 {
		t.Fatalf("expected rescale callback fired once, got %d", seen)
	}
	if got := ob.Bids().Best().Price; got != 1005000 {
		t.Fatalf("expected rescaled price 1005000, got %v", got)
	}
}

func TestUpdateWithoutNDPChangeSkipsRescale(t *testing.T) {
	inst := New(wire.InstrumentKey{Venue: wire.NewID8("XTKS"), Instrument: wire.NewID8("SYM1")}, RefData{PxNDP: 2})
	ob := book.NewOrderBook(testKey("0"), 2, 0, false, &book.Handler{})
	inst.AddOrderBook(testKey("0"), ob)
	ob.AddOrder("o1", book.Buy, 1, 10050, 10, 0, 1, true)

	called := false
	inst.Update(RefData{PxNDP: 2, QtyNDP: 0, Strike: 500}, func(*book.Order) { called = true })
	if called {
		t.Fatalf("expected no rescale callback when NDPs unchanged")
	}
	if got := ob.Bids().Best().Price; got != 10050 {
		t.Fatalf("expected untouched price, got %v", got)
	}
}

func TestUnderlyingDerivativeLinking(t *testing.T) {
	under := New(wire.InstrumentKey{Venue: wire.NewID8("XTKS"), Instrument: wire.NewID8("UND1")}, RefData{})
	fut := New(wire.InstrumentKey{Venue: wire.NewID8("XTKS"), Instrument: wire.NewID8("FUT1")}, RefData{Maturity: wire.NewID8("202603")})

	fut.LinkUnderlying(under)

	u, ok := fut.Underlying()
	if !ok || u != under {
		t.Fatalf("expected fut's underlying to be under")
	}
	d, ok := under.Derivative(DerivKey{Maturity: wire.NewID8("202603")})
	if !ok || d != fut {
		t.Fatalf("expected under to index fut as a derivative")
	}
}

func TestOrderBooksInVenueSortedBySegment(t *testing.T) {
	inst := New(wire.InstrumentKey{Venue: wire.NewID8("XTKS"), Instrument: wire.NewID8("SYM1")}, RefData{PxNDP: 2})
	obB := book.NewOrderBook(testKey("B"), 2, 0, false, &book.Handler{})
	obA := book.NewOrderBook(testKey("A"), 2, 0, false, &book.Handler{})
	inst.AddOrderBook(testKey("B"), obB)
	inst.AddOrderBook(testKey("A"), obA)

	books := inst.OrderBooksInVenue(wire.NewID8("XTKS"))
	if len(books) != 2 || books[0] != obA || books[1] != obB {
		t.Fatalf("expected books sorted by segment A,B")
	}
}
