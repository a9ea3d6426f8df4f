package library

import (
	"errors"
	"testing"

	"github.com/nimblemarkets/mdbook/book"
	"github.com/nimblemarkets/mdbook/instrument"
	"github.com/nimblemarkets/mdbook/wire"
)

func newAppliedTestBook(t *testing.T) (*Library, wire.OrderBookKey) {
	t.Helper()
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
	return l, obKey
}

func TestApplyAddOrderMutatesTheRightBook(t *testing.T) {
	l, obKey := newAppliedTestBook(t)

	body := &wire.AddOrderBody{
		Venue:        obKey.Venue,
		Segment:      obKey.Segment,
		OrderID:      wire.NewOrderID("o1"),
		TransactTime: 1,
		Side:         uint8(book.Buy),
		Rank:         1,
		Price:        10050,
		Qty:          100,
	}
	buf := make([]byte, body.Size())
	body.Encode(buf)

	hdr := wire.Hdr{SeqNo: 1, Type: wire.RecordType_AddOrder, BodyLen: uint16(len(buf))}
	if err := l.Apply(hdr, buf); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	ob, _ := l.OrderBook(obKey)
	best := ob.Bids().Best()
	if best == nil || best.Price != 10050 || best.Qty != 100 {
		t.Fatalf("unexpected best bid after Apply: %+v", best)
	}
}

func TestApplyUnknownOrderBookErrors(t *testing.T) {
	l := newTestLibrary(t)
	body := &wire.CancelOrderBody{Venue: wire.NewID8("NOPE"), Segment: wire.NewID8("EQ"), OrderID: wire.NewOrderID("o1")}
	buf := make([]byte, body.Size())
	body.Encode(buf)

	hdr := wire.Hdr{Type: wire.RecordType_CancelOrder, BodyLen: uint16(len(buf))}
	if err := l.Apply(hdr, buf); err == nil {
		t.Fatal("expected error applying a record against an unindexed book")
	}
}

func TestApplyRejectsLinkProtocolRecordTypes(t *testing.T) {
	l := newTestLibrary(t)
	if err := l.Apply(wire.Hdr{Type: wire.RecordType_LoginAck}, nil); !errors.Is(err, ErrUnsupportedApply) {
		t.Fatalf("Apply(LoginAck) err = %v, want %v", err, ErrUnsupportedApply)
	}
}
