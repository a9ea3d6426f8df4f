package book

import (
	"testing"

	"github.com/nimblemarkets/mdbook/fixedpoint"
	"github.com/nimblemarkets/mdbook/wire"
)

func newTestBook() *OrderBook {
	key := wire.OrderBookKey{Venue: wire.NewID8("XNYS"), Segment: wire.NewID8("EQ")}
	return NewOrderBook(key, 2, 0, false, &Handler{})
}

func TestAddModifyCancelOrder(t *testing.T) {
	ob := newTestBook()

	if _, err := ob.AddOrder("o1", Buy, 1, 10050, 100, 0, 1, true); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}
	if _, err := ob.AddOrder("o1", Buy, 1, 10050, 100, 0, 1, true); err != ErrOrderExists {
		t.Fatalf("expected ErrOrderExists, got %v", err)
	}

	best := ob.Bids().Best()
	if best == nil || best.Price != 10050 || best.Qty != 100 {
		t.Fatalf("unexpected best bid: %+v", best)
	}

	if _, err := ob.ModifyOrder("o1", 1, 10050, 50, 0, 2, true); err != nil {
		t.Fatalf("ModifyOrder: %v", err)
	}
	if ob.Bids().Best().Qty != 50 {
		t.Fatalf("expected qty 50 after modify, got %v", ob.Bids().Best().Qty)
	}

	if _, err := ob.CancelOrder("o1", 3, true); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if ob.Bids().Best() != nil {
		t.Fatalf("expected empty book after cancel, got %+v", ob.Bids().Best())
	}
	if _, err := ob.CancelOrder("o1", 4, true); err == nil {
		t.Fatalf("expected error cancelling already-cancelled order")
	}
}

func TestModifyOrderMovesLevel(t *testing.T) {
	ob := newTestBook()
	ob.AddOrder("o1", Buy, 1, 10000, 10, 0, 1, true)
	ob.AddOrder("o2", Buy, 1, 10100, 10, 0, 1, true)

	if ob.Bids().Best().Price != 10100 {
		t.Fatalf("expected best 10100, got %v", ob.Bids().Best().Price)
	}

	ob.ModifyOrder("o1", 1, 10200, 10, 0, 2, true)
	if ob.Bids().Best().Price != 10200 {
		t.Fatalf("expected best 10200 after reprice, got %v", ob.Bids().Best().Price)
	}
	if lvl := ob.Bids().Level(10000); lvl != nil {
		t.Fatalf("expected vacated level 10000 removed, got %+v", lvl)
	}
}

func TestReduceOrderClampsAndDeletes(t *testing.T) {
	ob := newTestBook()
	ob.AddOrder("o1", Sell, 1, 10000, 10, 0, 1, true)

	if _, err := ob.ReduceOrder("o1", 4, 2, true); err != nil {
		t.Fatalf("ReduceOrder: %v", err)
	}
	if ob.Asks().Best().Qty != 6 {
		t.Fatalf("expected qty 6, got %v", ob.Asks().Best().Qty)
	}

	if _, err := ob.ReduceOrder("o1", 100, 3, true); err != nil {
		t.Fatalf("ReduceOrder overdraw: %v", err)
	}
	if ob.Asks().Best() != nil {
		t.Fatalf("expected order removed once reduced to zero")
	}
	if _, ok := ob.Order("o1"); ok {
		t.Fatalf("expected order deleted from index")
	}
}

func TestPxLevelDeltaVsAbsoluteFlagPolicy(t *testing.T) {
	ob := newTestBook()
	lvl := ob.PxLevelUpdate(Buy, 1, false, 10000, 100, 5, 0x1, true)
	if lvl.Qty != 100 || lvl.NOrders != 5 {
		t.Fatalf("unexpected initial level: %+v", lvl)
	}
	if lvl.Flags != 0x1 {
		t.Fatalf("expected flags set on nonzero delta, got %x", lvl.Flags)
	}

	// delta with dQty==0 must AND-mask away only the bits this update names.
	lvl = ob.PxLevelUpdate(Buy, 2, true, 10000, 0, 0, 0x1, true)
	if lvl.Flags != 0 {
		t.Fatalf("expected flag 0x1 cleared on zero-delta update, got %x", lvl.Flags)
	}

	// nonzero delta re-adds (ORs) flags.
	lvl = ob.PxLevelUpdate(Buy, 3, true, 10000, 10, 1, 0x4, true)
	if lvl.Flags != 0x4 {
		t.Fatalf("expected flags OR-added on nonzero delta, got %x", lvl.Flags)
	}
}

func TestPxLevelDrainRemovesLevel(t *testing.T) {
	ob := newTestBook()
	ob.PxLevelUpdate(Buy, 1, false, 10000, 100, 1, 0, true)
	if ob.Bids().Level(10000) == nil {
		t.Fatalf("expected level present")
	}
	ob.PxLevelUpdate(Buy, 2, false, 10000, 0, 0, 0, true)
	if ob.Bids().Level(10000) != nil {
		t.Fatalf("expected level removed after draining to zero")
	}
}

func TestL2DerivesL1(t *testing.T) {
	ob := newTestBook()
	ob.AddOrder("b1", Buy, 1, 10000, 10, 0, 1, true)
	ob.AddOrder("a1", Sell, 1, 10100, 20, 0, 1, true)

	if ob.L1.Bid != 10000 || ob.L1.BidQty != 10 {
		t.Fatalf("unexpected derived bid: %v/%v", ob.L1.Bid, ob.L1.BidQty)
	}
	if ob.L1.Ask != 10100 || ob.L1.AskQty != 20 {
		t.Fatalf("unexpected derived ask: %v/%v", ob.L1.Ask, ob.L1.AskQty)
	}
}

func TestTickDirSequence(t *testing.T) {
	ob := newTestBook()
	u1 := NewL1Update(2, 0)
	u1.Stamp, u1.Last, u1.LastQty = 1, 10000, 10
	ob.UpdateL1(u1)
	if ob.L1.TickDir != TickDirNull {
		t.Fatalf("expected null tick on first print, got %v", ob.L1.TickDir)
	}

	u2 := NewL1Update(2, 0)
	u2.Stamp, u2.Last, u2.LastQty = 2, 10100, 5
	ob.UpdateL1(u2)
	if ob.L1.TickDir != TickDirUp {
		t.Fatalf("expected up tick, got %v", ob.L1.TickDir)
	}

	u3 := NewL1Update(2, 0)
	u3.Stamp, u3.Last, u3.LastQty = 3, 9900, 5
	ob.UpdateL1(u3)
	if ob.L1.TickDir != TickDirDown {
		t.Fatalf("expected down tick, got %v", ob.L1.TickDir)
	}
	if ob.L1.High != 10100 || ob.L1.Low != 9900 {
		t.Fatalf("unexpected high/low: %v/%v", ob.L1.High, ob.L1.Low)
	}
	if ob.L1.AccVolQty != 20 {
		t.Fatalf("expected accumulated qty 20, got %v", ob.L1.AccVolQty)
	}
}

func TestL1MergeLeavesNullAndClearsReset(t *testing.T) {
	ob := newTestBook()
	u1 := NewL1Update(2, 0)
	u1.Stamp, u1.Bid, u1.BidQty = 1, 10000, 5
	ob.UpdateL1(u1)
	if ob.L1.Bid != 10000 {
		t.Fatalf("expected bid assigned, got %v", ob.L1.Bid)
	}

	// An all-Null update leaves the prior bid unchanged.
	u2 := NewL1Update(2, 0)
	u2.Stamp = 2
	ob.UpdateL1(u2)
	if ob.L1.Bid != 10000 {
		t.Fatalf("expected bid unchanged by null update, got %v", ob.L1.Bid)
	}

	// Reset explicitly clears.
	u3 := NewL1Update(2, 0)
	u3.Stamp, u3.Bid = 3, fixedpoint.Reset
	ob.UpdateL1(u3)
	if !ob.L1.Bid.IsNull() {
		t.Fatalf("expected bid cleared by reset, got %v", ob.L1.Bid)
	}
}

func TestUpdateNDPRescalesLevelsOrdersAndL1(t *testing.T) {
	ob := newTestBook()
	ob.AddOrder("o1", Buy, 1, 10050, 100, 0, 1, true)
	u := NewL1Update(2, 0)
	u.Stamp, u.Last, u.LastQty = 1, 10050, 10
	ob.UpdateL1(u)

	seen := map[string]bool{}
	if err := ob.UpdateNDP(4, 2, func(o *Order) { seen[o.ID] = true }); err != nil {
		t.Fatalf("UpdateNDP: %v", err)
	}
	if !seen["o1"] {
		t.Fatalf("expected callback fired for surviving order")
	}
	if got := ob.Bids().Best().Price; got != 1005000 {
		t.Fatalf("expected rescaled price 1005000, got %v", got)
	}
	if got := ob.Bids().Best().Qty; got != 10000 {
		t.Fatalf("expected rescaled qty 10000, got %v", got)
	}
	if ob.L1.Last != 1005000 {
		t.Fatalf("expected rescaled L1 last 1005000, got %v", ob.L1.Last)
	}
	if ob.L1.PxNDP != 4 || ob.L1.QtyNDP != 2 {
		t.Fatalf("unexpected NDPs after migration: %v/%v", ob.L1.PxNDP, ob.L1.QtyNDP)
	}
}

func TestResetDetachesOrdersAndClearsL1(t *testing.T) {
	ob := newTestBook()
	var updated []string
	ob.handler.OnOrderUpdate = func(_ *OrderBook, o *Order) { updated = append(updated, o.ID) }

	ob.AddOrder("o1", Buy, 1, 10000, 10, 0, 1, true)
	ob.AddOrder("o2", Sell, 1, 10100, 10, 0, 1, true)
	u := NewL1Update(2, 0)
	u.Stamp, u.Last, u.LastQty = 1, 10050, 5
	ob.UpdateL1(u)

	ob.Reset(2)

	if len(updated) != 2 {
		t.Fatalf("expected both orders to fire OnOrderUpdate during reset, got %v", updated)
	}
	if ob.Bids().Best() != nil || ob.Asks().Best() != nil {
		t.Fatalf("expected empty book after reset")
	}
	if _, ok := ob.Order("o1"); ok {
		t.Fatalf("expected order index cleared after reset")
	}
	if !ob.L1.Last.IsNull() {
		t.Fatalf("expected L1 cleared after reset, got %v", ob.L1.Last)
	}
}

func TestUniformRankShiftOnAddAndDelete(t *testing.T) {
	key := wire.OrderBookKey{Venue: wire.NewID8("XNAS"), Segment: wire.NewID8("EQ")}
	ob := NewOrderBook(key, 2, 0, true, &Handler{})

	ob.AddOrder("o1", Buy, 1, 10000, 10, 0, 1, true)
	ob.AddOrder("o2", Buy, 1, 10000, 10, 0, 2, true) // same rank, should shift o1

	o1, _ := ob.Order("o1")
	o2, _ := ob.Order("o2")
	if o2.Rank != 1 || o1.Rank != 2 {
		t.Fatalf("expected uniform-rank shift, got o1.Rank=%d o2.Rank=%d", o1.Rank, o2.Rank)
	}

	ob.CancelOrder("o2", 3, true)
	if o1.Rank != 1 {
		t.Fatalf("expected o1 shifted back to rank 1 after delete, got %d", o1.Rank)
	}
}

func TestMatchWalksBestEffort(t *testing.T) {
	ob := newTestBook()
	ob.AddOrder("a1", Sell, 1, 10000, 10, 0, 1, true)
	ob.AddOrder("a2", Sell, 1, 10100, 10, 0, 1, true)
	ob.AddOrder("a3", Sell, 1, 10200, 10, 0, 1, true)

	res := ob.Match(Buy, fixedpoint.Null, 25)
	if res.FilledQty != 25 {
		t.Fatalf("expected filled 25, got %v", res.FilledQty)
	}
	if !res.FullyFilled {
		t.Fatalf("expected requested qty fully satisfied across levels")
	}
	if res.LeavesQty != 0 {
		t.Fatalf("expected no leaves qty, got %v", res.LeavesQty)
	}

	res2 := ob.Match(Buy, fixedpoint.Null, 1000)
	if res2.FilledQty != 30 || res2.LeavesQty != 970 {
		t.Fatalf("expected partial fill exhausting the book, got filled=%v leaves=%v", res2.FilledQty, res2.LeavesQty)
	}
}

func TestMatchRespectsLimitPrice(t *testing.T) {
	ob := newTestBook()
	ob.AddOrder("a1", Sell, 1, 10000, 10, 0, 1, true)
	ob.AddOrder("a2", Sell, 1, 10200, 10, 0, 1, true)

	res := ob.Match(Buy, 10000, 100)
	if res.FilledQty != 10 {
		t.Fatalf("expected only the 10000 level marketable, got filled=%v", res.FilledQty)
	}
}

func TestMatchFillAndLeaveCallbacksExecute(t *testing.T) {
	ob := newTestBook()
	ob.AddOrder("a1", Sell, 1, 10000, 10, 0, 1, true)
	ob.AddOrder("a2", Sell, 1, 10100, 10, 0, 1, true)

	var fills []string
	var leftover, cumAtEnd fixedpoint.Value
	res := ob.Match(Buy, fixedpoint.Null, 15,
		WithFillFunc(func(leaves, cum, px, qty fixedpoint.Value, contra *Order) bool {
			fills = append(fills, contra.ID)
			if leaves == 0 {
				ob.CancelOrder(contra.ID, 2, true)
			} else {
				ob.ReduceOrder(contra.ID, qty, 2, true)
			}
			return true
		}),
		WithLeaveFunc(func(leaves, cum fixedpoint.Value) {
			leftover, cumAtEnd = leaves, cum
		}),
	)

	if res.FilledQty != 15 || res.LeavesQty != 0 {
		t.Fatalf("unexpected match result: %+v", res)
	}
	if len(fills) != 2 || fills[0] != "a1" || fills[1] != "a2" {
		t.Fatalf("expected fillFn called for a1 then a2, got %v", fills)
	}
	if leftover != 0 || cumAtEnd != 15 {
		t.Fatalf("expected leaveFn(0, 15), got (%v, %v)", leftover, cumAtEnd)
	}
	if _, ok := ob.Order("a1"); ok {
		t.Fatalf("expected a1 fully consumed and cancelled")
	}
	a2, ok := ob.Order("a2")
	if !ok || a2.Qty != 5 {
		t.Fatalf("expected a2 reduced to qty=5, got %+v ok=%v", a2, ok)
	}
}

func TestMatchStopsWhenFillFuncReturnsFalse(t *testing.T) {
	ob := newTestBook()
	ob.AddOrder("a1", Sell, 1, 10000, 10, 0, 1, true)
	ob.AddOrder("a2", Sell, 1, 10100, 10, 0, 1, true)

	calls := 0
	res := ob.Match(Buy, fixedpoint.Null, 20, WithFillFunc(func(leaves, cum, px, qty fixedpoint.Value, contra *Order) bool {
		calls++
		return false
	}))

	if calls != 1 {
		t.Fatalf("expected exactly one fillFn call before halt, got %d", calls)
	}
	if res.FilledQty != 10 || res.LeavesQty != 10 {
		t.Fatalf("expected match to stop after first fill, got %+v", res)
	}
}

func TestCombinationDerivesFromLegs(t *testing.T) {
	legKey1 := wire.OrderBookKey{Venue: wire.NewID8("XNYS"), Segment: wire.NewID8("EQ1")}
	legKey2 := wire.OrderBookKey{Venue: wire.NewID8("XNYS"), Segment: wire.NewID8("EQ2")}
	leg1 := NewOrderBook(legKey1, 2, 0, false, &Handler{})
	leg2 := NewOrderBook(legKey2, 2, 0, false, &Handler{})

	comboKey := wire.OrderBookKey{Venue: wire.NewID8("XNYS"), Segment: wire.NewID8("SPRD")}
	combo := NewOrderBook(comboKey, 2, 0, false, &Handler{})
	combo.Legs = []Leg{
		{Book: leg1, Side: Buy, Ratio: 100},
		{Book: leg2, Side: Sell, Ratio: 100},
	}
	leg1.Map(0, combo)
	leg2.Map(1, combo)

	leg1.AddOrder("b1", Buy, 1, 10000, 10, 0, 1, true)
	leg2.AddOrder("a1", Sell, 1, 5000, 10, 0, 1, true) // combo's Sell leg reads leg2's Sell side

	if combo.L1.Bid.IsNull() {
		t.Fatalf("expected combination bid to be derived once both legs quote")
	}
}

func TestOrderNotFoundErrors(t *testing.T) {
	ob := newTestBook()
	if _, err := ob.ModifyOrder("missing", 1, 100, 1, 0, 1, true); err == nil {
		t.Fatalf("expected error modifying missing order")
	}
	if _, err := ob.ReduceOrder("missing", 1, 1, true); err == nil {
		t.Fatalf("expected error reducing missing order")
	}
}
