package book

import "github.com/nimblemarkets/mdbook/fixedpoint"

// PxLevel is a single price level: an aggregate (qty, nOrders, flags) and,
// when the feed provides L3 granularity, the ordered sequence of orders
// resting at that price (spec section 3/4.2).
type PxLevel struct {
	Price   fixedpoint.Value // fixedpoint.Null means the synthetic market level
	Qty     fixedpoint.Value
	NOrders int
	Flags   Flags

	orders []*Order // ordered by Rank ascending

	side *OBSide
}

// IsMarketLevel reports whether this is the synthetic no-limit-price level.
func (l *PxLevel) IsMarketLevel() bool { return l.Price.IsNull() }

// Side returns which side of the book this level belongs to.
func (l *PxLevel) Side() Side { return l.side.side }

// Orders returns the level's resting orders, ordered by rank. The slice
// must not be retained past the next mutation.
func (l *PxLevel) Orders() []*Order { return l.orders }

// updateAbs applies an absolute (qty, nOrders, flags) update, returning the
// deltas (spec 4.2: "Absolute (updateAbs): caller supplies new qty,
// nOrders, flags; the level computes Δqty = new−old, ΔnOrders = new−old").
func (l *PxLevel) updateAbs(qty fixedpoint.Value, nOrders int, flags Flags) (dQty fixedpoint.Value, dNOrders int) {
	dQty = qty - l.Qty
	dNOrders = nOrders - l.NOrders
	l.applyDelta(dQty, dNOrders, flags)
	return dQty, dNOrders
}

// updateDelta applies a delta (Δqty, ΔnOrders, flags) update directly (spec
// 4.2: "Delta (updateDelta): caller supplies the differences").
func (l *PxLevel) updateDelta(dQty fixedpoint.Value, dNOrders int, flags Flags) {
	l.applyDelta(dQty, dNOrders, flags)
}

// applyDelta is the shared core of updateAbs/updateDelta: it applies the
// deltas and the documented flag policy (spec 4.2: "flags are OR-added when
// Δqty≠0, AND-masked away when Δqty==0 — policy chosen to clear stale flags
// only on full drain"; kept as specified, see DESIGN.md open question (a)).
func (l *PxLevel) applyDelta(dQty fixedpoint.Value, dNOrders int, flags Flags) {
	l.Qty += dQty
	l.NOrders += dNOrders
	if dQty != 0 {
		l.Flags |= flags
	} else {
		l.Flags &^= flags
	}
	if l.Qty <= 0 {
		l.Qty = 0
		l.NOrders = 0
	}
}

// addOrder attaches order to this level, inserting it before the first
// order whose Rank is >= its own, and adds its Qty to the level's. If
// uniformRanks is set, every order from the insertion point onward has its
// rank shifted +1, whether or not one held the same rank (spec 4.2).
func (l *PxLevel) addOrder(order *Order, uniformRanks bool) {
	pos := len(l.orders)
	for i, existing := range l.orders {
		if order.Rank <= existing.Rank {
			pos = i
			break
		}
	}
	if uniformRanks {
		for i := pos; i < len(l.orders); i++ {
			l.orders[i].Rank++
		}
	}
	l.orders = append(l.orders, nil)
	copy(l.orders[pos+1:], l.orders[pos:])
	l.orders[pos] = order
	order.level = l
	l.Qty += order.Qty
	l.NOrders = len(l.orders)
}

// delOrder detaches the order at the given index, subtracting its Qty from
// the level's and shifting later ranks −1 when uniformRanks (spec 4.2:
// "deletion shifts later ranks by −1").
func (l *PxLevel) delOrder(idx int, uniformRanks bool) *Order {
	order := l.orders[idx]
	l.orders = append(l.orders[:idx], l.orders[idx+1:]...)
	l.Qty -= order.Qty
	if uniformRanks {
		for i := idx; i < len(l.orders); i++ {
			l.orders[i].Rank--
		}
	}
	order.level = nil
	l.NOrders = len(l.orders)
	return order
}

// findOrder returns the index of the order with the given ID, or -1.
func (l *PxLevel) findOrder(id string) int {
	for i, o := range l.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// reset tears the level down: invokes cb for every child order, detaches
// them, and zeroes aggregates (spec 4.2: "PxLevel::reset iterates children,
// invokes the per-order callback, detaches them from the venue index, and
// zeroes aggregates").
func (l *PxLevel) reset(cb func(*Order)) {
	for _, o := range l.orders {
		if cb != nil {
			cb(o)
		}
		o.level = nil
	}
	l.orders = nil
	l.Qty = 0
	l.NOrders = 0
	l.Flags = 0
}
