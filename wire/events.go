package wire

import "encoding/binary"

// Fixed on-wire sizes for the remaining library broadcast bodies (spec
// section 4.8). These carry only the fixed-width identity/scalar fields of
// their event; variable-length payloads (symbol lists, leg vectors) are left
// to the receiver to re-fetch via the library's own index, the same
// trade-off bodies.go already makes for AddOrderBody/PxLevelBody.
const (
	addInstrumentSize    = 8 + 8 + 8 + 1 + 1 + 4           // venue+segment+instrument+pxNDP+qtyNDP+flags
	addOrderBookSize     = 8 + 8 + 8 + 1 + 1 + 1 + 4        // venue+segment+instrument+pxNDP+qtyNDP+uniformRanks+flags
	addTradeSize         = 8 + 8 + 8 + 16 + 8 + 8 + 4       // venue+segment+transactTime+tradeID+price+qty+flags
	correctTradeSize     = 8 + 8 + 16 + 8 + 8 + 8           // venue+segment+tradeID+transactTime+newPrice+newQty
	cancelTradeSize      = 8 + 8 + 16 + 8                   // venue+segment+tradeID+transactTime
	addVenueSize         = 8 + 16 + 1 + 4                   // venue+feed[16]+scope+flags
	refDataLoadedSize    = 8 + 8                            // venue+stamp
	addTickSizeTblSize   = 8 + 16                           // venue+tableID[16]
	addTickSizeSize      = 8 + 16 + 8 + 8                   // venue+tableID+floorPrice+tickSize
	resetTickSizeTblSize = 8 + 16                           // venue+tableID
	updateInstrumentSize = 8 + 8 + 8 + 1 + 1 + 1 + 1 + 4    // venue+segment+instrument+oldPxNDP+oldQtyNDP+newPxNDP+newQtyNDP+flags
	updateOrderBookSize  = 8 + 8 + 1 + 1                    // venue+segment+newPxNDP+newQtyNDP
	delOrderBookSize     = 8 + 8 + 8                        // venue+segment+transactTime
	addCombinationSize   = 8 + 8 + 1 + 1 + 1                // venue+segment+legCount+pxNDP+qtyNDP
	delCombinationSize   = 8 + 8                            // venue+segment
)

// AddInstrumentBody announces a newly-registered instrument.
type AddInstrumentBody struct {
	Venue      ID8
	Segment    ID8
	Instrument ID8
	PxNDP      uint8
	QtyNDP     uint8
	Flags      uint32
}

func (*AddInstrumentBody) RType() RecordType { return RecordType_AddInstrument }
func (*AddInstrumentBody) Size() int         { return addInstrumentSize }
func (a *AddInstrumentBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], a.Venue[:])
	off += 8
	copy(b[off:off+8], a.Segment[:])
	off += 8
	copy(b[off:off+8], a.Instrument[:])
	off += 8
	b[off] = a.PxNDP
	off++
	b[off] = a.QtyNDP
	off++
	binary.LittleEndian.PutUint32(b[off:off+4], a.Flags)
}
func (a *AddInstrumentBody) Decode(b []byte) error {
	if len(b) < addInstrumentSize {
		return unexpectedBytesError(len(b), addInstrumentSize)
	}
	off := 0
	copy(a.Venue[:], b[off:off+8])
	off += 8
	copy(a.Segment[:], b[off:off+8])
	off += 8
	copy(a.Instrument[:], b[off:off+8])
	off += 8
	a.PxNDP = b[off]
	off++
	a.QtyNDP = b[off]
	off++
	a.Flags = binary.LittleEndian.Uint32(b[off : off+4])
	return nil
}

// AddOrderBookBody announces a newly-registered order book on an instrument.
type AddOrderBookBody struct {
	Venue        ID8
	Segment      ID8
	Instrument   ID8
	PxNDP        uint8
	QtyNDP       uint8
	UniformRanks uint8
	Flags        uint32
}

func (*AddOrderBookBody) RType() RecordType { return RecordType_AddOrderBook }
func (*AddOrderBookBody) Size() int         { return addOrderBookSize }
func (a *AddOrderBookBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], a.Venue[:])
	off += 8
	copy(b[off:off+8], a.Segment[:])
	off += 8
	copy(b[off:off+8], a.Instrument[:])
	off += 8
	b[off] = a.PxNDP
	off++
	b[off] = a.QtyNDP
	off++
	b[off] = a.UniformRanks
	off++
	binary.LittleEndian.PutUint32(b[off:off+4], a.Flags)
}
func (a *AddOrderBookBody) Decode(b []byte) error {
	if len(b) < addOrderBookSize {
		return unexpectedBytesError(len(b), addOrderBookSize)
	}
	off := 0
	copy(a.Venue[:], b[off:off+8])
	off += 8
	copy(a.Segment[:], b[off:off+8])
	off += 8
	copy(a.Instrument[:], b[off:off+8])
	off += 8
	a.PxNDP = b[off]
	off++
	a.QtyNDP = b[off]
	off++
	a.UniformRanks = b[off]
	off++
	a.Flags = binary.LittleEndian.Uint32(b[off : off+4])
	return nil
}

// AddTradeBody announces a print against an order book.
type AddTradeBody struct {
	Venue        ID8
	Segment      ID8
	TransactTime int64
	TradeID      OrderID
	Price        int64
	Qty          int64
	Flags        uint32
}

func (*AddTradeBody) RType() RecordType { return RecordType_AddTrade }
func (*AddTradeBody) Size() int         { return addTradeSize }
func (a *AddTradeBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], a.Venue[:])
	off += 8
	copy(b[off:off+8], a.Segment[:])
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(a.TransactTime))
	off += 8
	copy(b[off:off+16], a.TradeID[:])
	off += 16
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(a.Price))
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(a.Qty))
	off += 8
	binary.LittleEndian.PutUint32(b[off:off+4], a.Flags)
}
func (a *AddTradeBody) Decode(b []byte) error {
	if len(b) < addTradeSize {
		return unexpectedBytesError(len(b), addTradeSize)
	}
	off := 0
	copy(a.Venue[:], b[off:off+8])
	off += 8
	copy(a.Segment[:], b[off:off+8])
	off += 8
	a.TransactTime = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	copy(a.TradeID[:], b[off:off+16])
	off += 16
	a.Price = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	a.Qty = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	a.Flags = binary.LittleEndian.Uint32(b[off : off+4])
	return nil
}

// CorrectTradeBody carries a price/qty correction against a prior trade.
type CorrectTradeBody struct {
	Venue        ID8
	Segment      ID8
	TradeID      OrderID
	TransactTime int64
	NewPrice     int64
	NewQty       int64
}

func (*CorrectTradeBody) RType() RecordType { return RecordType_CorrectTrade }
func (*CorrectTradeBody) Size() int         { return correctTradeSize }
func (c *CorrectTradeBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], c.Venue[:])
	off += 8
	copy(b[off:off+8], c.Segment[:])
	off += 8
	copy(b[off:off+16], c.TradeID[:])
	off += 16
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(c.TransactTime))
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(c.NewPrice))
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(c.NewQty))
}
func (c *CorrectTradeBody) Decode(b []byte) error {
	if len(b) < correctTradeSize {
		return unexpectedBytesError(len(b), correctTradeSize)
	}
	off := 0
	copy(c.Venue[:], b[off:off+8])
	off += 8
	copy(c.Segment[:], b[off:off+8])
	off += 8
	copy(c.TradeID[:], b[off:off+16])
	off += 16
	c.TransactTime = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	c.NewPrice = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	c.NewQty = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	return nil
}

// CancelTradeBody retracts a prior trade print.
type CancelTradeBody struct {
	Venue        ID8
	Segment      ID8
	TradeID      OrderID
	TransactTime int64
}

func (*CancelTradeBody) RType() RecordType { return RecordType_CancelTrade }
func (*CancelTradeBody) Size() int         { return cancelTradeSize }
func (c *CancelTradeBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], c.Venue[:])
	off += 8
	copy(b[off:off+8], c.Segment[:])
	off += 8
	copy(b[off:off+16], c.TradeID[:])
	off += 16
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(c.TransactTime))
}
func (c *CancelTradeBody) Decode(b []byte) error {
	if len(b) < cancelTradeSize {
		return unexpectedBytesError(len(b), cancelTradeSize)
	}
	off := 0
	copy(c.Venue[:], b[off:off+8])
	off += 8
	copy(c.Segment[:], b[off:off+8])
	off += 8
	copy(c.TradeID[:], b[off:off+16])
	off += 16
	c.TransactTime = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	return nil
}

// AddVenueBody announces a newly-registered venue.
type AddVenueBody struct {
	Venue ID8
	Feed  [16]byte
	Scope uint8
	Flags uint32
}

func (*AddVenueBody) RType() RecordType { return RecordType_AddVenue }
func (*AddVenueBody) Size() int         { return addVenueSize }
func (a *AddVenueBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], a.Venue[:])
	off += 8
	copy(b[off:off+16], a.Feed[:])
	off += 16
	b[off] = a.Scope
	off++
	binary.LittleEndian.PutUint32(b[off:off+4], a.Flags)
}
func (a *AddVenueBody) Decode(b []byte) error {
	if len(b) < addVenueSize {
		return unexpectedBytesError(len(b), addVenueSize)
	}
	off := 0
	copy(a.Venue[:], b[off:off+8])
	off += 8
	copy(a.Feed[:], b[off:off+16])
	off += 16
	a.Scope = b[off]
	off++
	a.Flags = binary.LittleEndian.Uint32(b[off : off+4])
	return nil
}

// RefDataLoadedBody announces that a venue's reference data snapshot has
// fully drained every shard (spec 4.4/4.6: loaded(venue)).
type RefDataLoadedBody struct {
	Venue ID8
	Stamp int64
}

func (*RefDataLoadedBody) RType() RecordType { return RecordType_RefDataLoaded }
func (*RefDataLoadedBody) Size() int         { return refDataLoadedSize }
func (r *RefDataLoadedBody) Encode(b []byte) {
	copy(b[0:8], r.Venue[:])
	binary.LittleEndian.PutUint64(b[8:16], uint64(r.Stamp))
}
func (r *RefDataLoadedBody) Decode(b []byte) error {
	if len(b) < refDataLoadedSize {
		return unexpectedBytesError(len(b), refDataLoadedSize)
	}
	copy(r.Venue[:], b[0:8])
	r.Stamp = int64(binary.LittleEndian.Uint64(b[8:16]))
	return nil
}

// AddTickSizeTblBody announces a new tick size table on a venue.
type AddTickSizeTblBody struct {
	Venue   ID8
	TableID [16]byte
}

func (*AddTickSizeTblBody) RType() RecordType { return RecordType_AddTickSizeTbl }
func (*AddTickSizeTblBody) Size() int         { return addTickSizeTblSize }
func (a *AddTickSizeTblBody) Encode(b []byte) {
	copy(b[0:8], a.Venue[:])
	copy(b[8:24], a.TableID[:])
}
func (a *AddTickSizeTblBody) Decode(b []byte) error {
	if len(b) < addTickSizeTblSize {
		return unexpectedBytesError(len(b), addTickSizeTblSize)
	}
	copy(a.Venue[:], b[0:8])
	copy(a.TableID[:], b[8:24])
	return nil
}

// AddTickSizeBody announces a new band added to a tick size table.
type AddTickSizeBody struct {
	Venue      ID8
	TableID    [16]byte
	FloorPrice int64
	TickSize   int64
}

func (*AddTickSizeBody) RType() RecordType { return RecordType_AddTickSize }
func (*AddTickSizeBody) Size() int         { return addTickSizeSize }
func (a *AddTickSizeBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], a.Venue[:])
	off += 8
	copy(b[off:off+16], a.TableID[:])
	off += 16
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(a.FloorPrice))
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(a.TickSize))
}
func (a *AddTickSizeBody) Decode(b []byte) error {
	if len(b) < addTickSizeSize {
		return unexpectedBytesError(len(b), addTickSizeSize)
	}
	off := 0
	copy(a.Venue[:], b[off:off+8])
	off += 8
	copy(a.TableID[:], b[off:off+16])
	off += 16
	a.FloorPrice = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	a.TickSize = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	return nil
}

// ResetTickSizeTblBody announces a tick size table was cleared.
type ResetTickSizeTblBody struct {
	Venue   ID8
	TableID [16]byte
}

func (*ResetTickSizeTblBody) RType() RecordType { return RecordType_ResetTickSizeTbl }
func (*ResetTickSizeTblBody) Size() int         { return resetTickSizeTblSize }
func (r *ResetTickSizeTblBody) Encode(b []byte) {
	copy(b[0:8], r.Venue[:])
	copy(b[8:24], r.TableID[:])
}
func (r *ResetTickSizeTblBody) Decode(b []byte) error {
	if len(b) < resetTickSizeTblSize {
		return unexpectedBytesError(len(b), resetTickSizeTblSize)
	}
	copy(r.Venue[:], b[0:8])
	copy(r.TableID[:], b[8:24])
	return nil
}

// UpdateInstrumentBody announces a reference-data update, including any
// NDP migration it triggered.
type UpdateInstrumentBody struct {
	Venue      ID8
	Segment    ID8
	Instrument ID8
	OldPxNDP   uint8
	OldQtyNDP  uint8
	NewPxNDP   uint8
	NewQtyNDP  uint8
	Flags      uint32
}

func (*UpdateInstrumentBody) RType() RecordType { return RecordType_UpdateInstrument }
func (*UpdateInstrumentBody) Size() int         { return updateInstrumentSize }
func (u *UpdateInstrumentBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], u.Venue[:])
	off += 8
	copy(b[off:off+8], u.Segment[:])
	off += 8
	copy(b[off:off+8], u.Instrument[:])
	off += 8
	b[off] = u.OldPxNDP
	off++
	b[off] = u.OldQtyNDP
	off++
	b[off] = u.NewPxNDP
	off++
	b[off] = u.NewQtyNDP
	off++
	binary.LittleEndian.PutUint32(b[off:off+4], u.Flags)
}
func (u *UpdateInstrumentBody) Decode(b []byte) error {
	if len(b) < updateInstrumentSize {
		return unexpectedBytesError(len(b), updateInstrumentSize)
	}
	off := 0
	copy(u.Venue[:], b[off:off+8])
	off += 8
	copy(u.Segment[:], b[off:off+8])
	off += 8
	copy(u.Instrument[:], b[off:off+8])
	off += 8
	u.OldPxNDP = b[off]
	off++
	u.OldQtyNDP = b[off]
	off++
	u.NewPxNDP = b[off]
	off++
	u.NewQtyNDP = b[off]
	off++
	u.Flags = binary.LittleEndian.Uint32(b[off : off+4])
	return nil
}

// UpdateOrderBookBody announces an order book's own NDP migration (distinct
// from UpdateInstrumentBody: a book can migrate independently of its
// instrument's ref data, e.g. a combination's synthetic NDP).
type UpdateOrderBookBody struct {
	Venue     ID8
	Segment   ID8
	NewPxNDP  uint8
	NewQtyNDP uint8
}

func (*UpdateOrderBookBody) RType() RecordType { return RecordType_UpdateOrderBook }
func (*UpdateOrderBookBody) Size() int         { return updateOrderBookSize }
func (u *UpdateOrderBookBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], u.Venue[:])
	off += 8
	copy(b[off:off+8], u.Segment[:])
	off += 8
	b[off] = u.NewPxNDP
	off++
	b[off] = u.NewQtyNDP
}
func (u *UpdateOrderBookBody) Decode(b []byte) error {
	if len(b) < updateOrderBookSize {
		return unexpectedBytesError(len(b), updateOrderBookSize)
	}
	off := 0
	copy(u.Venue[:], b[off:off+8])
	off += 8
	copy(u.Segment[:], b[off:off+8])
	off += 8
	u.NewPxNDP = b[off]
	off++
	u.NewQtyNDP = b[off]
	return nil
}

// DelOrderBookBody announces an order book was removed from its instrument.
type DelOrderBookBody struct {
	Venue        ID8
	Segment      ID8
	TransactTime int64
}

func (*DelOrderBookBody) RType() RecordType { return RecordType_DelOrderBook }
func (*DelOrderBookBody) Size() int         { return delOrderBookSize }
func (d *DelOrderBookBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], d.Venue[:])
	off += 8
	copy(b[off:off+8], d.Segment[:])
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(d.TransactTime))
}
func (d *DelOrderBookBody) Decode(b []byte) error {
	if len(b) < delOrderBookSize {
		return unexpectedBytesError(len(b), delOrderBookSize)
	}
	off := 0
	copy(d.Venue[:], b[off:off+8])
	off += 8
	copy(d.Segment[:], b[off:off+8])
	off += 8
	d.TransactTime = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	return nil
}

// AddCombinationBody announces a new multi-leg combination book. Leg detail
// (instrument/side/ratio per leg) is fetched from the library index by key
// rather than carried inline, matching AddOrderBookBody's treatment of
// variable-length detail.
type AddCombinationBody struct {
	Venue    ID8
	Segment  ID8
	LegCount uint8
	PxNDP    uint8
	QtyNDP   uint8
}

func (*AddCombinationBody) RType() RecordType { return RecordType_AddCombination }
func (*AddCombinationBody) Size() int         { return addCombinationSize }
func (a *AddCombinationBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], a.Venue[:])
	off += 8
	copy(b[off:off+8], a.Segment[:])
	off += 8
	b[off] = a.LegCount
	off++
	b[off] = a.PxNDP
	off++
	b[off] = a.QtyNDP
}
func (a *AddCombinationBody) Decode(b []byte) error {
	if len(b) < addCombinationSize {
		return unexpectedBytesError(len(b), addCombinationSize)
	}
	off := 0
	copy(a.Venue[:], b[off:off+8])
	off += 8
	copy(a.Segment[:], b[off:off+8])
	off += 8
	a.LegCount = b[off]
	off++
	a.PxNDP = b[off]
	off++
	a.QtyNDP = b[off]
	return nil
}

// DelCombinationBody announces a combination book was torn down.
type DelCombinationBody struct {
	Venue   ID8
	Segment ID8
}

func (*DelCombinationBody) RType() RecordType { return RecordType_DelCombination }
func (*DelCombinationBody) Size() int         { return delCombinationSize }
func (d *DelCombinationBody) Encode(b []byte) {
	copy(b[0:8], d.Venue[:])
	copy(b[8:16], d.Segment[:])
}
func (d *DelCombinationBody) Decode(b []byte) error {
	if len(b) < delCombinationSize {
		return unexpectedBytesError(len(b), delCombinationSize)
	}
	copy(d.Venue[:], b[0:8])
	copy(d.Segment[:], b[8:16])
	return nil
}
