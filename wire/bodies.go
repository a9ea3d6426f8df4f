package wire

import "encoding/binary"

// Fixed on-wire sizes for each Body implementation below.
const (
	loginSize          = 64 // user[16] + password[48]
	resendReqSize      = 12 // seqNo(8) + length(4)
	endOfSnapshotSize  = 8  // seqNo(8)
	heartBeatSize      = 8  // stamp(8)
	addOrderSize       = 8 + 8 + 16 + 8 + 1 + 1 + 8 + 8 + 4 // key(8+8)+orderID(16)+transactTime(8)+side(1)+rank(1)+price(8)+qty(8)+flags(4)
	modifyOrderSize    = addOrderSize
	cancelOrderSize    = 8 + 8 + 16 + 8 + 1 // venue+segment+orderID+transactTime+side
	pxLevelSize        = 8 + 8 + 8 + 1 + 1 + 8 + 8 + 4 + 1 // key+transactTime+side+delta+price+qty+nOrders+flags
	l1Size             = 8 + 8 + 8 + 8 + 8 + 8 + 8 + 8 + 8 + 1 // key+stamp+last+lastQty+bid+bidQty+ask+askQty+tickDir
	l2Size             = 8 + 8 + 8 + 8 // key + stamp + updateL1(as 1 byte, padded)
	resetOBSize        = 8 + 8 + 8 // key + transactTime
	tradingSessionSize = 8 + 8 + 8 + 1 + 8 // venue+segment+stamp+session+id(as 8 bytes)
)

// Login is sent over the TCP snapshot channel to authenticate (spec 4.10).
type Login struct {
	User     [16]byte
	Password [48]byte
}

func (*Login) RType() RecordType { return RecordType_Login }
func (*Login) Size() int         { return loginSize }
func (l *Login) Encode(b []byte) {
	copy(b[0:16], l.User[:])
	copy(b[16:64], l.Password[:])
}
func (l *Login) Decode(b []byte) error {
	if len(b) < loginSize {
		return unexpectedBytesError(len(b), loginSize)
	}
	copy(l.User[:], b[0:16])
	copy(l.Password[:], b[16:64])
	return nil
}

// LoginAckBody acknowledges a successful Login on the TCP snapshot channel
// (spec 4.9). It carries no payload; its presence on the wire is the ack.
type LoginAckBody struct{}

const loginAckSize = 0

func (*LoginAckBody) RType() RecordType     { return RecordType_LoginAck }
func (*LoginAckBody) Size() int             { return loginAckSize }
func (*LoginAckBody) Encode(b []byte)       {}
func (*LoginAckBody) Decode(b []byte) error { return nil }

// ResendReq asks the resend channel to replay [SeqNo, SeqNo+Count).
type ResendReq struct {
	SeqNo uint64
	Count uint32
}

func (*ResendReq) RType() RecordType { return RecordType_ResendReq }
func (*ResendReq) Size() int         { return resendReqSize }
func (r *ResendReq) Encode(b []byte) {
	binary.LittleEndian.PutUint64(b[0:8], r.SeqNo)
	binary.LittleEndian.PutUint32(b[8:12], r.Count)
}
func (r *ResendReq) Decode(b []byte) error {
	if len(b) < resendReqSize {
		return unexpectedBytesError(len(b), resendReqSize)
	}
	r.SeqNo = binary.LittleEndian.Uint64(b[0:8])
	r.Count = binary.LittleEndian.Uint32(b[8:12])
	return nil
}

// EndOfSnapshot marks where the TCP snapshot stream ends: queued UDP
// records with SeqNo > this value should be applied next.
type EndOfSnapshot struct {
	SeqNo uint64
}

func (*EndOfSnapshot) RType() RecordType { return RecordType_EndOfSnapshot }
func (*EndOfSnapshot) Size() int         { return endOfSnapshotSize }
func (e *EndOfSnapshot) Encode(b []byte) { binary.LittleEndian.PutUint64(b[0:8], e.SeqNo) }
func (e *EndOfSnapshot) Decode(b []byte) error {
	if len(b) < endOfSnapshotSize {
		return unexpectedBytesError(len(b), endOfSnapshotSize)
	}
	e.SeqNo = binary.LittleEndian.Uint64(b[0:8])
	return nil
}

// HeartBeat refreshes link liveness.
type HeartBeat struct {
	Stamp int64
}

func (*HeartBeat) RType() RecordType { return RecordType_HeartBeat }
func (*HeartBeat) Size() int         { return heartBeatSize }
func (h *HeartBeat) Encode(b []byte) { binary.LittleEndian.PutUint64(b[0:8], uint64(h.Stamp)) }
func (h *HeartBeat) Decode(b []byte) error {
	if len(b) < heartBeatSize {
		return unexpectedBytesError(len(b), heartBeatSize)
	}
	h.Stamp = int64(binary.LittleEndian.Uint64(b[0:8]))
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// Library broadcast bodies (spec section 4.8)
///////////////////////////////////////////////////////////////////////////////

// AddOrderBody/ModifyOrderBody carry an order ingress/modify event.
type AddOrderBody struct {
	Venue        ID8
	Segment      ID8
	OrderID      OrderID
	TransactTime int64
	Side         uint8
	Rank         uint8
	Price        int64
	Qty          int64
	Flags        uint32
}

func (*AddOrderBody) RType() RecordType { return RecordType_AddOrder }
func (*AddOrderBody) Size() int         { return addOrderSize }
func (a *AddOrderBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], a.Venue[:])
	off += 8
	copy(b[off:off+8], a.Segment[:])
	off += 8
	copy(b[off:off+16], a.OrderID[:])
	off += 16
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(a.TransactTime))
	off += 8
	b[off] = a.Side
	off++
	b[off] = a.Rank
	off++
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(a.Price))
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(a.Qty))
	off += 8
	binary.LittleEndian.PutUint32(b[off:off+4], a.Flags)
}
func (a *AddOrderBody) Decode(b []byte) error {
	if len(b) < addOrderSize {
		return unexpectedBytesError(len(b), addOrderSize)
	}
	off := 0
	copy(a.Venue[:], b[off:off+8])
	off += 8
	copy(a.Segment[:], b[off:off+8])
	off += 8
	copy(a.OrderID[:], b[off:off+16])
	off += 16
	a.TransactTime = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	a.Side = b[off]
	off++
	a.Rank = b[off]
	off++
	a.Price = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	a.Qty = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	a.Flags = binary.LittleEndian.Uint32(b[off : off+4])
	return nil
}

// ModifyOrderBody shares AddOrderBody's layout; only the RecordType differs.
type ModifyOrderBody struct{ AddOrderBody }

func (*ModifyOrderBody) RType() RecordType { return RecordType_ModifyOrder }

// CancelOrderBody carries an order removal event.
type CancelOrderBody struct {
	Venue        ID8
	Segment      ID8
	OrderID      OrderID
	TransactTime int64
	Side         uint8
}

func (*CancelOrderBody) RType() RecordType { return RecordType_CancelOrder }
func (*CancelOrderBody) Size() int         { return cancelOrderSize }
func (c *CancelOrderBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], c.Venue[:])
	off += 8
	copy(b[off:off+8], c.Segment[:])
	off += 8
	copy(b[off:off+16], c.OrderID[:])
	off += 16
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(c.TransactTime))
	off += 8
	b[off] = c.Side
}
func (c *CancelOrderBody) Decode(b []byte) error {
	if len(b) < cancelOrderSize {
		return unexpectedBytesError(len(b), cancelOrderSize)
	}
	off := 0
	copy(c.Venue[:], b[off:off+8])
	off += 8
	copy(c.Segment[:], b[off:off+8])
	off += 8
	copy(c.OrderID[:], b[off:off+16])
	off += 16
	c.TransactTime = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	c.Side = b[off]
	return nil
}

// PxLevelBody carries a price-level ingress/update event. Price==Null
// (via IsNull on reconstruction by the caller) targets the market level.
type PxLevelBody struct {
	Venue        ID8
	Segment      ID8
	TransactTime int64
	Side         uint8
	Delta        uint8
	Price        int64
	Qty          int64
	NOrders      uint32
	Flags        uint8
}

func (*PxLevelBody) RType() RecordType { return RecordType_PxLevel }
func (*PxLevelBody) Size() int         { return pxLevelSize }
func (p *PxLevelBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], p.Venue[:])
	off += 8
	copy(b[off:off+8], p.Segment[:])
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(p.TransactTime))
	off += 8
	b[off] = p.Side
	off++
	b[off] = p.Delta
	off++
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(p.Price))
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(p.Qty))
	off += 8
	binary.LittleEndian.PutUint32(b[off:off+4], p.NOrders)
	off += 4
	b[off] = p.Flags
}
func (p *PxLevelBody) Decode(b []byte) error {
	if len(b) < pxLevelSize {
		return unexpectedBytesError(len(b), pxLevelSize)
	}
	off := 0
	copy(p.Venue[:], b[off:off+8])
	off += 8
	copy(p.Segment[:], b[off:off+8])
	off += 8
	p.TransactTime = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	p.Side = b[off]
	off++
	p.Delta = b[off]
	off++
	p.Price = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	p.Qty = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	p.NOrders = binary.LittleEndian.Uint32(b[off : off+4])
	off += 4
	p.Flags = b[off]
	return nil
}

// L1Body carries a top-of-book merge event.
type L1Body struct {
	Venue   ID8
	Segment ID8
	Stamp   int64
	Last    int64
	LastQty int64
	Bid     int64
	BidQty  int64
	Ask     int64
	AskQty  int64
	TickDir uint8
}

func (*L1Body) RType() RecordType { return RecordType_L1 }
func (*L1Body) Size() int         { return l1Size }
func (l *L1Body) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], l.Venue[:])
	off += 8
	copy(b[off:off+8], l.Segment[:])
	off += 8
	for _, v := range []int64{l.Stamp, l.Last, l.LastQty, l.Bid, l.BidQty, l.Ask, l.AskQty} {
		binary.LittleEndian.PutUint64(b[off:off+8], uint64(v))
		off += 8
	}
	b[off] = l.TickDir
}
func (l *L1Body) Decode(b []byte) error {
	if len(b) < l1Size {
		return unexpectedBytesError(len(b), l1Size)
	}
	off := 0
	copy(l.Venue[:], b[off:off+8])
	off += 8
	copy(l.Segment[:], b[off:off+8])
	off += 8
	fields := []*int64{&l.Stamp, &l.Last, &l.LastQty, &l.Bid, &l.BidQty, &l.Ask, &l.AskQty}
	for _, f := range fields {
		*f = int64(binary.LittleEndian.Uint64(b[off : off+8]))
		off += 8
	}
	l.TickDir = b[off]
	return nil
}

// L2Body marks a price-level-driven L1 re-derivation.
type L2Body struct {
	Venue    ID8
	Segment  ID8
	Stamp    int64
	UpdateL1 bool
}

func (*L2Body) RType() RecordType { return RecordType_L2 }
func (*L2Body) Size() int         { return l2Size }
func (l *L2Body) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], l.Venue[:])
	off += 8
	copy(b[off:off+8], l.Segment[:])
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(l.Stamp))
	off += 8
	var flag uint64
	if l.UpdateL1 {
		flag = 1
	}
	binary.LittleEndian.PutUint64(b[off:off+8], flag)
}
func (l *L2Body) Decode(b []byte) error {
	if len(b) < l2Size {
		return unexpectedBytesError(len(b), l2Size)
	}
	off := 0
	copy(l.Venue[:], b[off:off+8])
	off += 8
	copy(l.Segment[:], b[off:off+8])
	off += 8
	l.Stamp = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	l.UpdateL1 =binary.LittleEndian.Uint64(b[off:off+8]) != 0
	return nil
}

// ResetOBBody marks a full book reset.
type ResetOBBody struct {
	Venue        ID8
	Segment      ID8
	TransactTime int64
}

func (*ResetOBBody) RType() RecordType { return RecordType_ResetOB }
func (*ResetOBBody) Size() int         { return resetOBSize }
func (r *ResetOBBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], r.Venue[:])
	off += 8
	copy(b[off:off+8], r.Segment[:])
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(r.TransactTime))
}
func (r *ResetOBBody) Decode(b []byte) error {
	if len(b) < resetOBSize {
		return unexpectedBytesError(len(b), resetOBSize)
	}
	off := 0
	copy(r.Venue[:], b[off:off+8])
	off += 8
	copy(r.Segment[:], b[off:off+8])
	off += 8
	r.TransactTime = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	return nil
}

// TradingSessionBody carries a per-segment session/state transition.
type TradingSessionBody struct {
	Venue   ID8
	Segment ID8
	Stamp   int64
	Session uint8
	ID      uint64
}

func (*TradingSessionBody) RType() RecordType { return RecordType_TradingSession }
func (*TradingSessionBody) Size() int         { return tradingSessionSize }
func (t *TradingSessionBody) Encode(b []byte) {
	off := 0
	copy(b[off:off+8], t.Venue[:])
	off += 8
	copy(b[off:off+8], t.Segment[:])
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(t.Stamp))
	off += 8
	b[off] = t.Session
	off++
	binary.LittleEndian.PutUint64(b[off:off+8], t.ID)
}
func (t *TradingSessionBody) Decode(b []byte) error {
	if len(b) < tradingSessionSize {
		return unexpectedBytesError(len(b), tradingSessionSize)
	}
	off := 0
	copy(t.Venue[:], b[off:off+8])
	off += 8
	copy(t.Segment[:], b[off:off+8])
	off += 8
	t.Stamp = int64(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	t.Session = b[off]
	off++
	t.ID = binary.LittleEndian.Uint64(b[off : off+8])
	return nil
}
