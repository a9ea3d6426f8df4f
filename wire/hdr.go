// Package wire implements the broadcast wire format: a fixed header
// followed by a POD, fixed-layout little-endian body, framed the way the
// teacher's DBN codec frames records (github.com/NimbleMarkets/dbn-go,
// structs.go's RHeader/Fill_Raw and dbn_scanner.go's length-prefixed read
// loop) — adapted here to the MxMD broadcast-record catalogue (spec
// section 4.8) instead of Databento's DBN schema catalogue.
package wire

import "encoding/binary"

// RecordType is the per-type code carried in Hdr.Type.
type RecordType uint8

const (
	RecordType_Unknown RecordType = iota

	// Library broadcast events (spec section 4.8).
	RecordType_AddInstrument
	RecordType_AddOrderBook
	RecordType_L1
	RecordType_PxLevel
	RecordType_L2
	RecordType_AddOrder
	RecordType_ModifyOrder
	RecordType_CancelOrder
	RecordType_AddTrade
	RecordType_CorrectTrade
	RecordType_CancelTrade
	RecordType_ResetOB
	RecordType_TradingSession
	RecordType_AddVenue
	RecordType_RefDataLoaded
	RecordType_AddTickSizeTbl
	RecordType_AddTickSize
	RecordType_ResetTickSizeTbl
	RecordType_UpdateInstrument
	RecordType_UpdateOrderBook
	RecordType_DelOrderBook
	RecordType_AddCombination
	RecordType_DelCombination

	// Subscriber link protocol (spec section 4.9/4.10).
	RecordType_Login
	RecordType_LoginAck
	RecordType_ResendReq
	RecordType_EndOfSnapshot
	RecordType_HeartBeat
)

var recordTypeNames = map[RecordType]string{
	RecordType_AddInstrument:    "addInstrument",
	RecordType_AddOrderBook:     "addOrderBook",
	RecordType_L1:               "l1",
	RecordType_PxLevel:          "pxLevel",
	RecordType_L2:               "l2",
	RecordType_AddOrder:         "addOrder",
	RecordType_ModifyOrder:      "modifyOrder",
	RecordType_CancelOrder:      "cancelOrder",
	RecordType_AddTrade:         "addTrade",
	RecordType_CorrectTrade:     "correctTrade",
	RecordType_CancelTrade:      "cancelTrade",
	RecordType_ResetOB:          "resetOB",
	RecordType_TradingSession:   "tradingSession",
	RecordType_AddVenue:         "addVenue",
	RecordType_RefDataLoaded:    "refDataLoaded",
	RecordType_AddTickSizeTbl:   "addTickSizeTbl",
	RecordType_AddTickSize:      "addTickSize",
	RecordType_ResetTickSizeTbl: "resetTickSizeTbl",
	RecordType_UpdateInstrument: "updateInstrument",
	RecordType_UpdateOrderBook:  "updateOrderBook",
	RecordType_DelOrderBook:     "delOrderBook",
	RecordType_AddCombination:   "addCombination",
	RecordType_DelCombination:   "delCombination",
	RecordType_Login:            "login",
	RecordType_LoginAck:         "loginAck",
	RecordType_ResendReq:        "resendReq",
	RecordType_EndOfSnapshot:    "endOfSnapshot",
	RecordType_HeartBeat:        "heartBeat",
}

func (t RecordType) String() string {
	if s, ok := recordTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// HdrSize is the fixed on-wire size of Hdr, in bytes.
const HdrSize = 16

// Hdr is the fixed frame header preceding every wire body.
//
//	uint64  seqNo     // per-channel monotonic
//	uint32  nsec      // nanoseconds-since-epoch low 32 bits
//	uint16  bodyLen   // bytes following this header
//	uint8   type      // RecordType
//	uint8   _pad
type Hdr struct {
	SeqNo   uint64
	Nsec    uint32
	BodyLen uint16
	Type    RecordType
}

// Encode writes the header into b[0:HdrSize]. b must have length >= HdrSize.
func (h *Hdr) Encode(b []byte) {
	binary.LittleEndian.PutUint64(b[0:8], h.SeqNo)
	binary.LittleEndian.PutUint32(b[8:12], h.Nsec)
	binary.LittleEndian.PutUint16(b[12:14], h.BodyLen)
	b[14] = byte(h.Type)
	b[15] = 0
}

// Decode reads the header from b[0:HdrSize].
func (h *Hdr) Decode(b []byte) error {
	if len(b) < HdrSize {
		return unexpectedBytesError(len(b), HdrSize)
	}
	h.SeqNo = binary.LittleEndian.Uint64(b[0:8])
	h.Nsec = binary.LittleEndian.Uint32(b[8:12])
	h.BodyLen = binary.LittleEndian.Uint16(b[12:14])
	h.Type = RecordType(b[14])
	return nil
}

// Body is implemented by every wire-record body type.
type Body interface {
	// RType returns this body's RecordType.
	RType() RecordType
	// Size returns the fixed encoded size of this body, in bytes.
	Size() int
	// Encode writes the body into b (len(b) >= Size()).
	Encode(b []byte)
	// Decode reads the body from b (len(b) >= Size()).
	Decode(b []byte) error
}
