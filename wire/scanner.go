package wire

import (
	"bufio"
	"io"
)

// DefaultScanBufferSize mirrors the teacher's DbnScanner buffer size
// (github.com/NimbleMarkets/dbn-go, dbn_scanner.go).
const DefaultScanBufferSize = 16 * 1024

// expectedBodySize maps a RecordType to its expected fixed body length, so
// a Scanner can validate Hdr.BodyLen before dispatch (spec section 4.10:
// "Receivers MUST validate bodyLen against the expected per-type length
// before dispatch; malformed frames disconnect the link").
var expectedBodySize = map[RecordType]int{
	RecordType_Login:            loginSize,
	RecordType_LoginAck:         loginAckSize,
	RecordType_ResendReq:        resendReqSize,
	RecordType_EndOfSnapshot:    endOfSnapshotSize,
	RecordType_HeartBeat:        heartBeatSize,
	RecordType_AddOrder:         addOrderSize,
	RecordType_ModifyOrder:      modifyOrderSize,
	RecordType_CancelOrder:      cancelOrderSize,
	RecordType_PxLevel:          pxLevelSize,
	RecordType_L1:               l1Size,
	RecordType_L2:               l2Size,
	RecordType_ResetOB:          resetOBSize,
	RecordType_TradingSession:   tradingSessionSize,
	RecordType_AddInstrument:    addInstrumentSize,
	RecordType_AddOrderBook:     addOrderBookSize,
	RecordType_AddTrade:         addTradeSize,
	RecordType_CorrectTrade:     correctTradeSize,
	RecordType_CancelTrade:      cancelTradeSize,
	RecordType_AddVenue:         addVenueSize,
	RecordType_RefDataLoaded:    refDataLoadedSize,
	RecordType_AddTickSizeTbl:   addTickSizeTblSize,
	RecordType_AddTickSize:      addTickSizeSize,
	RecordType_ResetTickSizeTbl: resetTickSizeTblSize,
	RecordType_UpdateInstrument: updateInstrumentSize,
	RecordType_UpdateOrderBook:  updateOrderBookSize,
	RecordType_DelOrderBook:     delOrderBookSize,
	RecordType_AddCombination:   addCombinationSize,
	RecordType_DelCombination:   delCombinationSize,
}

// ExpectedBodySize returns the fixed body size for rtype, and whether one
// is registered. Every defined RecordType other than RecordType_Unknown is
// registered; an unregistered type code passes through with no length check.
func ExpectedBodySize(rtype RecordType) (int, bool) {
	n, ok := expectedBodySize[rtype]
	return n, ok
}

// Scanner reads length-prefixed (Hdr.BodyLen) wire frames from a stream,
// one at a time, in the style of the teacher's DbnScanner: Next() populates
// the last-read header and raw body bytes; callers decode via Decode(body).
type Scanner struct {
	r         *bufio.Reader
	lastErr   error
	lastHdr   Hdr
	lastBody  []byte
}

// NewScanner wraps r in a buffered Scanner.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{
		r:        bufio.NewReaderSize(r, DefaultScanBufferSize),
		lastBody: make([]byte, 0, 512),
	}
}

// Error returns the last error from Next, which may be io.EOF.
func (s *Scanner) Error() error { return s.lastErr }

// LastHeader returns the most recently scanned header.
func (s *Scanner) LastHeader() Hdr { return s.lastHdr }

// LastBody returns the most recently scanned raw body bytes. The slice is
// reused by subsequent Next() calls; copy it if retaining across calls.
func (s *Scanner) LastBody() []byte { return s.lastBody }

// Next reads the next frame's header and raw body. Returns false on error
// or EOF; call Error() to distinguish.
func (s *Scanner) Next() bool {
	var hdrBuf [HdrSize]byte
	if _, err := io.ReadFull(s.r, hdrBuf[:]); err != nil {
		s.lastErr = err
		return false
	}
	if err := s.lastHdr.Decode(hdrBuf[:]); err != nil {
		s.lastErr = err
		return false
	}
	if cap(s.lastBody) < int(s.lastHdr.BodyLen) {
		s.lastBody = make([]byte, s.lastHdr.BodyLen)
	} else {
		s.lastBody = s.lastBody[:s.lastHdr.BodyLen]
	}
	if s.lastHdr.BodyLen > 0 {
		if _, err := io.ReadFull(s.r, s.lastBody); err != nil {
			s.lastErr = err
			return false
		}
	}
	if want, ok := expectedBodySize[s.lastHdr.Type]; ok && want != int(s.lastHdr.BodyLen) {
		s.lastErr = bodyLenMismatchError(s.lastHdr.Type, int(s.lastHdr.BodyLen), want)
		return false
	}
	s.lastErr = nil
	return true
}

// Decode decodes the last-scanned body into body, validating the RecordType
// matches.
func (s *Scanner) Decode(body Body) error {
	if s.lastHdr.Type != body.RType() {
		return ErrUnknownType
	}
	return body.Decode(s.lastBody)
}
