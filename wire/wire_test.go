package wire

import (
	"bytes"
	"testing"
)

func TestWriterScannerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 1)

	order := &AddOrderBody{
		Venue:        NewID8("XTKS"),
		Segment:      NewID8("0"),
		OrderID:      NewOrderID("O1"),
		TransactTime: 1,
		Side:         'B',
		Rank:         0,
		Price:        10000,
		Qty:          100,
		Flags:        0,
	}
	seq1, err := w.Write(0, order)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if seq1 != 1 {
		t.Fatalf("first SeqNo = %d, want 1", seq1)
	}

	cancel := &CancelOrderBody{
		Venue:        NewID8("XTKS"),
		Segment:      NewID8("0"),
		OrderID:      NewOrderID("O1"),
		TransactTime: 3,
		Side:         'B',
	}
	seq2, err := w.Write(0, cancel)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if seq2 != 2 {
		t.Fatalf("second SeqNo = %d, want 2 (monotone contiguous per spec invariant 7)", seq2)
	}

	s := NewScanner(&buf)
	if !s.Next() {
		t.Fatalf("Next() = false, err = %v", s.Error())
	}
	if s.LastHeader().Type != RecordType_AddOrder {
		t.Fatalf("first record type = %v, want AddOrder", s.LastHeader().Type)
	}
	var gotOrder AddOrderBody
	if err := s.Decode(&gotOrder); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if gotOrder.OrderID.String() != "O1" || gotOrder.Price != 10000 {
		t.Errorf("decoded order = %+v, want OrderID=O1 Price=10000", gotOrder)
	}

	if !s.Next() {
		t.Fatalf("Next() second record = false, err = %v", s.Error())
	}
	var gotCancel CancelOrderBody
	if err := s.Decode(&gotCancel); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if gotCancel.TransactTime != 3 {
		t.Errorf("decoded cancel TransactTime = %d, want 3", gotCancel.TransactTime)
	}

	if s.Next() {
		t.Fatalf("expected EOF after 2 records")
	}
}

func TestScannerRejectsBadBodyLen(t *testing.T) {
	var buf bytes.Buffer
	hdr := Hdr{SeqNo: 1, BodyLen: 3, Type: RecordType_AddOrder}
	var hdrBuf [HdrSize]byte
	hdr.Encode(hdrBuf[:])
	buf.Write(hdrBuf[:])
	buf.Write([]byte{1, 2, 3})

	s := NewScanner(&buf)
	if s.Next() {
		t.Fatalf("expected Next() to fail on mismatched bodyLen")
	}
	if s.Error() == nil {
		t.Fatalf("expected a body-length-mismatch error")
	}
}

func TestID8RoundTrip(t *testing.T) {
	id := NewID8("XTKS")
	if id.String() != "XTKS" {
		t.Errorf("ID8 round trip = %q, want XTKS", id.String())
	}
}
