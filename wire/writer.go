package wire

import "io"

// Writer encodes Hdr+Body frames to an io.Writer, assigning a strictly
// increasing SeqNo per channel (spec section 5: "Broadcast records for that
// book are emitted in the same order and carry strictly increasing seqNo
// values").
type Writer struct {
	w      io.Writer
	seqNo  uint64
	scratch []byte
}

// NewWriter creates a Writer over w. startSeqNo is the first SeqNo to assign
// (commonly 1, or a resume point after a snapshot).
func NewWriter(w io.Writer, startSeqNo uint64) *Writer {
	return &Writer{w: w, seqNo: startSeqNo, scratch: make([]byte, HdrSize+512)}
}

// NextSeqNo returns the SeqNo that will be assigned to the next Write call.
func (wr *Writer) NextSeqNo() uint64 { return wr.seqNo }

// Write encodes and emits body, stamping it with the writer's next SeqNo and
// nsec, returning the assigned SeqNo.
func (wr *Writer) Write(nsec uint32, body Body) (uint64, error) {
	size := body.Size()
	total := HdrSize + size
	if cap(wr.scratch) < total {
		wr.scratch = make([]byte, total)
	}
	buf := wr.scratch[:total]

	seqNo := wr.seqNo
	hdr := Hdr{SeqNo: seqNo, Nsec: nsec, BodyLen: uint16(size), Type: body.RType()}
	hdr.Encode(buf[:HdrSize])
	body.Encode(buf[HdrSize:total])

	if _, err := wr.w.Write(buf); err != nil {
		return 0, err
	}
	wr.seqNo++
	return seqNo, nil
}
