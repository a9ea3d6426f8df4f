package wire

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// NewReplayScanner wraps NewScanner with optional zstd decompression, for
// reading a broadcast replay log captured from the wire (spec's broadcast
// records are otherwise transient; an operator may choose to archive them
// for offline gap analysis). Mirrors the teacher's compressed_io.go, which
// wraps a DbnScanner's source reader in a zstd.Decoder the same way.
func NewReplayScanner(r io.Reader, compressed bool) (*Scanner, func() error, error) {
	if !compressed {
		return NewScanner(r), func() error { return nil }, nil
	}
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	return NewScanner(dec), func() error { dec.Close(); return nil }, nil
}

// NewReplayWriter wraps NewWriter with optional zstd compression for
// archiving outgoing broadcast frames.
func NewReplayWriter(w io.Writer, startSeqNo uint64, compressed bool) (*Writer, func() error, error) {
	if !compressed {
		return NewWriter(w, startSeqNo), func() error { return nil }, nil
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return nil, nil, err
	}
	return NewWriter(enc, startSeqNo), enc.Close, nil
}
