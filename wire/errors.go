package wire

import "fmt"

var (
	ErrHeaderTooShort = fmt.Errorf("wire: header shorter than expected")
	ErrBodyTooShort   = fmt.Errorf("wire: body shorter than declared bodyLen")
	ErrBadFrame       = fmt.Errorf("wire: malformed frame")
	ErrUnknownType    = fmt.Errorf("wire: unknown record type")
	ErrNoRecord       = fmt.Errorf("wire: no record scanned")
)

func unexpectedBytesError(got, want int) error {
	return fmt.Errorf("wire: expected %d bytes, got %d", want, got)
}

func bodyLenMismatchError(rtype RecordType, got, want int) error {
	return fmt.Errorf("%w: type %d declared %d bytes, expected %d", ErrBadFrame, rtype, got, want)
}
