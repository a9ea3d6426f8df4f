package diag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nimblemarkets/mdbook/fixedpoint"
)

func parseResendArgs(args []string) (link string, seqNo uint64, count uint32, err error) {
	link = args[0]
	seq, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("diag: SEQNO: %w", err)
	}
	n, err := strconv.ParseUint(args[2], 10, 32)
	if err != nil {
		return "", 0, 0, fmt.Errorf("diag: COUNT: %w", err)
	}
	return link, seq, uint32(n), nil
}

// hexDump renders b as a classic offset/hex/ASCII dump, 16 bytes per line,
// matching the shape of a raw wire-record printout a diagnostic CLI would
// emit for an operator to eyeball.
func hexDump(b []byte) string {
	var sb strings.Builder
	for off := 0; off < len(b); off += 16 {
		end := off + 16
		if end > len(b) {
			end = len(b)
		}
		row := b[off:end]
		fmt.Fprintf(&sb, "%08x  ", off)
		for i := 0; i < 16; i++ {
			if i < len(row) {
				fmt.Fprintf(&sb, "%02x ", row[i])
			} else {
				sb.WriteString("   ")
			}
			if i == 7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(" |")
		for _, c := range row {
			if c >= 0x20 && c < 0x7f {
				sb.WriteByte(c)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteString("|\n")
	}
	return sb.String()
}

// FormatValue renders a fixed-point Value as a human decimal string,
// without the fixed-point type's own range/sentinel machinery — exactly
// the float-free display math shopspring/decimal is for, kept out of the
// book's core arithmetic (see DESIGN.md) but welcome here.
func FormatValue(v fixedpoint.Value, ndp fixedpoint.NDP) string {
	if v.IsNull() {
		return "null"
	}
	if v.IsReset() {
		return "reset"
	}
	return decimal.New(int64(v), -int32(ndp)).String()
}
