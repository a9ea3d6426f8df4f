package diag

import (
	"strings"
	"testing"

	"github.com/nimblemarkets/mdbook/fixedpoint"
)

func TestFormatValue(t *testing.T) {
	cases := []struct {
		v    fixedpoint.Value
		ndp  fixedpoint.NDP
		want string
	}{
		{fixedpoint.Value(123456), 4, "12.3456"},
		{fixedpoint.Value(0), 2, "0"},
		{fixedpoint.Null, 2, "null"},
		{fixedpoint.Reset, 2, "reset"},
	}
	for _, c := range cases {
		if got := FormatValue(c.v, c.ndp); got != c.want {
			t.Errorf("FormatValue(%d, %d) = %q, want %q", c.v, c.ndp, got, c.want)
		}
	}
}

func TestHexDump(t *testing.T) {
	out := hexDump([]byte("hello, world!!!!"))
	if !strings.Contains(out, "68 65 6c 6c 6f") {
		t.Fatalf("hexDump missing hex bytes: %s", out)
	}
	if !strings.Contains(out, "|hello, world!!!!|") {
		t.Fatalf("hexDump missing ascii gutter: %s", out)
	}
}

func TestParseResendArgs(t *testing.T) {
	link, seq, count, err := parseResendArgs([]string{"NYSE", "100", "5"})
	if err != nil {
		t.Fatalf("parseResendArgs: %v", err)
	}
	if link != "NYSE" || seq != 100 || count != 5 {
		t.Fatalf("got (%s, %d, %d)", link, seq, count)
	}
}

func TestParseResendArgsBadSeqNo(t *testing.T) {
	if _, _, _, err := parseResendArgs([]string{"NYSE", "nope", "5"}); err == nil {
		t.Fatal("expected error for non-numeric SEQNO")
	}
}
