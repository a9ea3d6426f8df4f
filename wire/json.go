package wire

import (
	"strconv"

	"github.com/valyala/fastjson"
)

// JSONHeader renders a Hdr as a compact JSON object, in the style of the
// teacher's JsonScanner (github.com/NimbleMarkets/dbn-go, json_scanner.go):
// a human-readable mirror of a scanned frame's header that does not
// round-trip through the raw POD body. No other package calls it.
func JSONHeader(h Hdr) string {
	var b []byte
	b = append(b, `{"seq_no":`...)
	b = strconv.AppendUint(b, h.SeqNo, 10)
	b = append(b, `,"nsec":`...)
	b = strconv.AppendUint(b, uint64(h.Nsec), 10)
	b = append(b, `,"type":"`...)
	b = append(b, h.Type.String()...)
	b = append(b, `"}`...)
	return string(b)
}

// ParseResendReqJSON decodes a `{"seq_no":N,"count":N}` JSON object, as
// emitted by a peer diagnostic tool, into a ResendReq. Uses fastjson, as the
// teacher does for all JSON record decoding.
func ParseResendReqJSON(data []byte) (ResendReq, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return ResendReq{}, err
	}
	return ResendReq{
		SeqNo: v.GetUint64("seq_no"),
		Count: uint32(v.GetUint("count")),
	}, nil
}
