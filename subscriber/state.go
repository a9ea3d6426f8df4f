package subscriber

// LinkState is the overall state of a subscriber link's state machine
// (spec section 4.9).
type LinkState uint8

const (
	StateDisconnected LinkState = iota
	StateConnectingTCP
	StateTCPConnected
	StateUDPBinding
	StateUDPConnected
	StateLoginSent
	StateLoginAcked
	StateSnapshotStreaming
	StateEndOfSnapshot
	StateLive
)

var linkStateNames = map[LinkState]string{
	StateDisconnected:      "Disconnected",
	StateConnectingTCP:     "Connecting(TCP)",
	StateTCPConnected:      "TCPConnected",
	StateUDPBinding:        "UDPBinding",
	StateUDPConnected:      "UDPConnected",
	StateLoginSent:         "Login(TCP)-sent",
	StateLoginAcked:        "Login-acked",
	StateSnapshotStreaming: "Snapshot-streaming",
	StateEndOfSnapshot:     "EndOfSnapshot",
	StateLive:              "Live",
}

func (s LinkState) String() string {
	if n, ok := linkStateNames[s]; ok {
		return n
	}
	return "Unknown"
}

// TCPState is the snapshot channel's own sub-state, reported by
// subscriber.status (spec section 6).
type TCPState uint8

const (
	TCPStateDisconnect TCPState = iota
	TCPStateLogin
	TCPStateReceiving
)

func (s TCPState) String() string {
	switch s {
	case TCPStateLogin:
		return "Login"
	case TCPStateReceiving:
		return "Receiving"
	default:
		return "Disconnect"
	}
}

// UDPState is the live/resend channel's own sub-state.
type UDPState uint8

const (
	UDPStateDisconnect UDPState = iota
	UDPStateBinding
	UDPStateConnected
)

func (s UDPState) String() string {
	switch s {
	case UDPStateBinding:
		return "Binding"
	case UDPStateConnected:
		return "Connected"
	default:
		return "Disconnect"
	}
}
