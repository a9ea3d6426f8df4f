// Package subscriber implements the multicast-feed subscriber link state
// machine: a TCP snapshot + login channel, a UDP live channel, and a UDP
// resend channel, reassembled into an ordered record stream that is
// replayed against a library.Library (spec section 4.9/4.10).
//
// Grounded in the teacher's live/live.go TCP dial-and-frame-read idiom
// (github.com/NimbleMarkets/dbn-go: bufio.Reader over net.Conn, a
// greeting/challenge/auth handshake) generalized from Databento's
// CRAM-SHA256 gateway handshake into this spec's plain Login/LoginAck
// exchange, and from the original's MxMDSubscriber.cc state machine.
package subscriber

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/net/ipv4"

	"github.com/nimblemarkets/mdbook/wire"
)

// ApplyFunc replays a decoded record against the owning library (spec
// section 2's data flow: "apply(record) -> Library -> shard-dispatch ->
// book mutation"). Implemented by *library.Library.Apply.
type ApplyFunc func(hdr wire.Hdr, body []byte) error

type queuedFrame struct {
	hdr  wire.Hdr
	body []byte
}

// gapState tracks an outstanding automatic resend request (spec 4.9: "On
// gap in UDP live stream: emit a ResendReq ... wait up to reReqInterval").
type gapState struct {
	seqNo     uint64
	count     uint32
	requested time.Time
}

// Link drives one channel's full TCP snapshot + UDP live + UDP resend
// connection lifecycle (spec 4.9).
type Link struct {
	ID     string
	cfg    LinkConfig
	tuning Tuning
	logger *slog.Logger
	apply  ApplyFunc

	mu          sync.Mutex
	state       LinkState
	tcpSub      TCPState
	udpSub      UDPState
	reconnects  int
	useAlt      bool
	lastTime    time.Time
	nextSeq     uint64 // next live seqNo this link will apply; 0 until EndOfSnapshot is seen
	snapshotSeq uint64
	gotSnapshot bool
	queue       map[uint64]queuedFrame
	queuedTotal uint64
	rxSeq       uint64 // highest seqNo ever applied, for status display
	txSeq       uint64 // number of ResendReq frames sent, for status display
	autoGap     *gapState

	resendMu      sync.Mutex
	manualWaiters map[uint64]chan *queuedFrame

	tcpConn    net.Conn
	liveConn   *net.UDPConn
	resendConn *net.UDPConn
}

// NewLink constructs a Link from its channel CSV row and the subscriber's
// shared tuning. apply is called once per record successfully reassembled
// into order.
func NewLink(cfg LinkConfig, tuning Tuning, logger *slog.Logger, apply ApplyFunc) *Link {
	if logger == nil {
		logger = slog.Default()
	}
	return &Link{
		ID:            cfg.ID,
		cfg:           cfg,
		tuning:        tuning,
		logger:        logger,
		apply:         apply,
		queue:         make(map[uint64]queuedFrame),
		manualWaiters: make(map[uint64]chan *queuedFrame),
	}
}

func (l *Link) setState(s LinkState) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// State returns the link's current overall state.
func (l *Link) State() LinkState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Run drives the link forever: connect, serve, and on any error
// (transport, login timeout, saturation) tear down and reconnect after
// tuning.ReconnectFreq, alternating between the primary and backup
// endpoints on every other attempt (spec 4.9: "toggle on odd reconnect
// count"). Returns only when ctx is done.
func (l *Link) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		err := l.connectAndServe(ctx)
		l.teardown()
		if ctx.Err() != nil {
			return
		}
		l.mu.Lock()
		l.reconnects++
		l.useAlt = l.reconnects%2 == 1
		l.mu.Unlock()
		l.logger.Warn("[Link.Run] reconnecting", "link", l.ID, "err", err, "attempt", l.reconnects)
		l.setState(StateDisconnected)
		select {
		case <-ctx.Done():
			return
		case <-time.After(l.tuning.ReconnectFreq):
		}
	}
}

func (l *Link) endpoint(primary, alt string) string {
	l.mu.Lock()
	useAlt := l.useAlt
	l.mu.Unlock()
	if useAlt && alt != "" {
		return alt
	}
	return primary
}

// connectAndServe performs one full connection lifecycle: dial TCP, bind
// UDP live + resend, login, stream the TCP snapshot, then serve the live
// UDP stream until a fatal error occurs.
func (l *Link) connectAndServe(ctx context.Context) error {
	l.setState(StateConnectingTCP)
	tcpAddr := l.endpoint(l.cfg.TCPAddr, l.cfg.TCPAddr2)
	conn, err := net.DialTimeout("tcp", tcpAddr, l.tuning.Timeout)
	if err != nil {
		return fmt.Errorf("[Link.connectAndServe] tcp dial %s: %w", tcpAddr, err)
	}
	l.tcpConn = conn
	l.touch()
	l.setState(StateTCPConnected)
	l.logger.Info("[Link.connectAndServe] tcp connected", "link", l.ID, "addr", tcpAddr)

	l.setState(StateUDPBinding)
	l.udpSubState(UDPStateBinding)
	udpAddr := l.endpoint(l.cfg.UDPAddr, l.cfg.UDPAddr2)
	liveConn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return fmt.Errorf("[Link.connectAndServe] udp live bind: %w", err)
	}
	l.liveConn = liveConn
	// Wrapping in ipv4.PacketConn gives access to per-packet control data
	// (interface index, TTL) the plain net.UDPConn API doesn't expose,
	// matching how a real multicast feed subscriber would bind a specific
	// NIC (spec section 6's subscriber.interface knob).
	pc := ipv4.NewPacketConn(liveConn)
	if l.cfg.UDPAddr != "" {
		if raddr, err := net.ResolveUDPAddr("udp", udpAddr); err == nil {
			if ifi := resolveInterface(l.tuning.Interface); ifi != nil {
				_ = pc.JoinGroup(ifi, &net.UDPAddr{IP: raddr.IP})
			}
		}
	}

	resendAddr := l.endpoint(l.cfg.ResendAddr, l.cfg.ResendAddr2)
	resendConn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return fmt.Errorf("[Link.connectAndServe] udp resend bind: %w", err)
	}
	l.resendConn = resendConn
	l.setState(StateUDPConnected)
	l.udpSubState(UDPStateConnected)
	l.logger.Info("[Link.connectAndServe] udp bound", "link", l.ID, "live", udpAddr, "resend", resendAddr)

	errCh := make(chan error, 3)
	var wg sync.WaitGroup
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg.Add(1)
	go func() { defer wg.Done(); errCh <- l.readLiveLoop(connCtx) }()
	wg.Add(1)
	go func() { defer wg.Done(); errCh <- l.readResendLoop(connCtx) }()
	wg.Add(1)
	go func() { defer wg.Done(); errCh <- l.heartbeatLoop(connCtx) }()

	// A single Scanner wraps l.tcpConn for the rest of the connection's
	// life: it buffers ahead of frame boundaries internally, so login's
	// LoginAck read and the snapshot read that follows it must share one
	// bufio.Reader or bytes buffered past LoginAck would be lost.
	scanner := wire.NewScanner(l.tcpConn)

	if err := l.login(scanner); err != nil {
		cancel()
		wg.Wait()
		return err
	}

	if err := l.streamSnapshot(connCtx, scanner); err != nil {
		cancel()
		wg.Wait()
		return err
	}

	l.setState(StateLive)
	l.logger.Info("[Link.connectAndServe] live", "link", l.ID)

	select {
	case err := <-errCh:
		cancel()
		wg.Wait()
		return err
	case <-ctx.Done():
		cancel()
		wg.Wait()
		return ctx.Err()
	}
}

func (l *Link) udpSubState(s UDPState) {
	l.mu.Lock()
	l.udpSub = s
	l.mu.Unlock()
}

func (l *Link) tcpSubState(s TCPState) {
	l.mu.Lock()
	l.tcpSub = s
	l.mu.Unlock()
}

// login sends a Login frame over TCP and blocks until LoginAck arrives or
// tuning.LoginTimeout elapses (spec 4.9: "A login-timeout guard drops TCP
// if not acked within the configured window").
func (l *Link) login(scanner *wire.Scanner) error {
	l.setState(StateLoginSent)
	l.tcpSubState(TCPStateLogin)

	var user [16]byte
	copy(user[:], l.cfg.TCPUsername)
	var pass48 [48]byte
	copy(pass48[:], l.cfg.TCPPassword)
	body := &wire.Login{User: user, Password: pass48}
	w := wire.NewWriter(l.tcpConn, 0)
	if _, err := w.Write(0, body); err != nil {
		return fmt.Errorf("[Link.login] write: %w", err)
	}

	l.tcpConn.SetReadDeadline(time.Now().Add(l.tuning.LoginTimeout))
	if !scanner.Next() {
		return fmt.Errorf("%w: %v", ErrLoginTimeout, scanner.Error())
	}
	if scanner.LastHeader().Type != wire.RecordType_LoginAck {
		return fmt.Errorf("[Link.login] expected LoginAck, got %s", scanner.LastHeader().Type)
	}
	l.tcpConn.SetReadDeadline(time.Time{})
	l.setState(StateLoginAcked)
	l.touch()
	return nil
}

// streamSnapshot reads TCP records directly (no queuing, per spec 4.9:
// "apply TCP directly until EndOfSnapshot{seqNo=X}") until EndOfSnapshot,
// then replays whatever UDP records were queued in the meantime with
// seqNo > X, in order.
func (l *Link) streamSnapshot(ctx context.Context, scanner *wire.Scanner) error {
	l.setState(StateSnapshotStreaming)
	l.tcpSubState(TCPStateReceiving)
	for scanner.Next() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		hdr := scanner.LastHeader()
		l.touch()
		if hdr.Type == wire.RecordType_EndOfSnapshot {
			var eos wire.EndOfSnapshot
			if err := scanner.Decode(&eos); err != nil {
				return badFrameError(l.ID, err)
			}
			l.setState(StateEndOfSnapshot)
			l.mu.Lock()
			l.nextSeq = eos.SeqNo + 1
			l.gotSnapshot = true
			l.mu.Unlock()
			l.drainQueue()
			return nil
		}
		body := make([]byte, len(scanner.LastBody()))
		copy(body, scanner.LastBody())
		if err := l.safeApply(hdr, body); err != nil {
			l.logger.Error("[Link.streamSnapshot] apply failed", "link", l.ID, "type", hdr.Type, "err", err)
		}
	}
	return fmt.Errorf("[Link.streamSnapshot] tcp read: %w", scanner.Error())
}

// readLiveLoop reads UDP live packets for the life of the connection,
// feeding each into onFrame for ordering/gap-detection.
func (l *Link) readLiveLoop(ctx context.Context) error {
	buf := make([]byte, 64*1024)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.liveConn.SetReadDeadline(time.Now().Add(time.Second))
		n, err := l.liveConn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("[Link.readLiveLoop] udp read: %w", err)
		}
		l.touch()
		hdr, body, err := decodeFrame(buf[:n])
		if err != nil {
			l.logger.Warn("[Link.readLiveLoop] malformed frame, dropping link", "link", l.ID, "err", err, "hex", fmt.Sprintf("%x", buf[:min(n, 64)]))
			return badFrameError(l.ID, err)
		}
		if err := l.onLiveFrame(hdr, body); err != nil {
			return err
		}
	}
}

// readResendLoop reads resend-channel packets, handing each to the matching
// manual Resend() waiter, if any, and also feeding it into the ordering
// machinery as a gap-fill.
func (l *Link) readResendLoop(ctx context.Context) error {
	buf := make([]byte, 64*1024)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.resendConn.SetReadDeadline(time.Now().Add(time.Second))
		n, err := l.resendConn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("[Link.readResendLoop] udp read: %w", err)
		}
		l.touch()
		hdr, body, err := decodeFrame(buf[:n])
		if err != nil {
			l.logger.Warn("[Link.readResendLoop] malformed frame", "link", l.ID, "err", err)
			continue
		}
		qf := &queuedFrame{hdr: hdr, body: body}

		l.resendMu.Lock()
		ch, waiting := l.manualWaiters[hdr.SeqNo]
		if waiting {
			delete(l.manualWaiters, hdr.SeqNo)
		}
		l.resendMu.Unlock()
		if waiting {
			ch <- qf
		}

		if err := l.onLiveFrame(hdr, body); err != nil {
			return err
		}
	}
}

// onLiveFrame is the single ordering/gap-detection entry point shared by
// the live and resend readers (spec 4.9/4.10, invariant 8).
func (l *Link) onLiveFrame(hdr wire.Hdr, body []byte) error {
	l.mu.Lock()
	if !l.gotSnapshot {
		// Still streaming the TCP snapshot: queue everything, don't apply
		// or gap-detect yet (spec 4.9: "Live (queuing while TCP snapshot,
		// live-streaming after)").
		l.queue[hdr.SeqNo] = queuedFrame{hdr: hdr, body: body}
		l.queuedTotal++
		overflow := uint64(len(l.queue)) > uint64(l.tuning.MaxQueueSize)
		l.mu.Unlock()
		if overflow {
			return fmt.Errorf("subscriber: rx queue exceeded maxQueueSize=%d", l.tuning.MaxQueueSize)
		}
		return nil
	}
	l.mu.Unlock()

	return l.ingest(hdr, body)
}

// ingest applies hdr/body if it is the next expected seqNo, buffers it
// ahead of a gap, or drops it as a stale duplicate (spec invariant 8).
func (l *Link) ingest(hdr wire.Hdr, body []byte) error {
	l.mu.Lock()
	switch {
	case hdr.SeqNo < l.nextSeq:
		l.mu.Unlock()
		return nil // stale duplicate, already applied
	case hdr.SeqNo == l.nextSeq:
		l.mu.Unlock()
		if err := l.safeApply(hdr, body); err != nil {
			l.logger.Error("[Link.ingest] apply failed", "link", l.ID, "type", hdr.Type, "err", err)
		}
		l.mu.Lock()
		l.nextSeq++
		l.rxSeq = hdr.SeqNo
		l.clearGapIfSatisfied()
		l.mu.Unlock()
		l.drainQueue()
		return nil
	default:
		gapSize := hdr.SeqNo - l.nextSeq
		l.queue[hdr.SeqNo] = queuedFrame{hdr: hdr, body: body}
		l.queuedTotal++
		overflow := uint64(len(l.queue)) > uint64(l.tuning.MaxQueueSize)
		tooBig := gapSize > l.tuning.ReReqMaxGap
		needsReq := l.autoGap == nil
		start := l.nextSeq
		l.mu.Unlock()
		if tooBig || overflow {
			return fmt.Errorf("subscriber: gap %d exceeds reReqMaxGap=%d (or queue overflow)", gapSize, l.tuning.ReReqMaxGap)
		}
		if needsReq {
			l.requestResend(start, uint32(gapSize))
		}
		return nil
	}
}

// drainQueue applies any buffered frames now contiguous with nextSeq.
func (l *Link) drainQueue() {
	for {
		l.mu.Lock()
		qf, ok := l.queue[l.nextSeq]
		if !ok {
			l.mu.Unlock()
			return
		}
		delete(l.queue, l.nextSeq)
		next := l.nextSeq
		l.mu.Unlock()

		if err := l.safeApply(qf.hdr, qf.body); err != nil {
			l.logger.Error("[Link.drainQueue] apply failed", "link", l.ID, "type", qf.hdr.Type, "err", err)
		}
		l.mu.Lock()
		l.nextSeq = next + 1
		l.rxSeq = next
		l.clearGapIfSatisfied()
		l.mu.Unlock()
	}
}

// clearGapIfSatisfied drops the outstanding auto-gap record once nextSeq
// has caught up to or past it. Caller holds l.mu.
func (l *Link) clearGapIfSatisfied() {
	if l.autoGap != nil && l.nextSeq >= l.autoGap.seqNo+uint64(l.autoGap.count) {
		l.autoGap = nil
	}
}

func (l *Link) safeApply(hdr wire.Hdr, body []byte) error {
	if l.apply == nil {
		return nil
	}
	return l.apply(hdr, body)
}

func (l *Link) touch() {
	l.mu.Lock()
	l.lastTime = time.Now()
	l.mu.Unlock()
}

// heartbeatLoop fires every second, forcing a reconnect after
// tuning.Timeout of silence across the TCP, live and resend channels,
// counted from the TCP connect at the latest (spec 4.9:
// "Heartbeat: ... after timeout seconds of inactivity, force a
// reconnect").
func (l *Link) heartbeatLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.mu.Lock()
			idle := time.Since(l.lastTime)
			l.mu.Unlock()
			if idle > l.tuning.Timeout {
				return fmt.Errorf("subscriber: idle timeout after %s", idle)
			}
			l.checkAutoGapRetry()
		}
	}
}

// checkAutoGapRetry re-sends an outstanding automatic gap request once
// reReqInterval has elapsed without resolution (spec 4.9).
func (l *Link) checkAutoGapRetry() {
	l.mu.Lock()
	gap := l.autoGap
	var reissue bool
	if gap != nil && time.Since(gap.requested) > l.tuning.ReReqInterval {
		reissue = true
	}
	l.mu.Unlock()
	if reissue {
		l.requestResend(gap.seqNo, gap.count)
	}
}

// requestResend sends a ResendReq over the resend channel and records it
// as the link's outstanding automatic gap.
func (l *Link) requestResend(seqNo uint64, count uint32) {
	l.mu.Lock()
	l.autoGap = &gapState{seqNo: seqNo, count: count, requested: time.Now()}
	l.txSeq++
	l.mu.Unlock()

	if err := l.sendResendReq(seqNo, count); err != nil {
		l.logger.Warn("[Link.requestResend] send failed", "link", l.ID, "seqNo", seqNo, "count", count, "err", err)
	} else {
		l.logger.Info("[Link.requestResend]", "link", l.ID, "seqNo", seqNo, "count", count)
	}
}

func (l *Link) sendResendReq(seqNo uint64, count uint32) error {
	body := &wire.ResendReq{SeqNo: seqNo, Count: count}
	buf := make([]byte, wire.HdrSize+body.Size())
	hdr := wire.Hdr{SeqNo: seqNo, BodyLen: uint16(body.Size()), Type: wire.RecordType_ResendReq}
	hdr.Encode(buf[:wire.HdrSize])
	body.Encode(buf[wire.HdrSize:])
	addr := l.endpoint(l.cfg.ResendAddr, l.cfg.ResendAddr2)
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	_, err = l.resendConn.WriteToUDP(buf, raddr)
	return err
}

// Resend issues a manual resend request (spec 4.9: "a manual resend(seqNo,
// count) records the outstanding gap, sends the request, waits on a
// semaphore with reReqInterval timeout, and either returns the matched
// message or null"). It never blocks the Rx goroutines: the wait happens
// on a private channel registered under resendMu.
func (l *Link) Resend(ctx context.Context, seqNo uint64, count uint32) (*wire.Hdr, []byte, error) {
	ch := make(chan *queuedFrame, 1)
	l.resendMu.Lock()
	if _, exists := l.manualWaiters[seqNo]; exists {
		l.resendMu.Unlock()
		return nil, nil, ErrResendPending
	}
	l.manualWaiters[seqNo] = ch
	l.resendMu.Unlock()

	if err := l.sendResendReq(seqNo, count); err != nil {
		l.resendMu.Lock()
		delete(l.manualWaiters, seqNo)
		l.resendMu.Unlock()
		return nil, nil, err
	}

	timer := time.NewTimer(l.tuning.ReReqInterval)
	defer timer.Stop()
	select {
	case qf := <-ch:
		if qf == nil {
			// teardown() closed ch on reconnect without a match arriving
			// (spec 5: "pending subscriber-side resend waiters are woken
			// with null").
			return nil, nil, ErrLinkDown
		}
		return &qf.hdr, qf.body, nil
	case <-timer.C:
		l.resendMu.Lock()
		delete(l.manualWaiters, seqNo)
		l.resendMu.Unlock()
		return nil, nil, ErrResendTimeout
	case <-ctx.Done():
		l.resendMu.Lock()
		delete(l.manualWaiters, seqNo)
		l.resendMu.Unlock()
		return nil, nil, ctx.Err()
	}
}

func (l *Link) teardown() {
	if l.tcpConn != nil {
		l.tcpConn.Close()
		l.tcpConn = nil
	}
	if l.liveConn != nil {
		l.liveConn.Close()
		l.liveConn = nil
	}
	if l.resendConn != nil {
		l.resendConn.Close()
		l.resendConn = nil
	}
	l.mu.Lock()
	l.queue = make(map[uint64]queuedFrame)
	l.gotSnapshot = false
	l.nextSeq = 0
	l.autoGap = nil
	l.udpSub = UDPStateDisconnect
	l.tcpSub = TCPStateDisconnect
	l.mu.Unlock()

	// Wake any manual resend waiters rather than leave them hanging across
	// a reconnect (spec 5: "pending subscriber-side resend waiters are
	// woken with null").
	l.resendMu.Lock()
	for seq, ch := range l.manualWaiters {
		close(ch)
		delete(l.manualWaiters, seq)
	}
	l.resendMu.Unlock()
}

func decodeFrame(buf []byte) (wire.Hdr, []byte, error) {
	var hdr wire.Hdr
	if err := hdr.Decode(buf); err != nil {
		return hdr, nil, err
	}
	if wire.HdrSize+int(hdr.BodyLen) > len(buf) {
		return hdr, nil, badFrameError("", fmt.Errorf("truncated frame: have %d want %d", len(buf), wire.HdrSize+int(hdr.BodyLen)))
	}
	if want, ok := wire.ExpectedBodySize(hdr.Type); ok && want != int(hdr.BodyLen) {
		return hdr, nil, badFrameError("", fmt.Errorf("type %s: bodyLen %d != %d", hdr.Type, hdr.BodyLen, want))
	}
	body := make([]byte, hdr.BodyLen)
	copy(body, buf[wire.HdrSize:wire.HdrSize+int(hdr.BodyLen)])
	return hdr, body, nil
}

func resolveInterface(name string) *net.Interface {
	if name == "" {
		return nil
	}
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return ifi
}
