package subscriber

import "fmt"

var (
	ErrLinkDown      = fmt.Errorf("subscriber: link is down")
	ErrResendTimeout = fmt.Errorf("subscriber: resend request timed out")
	ErrResendPending = fmt.Errorf("subscriber: a resend request is already outstanding on this link")
	ErrBadFrame      = fmt.Errorf("subscriber: malformed frame")
	ErrLoginTimeout  = fmt.Errorf("subscriber: login not acked within timeout")
	ErrNoChannels    = fmt.Errorf("subscriber: no channels configured")
)

func badFrameError(linkID string, err error) error {
	return fmt.Errorf("%w: link %s: %v", ErrBadFrame, linkID, err)
}
