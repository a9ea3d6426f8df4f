// Package diag implements the two diagnostic commands the spec's shell
// collaborator invokes against a running subscriber (spec section 6):
// subscriber.status and subscriber.resend. Neither exits the process;
// both write to the command's output stream, in the teacher's cobra CLI
// idiom (cmd/dbn-go-hist/main.go).
package diag

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nimblemarkets/mdbook/subscriber"
)

// NewRootCmd builds the diagnostic command tree over sub. Wire it into a
// host process's own cobra root with AddCommand, or run it standalone
// from cmd/mdbookd.
func NewRootCmd(sub *subscriber.Subscriber) *cobra.Command {
	root := &cobra.Command{
		Use:   "subscriber",
		Short: "Inspect and operate a running subscriber",
	}
	root.AddCommand(newStatusCmd(sub))
	root.AddCommand(newResendCmd(sub))
	return root
}

func newStatusCmd(sub *subscriber.Subscriber) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Prints per-link state: endpoints, credentials, engine state, Rx/Tx sequencing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			links := sub.Links()
			sort.Slice(links, func(i, j int) bool { return links[i].ID < links[j].ID })
			out := cmd.OutOrStdout()
			for _, l := range links {
				st := l.Status()
				fmt.Fprintf(out, "link %s: state=%s reconnects=%d useAlt=%v\n", st.ID, st.State, st.Reconnects, st.UseAlt)
				fmt.Fprintf(out, "  tcp:    %s / %s  (sub=%s)  user=%s\n", st.TCPAddr, st.TCPAddr2, st.TCPSub, st.TCPUsername)
				fmt.Fprintf(out, "  udp:    %s / %s  (sub=%s)\n", st.UDPAddr, st.UDPAddr2, st.UDPSub)
				fmt.Fprintf(out, "  resend: %s / %s\n", st.ResendAddr, st.ResendAddr2)
				fmt.Fprintf(out, "  rx: nextSeq=%d rxSeq=%d txSeq=%d queueLen=%d queueTotal=%s\n",
					st.NextSeq, st.RxSeq, st.TxSeq, st.QueueLen, humanize.Comma(int64(st.QueueTotal)))
				if st.HasGap {
					fmt.Fprintf(out, "  gap: outstanding from seqNo=%d count=%d\n", st.GapSeqNo, st.GapCount)
				}
			}
			return nil
		},
	}
}

func newResendCmd(sub *subscriber.Subscriber) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "resend LINK SEQNO COUNT",
		Short: "Issues a manual resend request and prints the first returned record as a hex dump, or 'timed out'",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			linkID, seqNo, count, err := parseResendArgs(args)
			if err != nil {
				return err
			}
			l, ok := sub.Link(linkID)
			if !ok {
				return fmt.Errorf("diag: unknown link %q", linkID)
			}

			ctx := context.Background()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			hdr, body, err := l.Resend(ctx, seqNo, count)
			out := cmd.OutOrStdout()
			if err != nil {
				fmt.Fprintln(out, "timed out")
				return nil
			}
			fmt.Fprintf(out, "seqNo=%d type=%s\n%s\n", hdr.SeqNo, hdr.Type, hexDump(body))
			return nil
		},
	}
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "Stop waiting after this long; the wait still ends at the link's configured reReqInterval if that comes first")
	return cmd
}
