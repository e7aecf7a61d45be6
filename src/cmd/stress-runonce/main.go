package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screen-annotate/src/singleinstance"
)

type stressOptions struct {
	n        int
	monitor  int
	deadline time.Duration
}

type counts struct {
	saved, cancelled, busy, notRunning, failed int32
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-runonce",
		Short:         "Stress test capture delegation against a running instance",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := stress(opts, singleinstance.NewClient())
			report(cmd.OutOrStdout(), opts.n, c)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().IntVar(&opts.monitor, "monitor", -1, "monitor to request (-1: under the cursor)")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 60*time.Second, "per-client timeout")

	return cmd
}

// stress launches opts.n concurrent delegations. Exactly one should reach the
// capture surface; the rest are expected to come back busy.
func stress(opts *stressOptions, client singleinstance.Client) *counts {
	var wg sync.WaitGroup
	c := &counts{}

	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			res, err := client.Delegate(ctx, singleinstance.Request{Monitor: opts.monitor})
			switch {
			case errors.Is(err, singleinstance.ErrBusy):
				atomic.AddInt32(&c.busy, 1)
			case err != nil:
				atomic.AddInt32(&c.failed, 1)
			case !res.Delegated:
				atomic.AddInt32(&c.notRunning, 1)
			case res.Cancelled:
				atomic.AddInt32(&c.cancelled, 1)
			default:
				atomic.AddInt32(&c.saved, 1)
			}
		}()
	}
	wg.Wait()
	return c
}

func report(w io.Writer, n int, c *counts) {
	fmt.Fprintf(w, "launched=%d saved=%d cancelled=%d busy=%d not-running=%d err=%d\n",
		n, c.saved, c.cancelled, c.busy, c.notRunning, c.failed)
}
