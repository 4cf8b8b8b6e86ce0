package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/ports"
	"go.uber.org/zap"
)

const (
	defaultSettleWindow = 250 * time.Millisecond
	interruptTimeout    = 2 * time.Second
)

var errKernelChannelsClosed = errors.New("kernel channels closed")

type collectOptions struct {
	Timeout time.Duration
	// Settle bounds how long output is still drained after the shell reply
	// when the idle status has not been seen yet.
	Settle time.Duration
	Logger *zap.Logger
}

// collection is everything observed for one request, complete or partial.
type collection struct {
	stdout   strings.Builder
	stderr   strings.Builder
	result   *string
	displays []domain.DisplayPayload
	results  []domain.MimeBundle
	reply    *domain.ExecuteReply
	errSeen  bool
	idle     bool
}

func (c *collection) local() domain.ExecutionResult {
	stderr := c.stderr.String()
	return domain.ExecutionResult{
		Stdout:  c.stdout.String(),
		Stderr:  stderr,
		Result:  c.result,
		Success: stderr == "",
	}
}

func (c *collection) rich() domain.RichExecutionResult {
	base := c.local()
	base.Success = c.reply != nil && c.reply.Status == domain.ReplyOK && !c.errSeen

	displays := c.displays
	if displays == nil {
		displays = []domain.DisplayPayload{}
	}
	results := c.results
	if results == nil {
		results = []domain.MimeBundle{}
	}

	return domain.RichExecutionResult{
		ExecutionResult: base,
		Displays:        displays,
		Results:         results,
	}
}

func (c *collection) apply(msg domain.KernelMessage) {
	switch m := msg.(type) {
	case domain.Stream:
		if m.Name == domain.StreamStderr {
			c.stderr.WriteString(m.Text)
			return
		}
		c.stdout.WriteString(m.Text)
	case domain.ExecuteResult:
		c.results = append(c.results, m.Data)
		if text, ok := m.Data.Text(); ok {
			c.result = &text
		}
	case domain.DisplayData:
		if payload, ok := domain.DisplayFromBundle(m.Data); ok {
			c.displays = append(c.displays, payload)
		}
	case domain.Status:
		if m.State == domain.StateIdle {
			c.idle = true
		}
	case domain.KernelError:
		c.errSeen = true
		c.stderr.WriteString(m.Diagnostic())
	}
}

// finish folds an error reply into stderr when the matching error message
// never arrived on the output channel.
func (c *collection) finish() {
	if c.reply == nil || c.reply.Status != domain.ReplyError || c.errSeen {
		return
	}
	c.errSeen = true
	c.stderr.WriteString(domain.KernelError{
		Name:      c.reply.ErrorName,
		Value:     c.reply.ErrorValue,
		Traceback: c.reply.Traceback,
	}.Diagnostic())
}

// collect submits code and gathers its output until the shell reply has
// arrived and the output channel has gone idle for the request. One budget
// covers the whole exchange; when it runs out, or ctx is cancelled, the
// kernel is interrupted and the partial collection is returned.
func collect(ctx context.Context, client ports.KernelClient, code string, opts collectOptions) (*collection, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = domain.DefaultExecutionTimeout
	}
	if opts.Settle <= 0 {
		opts.Settle = defaultSettleWindow
	}

	drainStale(client)

	c := &collection{}
	deadline := time.Now().Add(opts.Timeout)
	msgID, err := client.Execute(ctx, code)
	if err != nil {
		return c, fmt.Errorf("submit execute request: %w", err)
	}

	budget := time.NewTimer(opts.Timeout)
	defer budget.Stop()

	var settle <-chan time.Time
	iopub := client.IOPub()
	replies := client.Replies()

	for {
		select {
		case <-ctx.Done():
			interrupt(client, opts.Logger)
			return c, ctx.Err()

		case <-budget.C:
			interrupt(client, opts.Logger)
			c.finish()
			return c, fmt.Errorf("execution exceeded %s: %w", opts.Timeout, domain.ErrTimeout)

		case <-settle:
			c.finish()
			return c, nil

		case msg, ok := <-iopub:
			if !ok {
				return c, &domain.ConnectivityError{Target: "kernel", Err: errKernelChannelsClosed}
			}
			if msg.ParentID() != msgID {
				continue
			}
			c.apply(msg)
			if c.idle && c.reply != nil {
				c.finish()
				return c, nil
			}

		case reply, ok := <-replies:
			if !ok {
				return c, &domain.ConnectivityError{Target: "kernel", Err: errKernelChannelsClosed}
			}
			if reply.Parent != msgID {
				continue
			}
			c.reply = &reply
			if c.idle {
				c.finish()
				return c, nil
			}
			wait := min(opts.Settle, time.Until(deadline))
			if wait < 0 {
				wait = 0
			}
			timer := time.NewTimer(wait)
			defer timer.Stop()
			settle = timer.C
		}
	}
}

// drainStale discards output left over from earlier requests without
// blocking.
func drainStale(client ports.KernelClient) {
	for {
		select {
		case _, ok := <-client.IOPub():
			if !ok {
				return
			}
		case _, ok := <-client.Replies():
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func interrupt(client ports.KernelClient, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), interruptTimeout)
	defer cancel()
	if err := client.Interrupt(ctx); err != nil && logger != nil {
		logger.Warn("interrupt kernel", zap.Error(err))
	}
}
