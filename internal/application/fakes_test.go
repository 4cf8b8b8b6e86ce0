package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/ports"
	"github.com/stretchr/testify/mock"
)

func mockAnyContext() interface{} {
	return mock.Anything
}

// step is one thing a fake kernel emits in response to an execute request.
type step struct {
	msg   domain.KernelMessage
	reply *domain.ExecuteReply
	delay time.Duration
}

type script func(msgID, code string, vars map[string]string) []step

// fakeKernel is an in-memory interpreter client. Code of the form
// "set k v" stores a variable, "get k" prints it and "sleep" never finishes
// until interrupted. Anything else is answered by the script, if any.
type fakeKernel struct {
	iopub   chan domain.KernelMessage
	replies chan domain.ExecuteReply
	done    chan struct{}

	mu          sync.Mutex
	vars        map[string]string
	seq         int
	executed    []string
	interruptCh chan struct{}
	script      script
	infoErr     error
	infoBlocks  bool

	interrupts atomic.Int32
	infoCalls  atomic.Int32
	closed     atomic.Bool
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

var _ ports.KernelClient = (*fakeKernel)(nil)

func newFakeKernel() *fakeKernel {
	return &fakeKernel{
		iopub:       make(chan domain.KernelMessage, 64),
		replies:     make(chan domain.ExecuteReply, 64),
		done:        make(chan struct{}),
		vars:        map[string]string{},
		interruptCh: make(chan struct{}),
	}
}

func (k *fakeKernel) IOPub() <-chan domain.KernelMessage { return k.iopub }

func (k *fakeKernel) Replies() <-chan domain.ExecuteReply { return k.replies }

func (k *fakeKernel) Execute(ctx context.Context, code string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if k.closed.Load() {
		return "", errors.New("closed")
	}

	k.mu.Lock()
	k.seq++
	msgID := fmt.Sprintf("msg-%d", k.seq)
	k.executed = append(k.executed, code)
	steps := k.plan(msgID, code)
	interrupted := k.interruptCh
	k.mu.Unlock()

	k.wg.Add(1)
	go k.emit(msgID, steps, interrupted)
	return msgID, nil
}

// plan runs with k.mu held.
func (k *fakeKernel) plan(msgID, code string) []step {
	busy := step{msg: domain.Status{Parent: msgID, State: domain.StateBusy}}
	idle := step{msg: domain.Status{Parent: msgID, State: domain.StateIdle}}
	ok := step{reply: &domain.ExecuteReply{Parent: msgID, Status: domain.ReplyOK}}

	fields := strings.Fields(code)
	switch {
	case len(fields) == 3 && fields[0] == "set":
		k.vars[fields[1]] = fields[2]
		return []step{busy, ok, idle}
	case len(fields) == 2 && fields[0] == "get":
		value, found := k.vars[fields[1]]
		if !found {
			return []step{
				busy,
				{msg: domain.KernelError{Parent: msgID, Name: "NameError", Value: fmt.Sprintf("name '%s' is not defined", fields[1])}},
				{reply: &domain.ExecuteReply{Parent: msgID, Status: domain.ReplyError, ErrorName: "NameError"}},
				idle,
			}
		}
		return []step{
			busy,
			{msg: domain.Stream{Parent: msgID, Name: domain.StreamStdout, Text: value + "\n"}},
			ok,
			idle,
		}
	case code == "sleep":
		return []step{busy, {delay: time.Hour}, ok, idle}
	case k.script != nil:
		return k.script(msgID, code, k.vars)
	default:
		return []step{busy, ok, idle}
	}
}

func (k *fakeKernel) emit(msgID string, steps []step, interrupted <-chan struct{}) {
	defer k.wg.Done()

	for _, s := range steps {
		if s.delay > 0 {
			timer := time.NewTimer(s.delay)
			select {
			case <-timer.C:
			case <-k.done:
				timer.Stop()
				return
			case <-interrupted:
				timer.Stop()
				k.send(step{msg: domain.KernelError{Parent: msgID, Name: "KeyboardInterrupt"}})
				k.send(step{reply: &domain.ExecuteReply{Parent: msgID, Status: domain.ReplyError, ErrorName: "KeyboardInterrupt"}})
				k.send(step{msg: domain.Status{Parent: msgID, State: domain.StateIdle}})
				return
			}
			continue
		}
		k.send(s)
	}
}

func (k *fakeKernel) send(s step) {
	if s.msg != nil {
		select {
		case k.iopub <- s.msg:
		case <-k.done:
		}
	}
	if s.reply != nil {
		select {
		case k.replies <- *s.reply:
		case <-k.done:
		}
	}
}

func (k *fakeKernel) KernelInfo(ctx context.Context) error {
	k.infoCalls.Add(1)
	k.mu.Lock()
	infoErr, blocks := k.infoErr, k.infoBlocks
	k.mu.Unlock()

	if k.closed.Load() {
		return errors.New("closed")
	}
	if blocks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-k.done:
			return errors.New("closed")
		}
	}
	return infoErr
}

func (k *fakeKernel) setInfo(err error, blocks bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.infoErr = err
	k.infoBlocks = blocks
}

func (k *fakeKernel) Interrupt(context.Context) error {
	k.interrupts.Add(1)
	k.mu.Lock()
	close(k.interruptCh)
	k.interruptCh = make(chan struct{})
	k.mu.Unlock()
	return nil
}

func (k *fakeKernel) Close() error {
	k.closeOnce.Do(func() {
		k.closed.Store(true)
		close(k.done)
		k.wg.Wait()
		close(k.iopub)
		close(k.replies)
	})
	return nil
}

func (k *fakeKernel) executedCode() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.executed...)
}

type fakeProcess struct {
	info  domain.ConnectionInfo
	alive atomic.Bool
	kills atomic.Int32
}

func (p *fakeProcess) ConnectionInfo() domain.ConnectionInfo { return p.info }

func (p *fakeProcess) Alive() bool { return p.alive.Load() }

func (p *fakeProcess) Kill() error {
	p.kills.Add(1)
	p.alive.Store(false)
	return nil
}

type fakeLauncher struct {
	mu        sync.Mutex
	specs     []ports.KernelSpec
	processes []*fakeProcess
	err       error
}

func (l *fakeLauncher) Launch(ctx context.Context, spec ports.KernelSpec) (ports.KernelProcess, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.specs = append(l.specs, spec)
	p := &fakeProcess{info: domain.ConnectionInfo{IP: "127.0.0.1", ShellPort: 1, IOPubPort: 2, ControlPort: 3}}
	p.alive.Store(true)
	l.processes = append(l.processes, p)
	return p, nil
}

// fakeDialer hands out a fresh fakeKernel per dial. configure, when set, runs
// on each kernel before it is returned.
type fakeDialer struct {
	mu        sync.Mutex
	kernels   []*fakeKernel
	infos     []domain.ConnectionInfo
	err       error
	configure func(*fakeKernel)
}

func (d *fakeDialer) Dial(ctx context.Context, info domain.ConnectionInfo) (ports.KernelClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	k := newFakeKernel()
	if d.configure != nil {
		d.configure(k)
	}
	d.kernels = append(d.kernels, k)
	d.infos = append(d.infos, info)
	return k, nil
}

func (d *fakeDialer) kernel(i int) *fakeKernel {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.kernels[i]
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.kernels)
}

func (d *fakeDialer) closeAll() {
	d.mu.Lock()
	kernels := append([]*fakeKernel(nil), d.kernels...)
	d.mu.Unlock()
	for _, k := range kernels {
		_ = k.Close()
	}
}
