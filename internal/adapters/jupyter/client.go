package jupyter

import (
	"context"
	"errors"
	"fmt"
	"os/user"
	"sync"
	"sync/atomic"

	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/logging"
	"github.com/bnema/orca/internal/ports"
	"github.com/bytedance/sonic"
	"github.com/go-zeromq/zmq4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const channelBuffer = 256

var ErrClientClosed = errors.New("kernel client closed")

// Dialer opens ZeroMQ channels to a running kernel.
type Dialer struct {
	logger *zap.Logger
}

var (
	_ ports.KernelDialer = (*Dialer)(nil)
	_ ports.KernelClient = (*Client)(nil)
)

func NewDialer(logger *zap.Logger) *Dialer {
	return &Dialer{logger: logging.OrNop(logger).Named("jupyter")}
}

// flight is the execute request whose output must not be dropped. over is
// closed once a newer request replaces it.
type flight struct {
	msgID string
	over  chan struct{}
}

// Client holds the shell, control and iopub channels of one kernel.
type Client struct {
	codec    *Codec
	session  string
	username string
	logger   *zap.Logger

	shell   zmq4.Socket
	control zmq4.Socket
	iopub   zmq4.Socket

	iopubCh chan domain.KernelMessage
	replyCh chan domain.ExecuteReply
	done    chan struct{}

	sendMu  sync.Mutex
	mu      sync.Mutex
	waiters map[string]chan Message
	flight  *flight
	dropped atomic.Uint64

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func (d *Dialer) Dial(ctx context.Context, info domain.ConnectionInfo) (ports.KernelClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}

	codec, err := NewCodec(info.Key, info.SignatureScheme)
	if err != nil {
		return nil, err
	}

	sockCtx, cancel := context.WithCancel(context.Background())
	identity := zmq4.WithID(zmq4.SocketIdentity(uuid.NewString()))

	c := &Client{
		codec:    codec,
		session:  uuid.NewString(),
		username: currentUsername(),
		logger:   d.logger.With(zap.String("kernel", info.IP)),
		shell:    zmq4.NewDealer(sockCtx, identity),
		control:  zmq4.NewDealer(sockCtx, identity),
		iopub:    zmq4.NewSub(sockCtx),
		iopubCh:  make(chan domain.KernelMessage, channelBuffer),
		replyCh:  make(chan domain.ExecuteReply, channelBuffer),
		done:     make(chan struct{}),
		waiters:  map[string]chan Message{},
		cancel:   cancel,
	}

	if err := c.dial(info); err != nil {
		c.closeSockets()
		cancel()
		return nil, &domain.ConnectivityError{Target: "kernel " + info.IP, Err: err}
	}

	if err := ctx.Err(); err != nil {
		c.closeSockets()
		cancel()
		return nil, err
	}

	c.wg.Add(3)
	go c.readIOPub()
	go c.readShell()
	go c.readControl()

	return c, nil
}

func (c *Client) dial(info domain.ConnectionInfo) error {
	if err := c.iopub.Dial(endpoint(info, info.IOPubPort)); err != nil {
		return fmt.Errorf("dial iopub: %w", err)
	}
	if err := c.iopub.SetOption(zmq4.OptionSubscribe, ""); err != nil {
		return fmt.Errorf("subscribe iopub: %w", err)
	}
	if err := c.shell.Dial(endpoint(info, info.ShellPort)); err != nil {
		return fmt.Errorf("dial shell: %w", err)
	}
	if err := c.control.Dial(endpoint(info, info.ControlPort)); err != nil {
		return fmt.Errorf("dial control: %w", err)
	}
	return nil
}

func (c *Client) IOPub() <-chan domain.KernelMessage { return c.iopubCh }

func (c *Client) Replies() <-chan domain.ExecuteReply { return c.replyCh }

func (c *Client) Execute(ctx context.Context, code string) (string, error) {
	content, err := sonic.Marshal(executeRequestContent{
		Code:            code,
		StoreHistory:    true,
		UserExpressions: map[string]any{},
		StopOnError:     true,
	})
	if err != nil {
		return "", fmt.Errorf("encode execute request: %w", err)
	}

	header := newHeader(c.session, c.username, msgExecuteRequest)
	c.beginFlight(header.MsgID)
	if err := c.send(ctx, c.shell, Message{Header: header, Content: content}); err != nil {
		return "", err
	}
	return header.MsgID, nil
}

// Dropped reports how many queued messages were discarded because nobody was
// reading them.
func (c *Client) Dropped() uint64 { return c.dropped.Load() }

func (c *Client) beginFlight(msgID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flight != nil {
		close(c.flight.over)
	}
	c.flight = &flight{msgID: msgID, over: make(chan struct{})}
}

// flightOver returns the release channel of the current request when parent
// is that request, or nil.
func (c *Client) flightOver(parent string) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flight == nil || c.flight.msgID != parent {
		return nil
	}
	return c.flight.over
}

// KernelInfo round-trips a kernel_info_request on the shell channel. It is
// used as the readiness and liveness probe.
func (c *Client) KernelInfo(ctx context.Context) error {
	_, err := c.request(ctx, c.shell, msgKernelInfoRequest)
	return err
}

func (c *Client) Interrupt(ctx context.Context) error {
	_, err := c.request(ctx, c.control, msgInterruptRequest)
	return err
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.cancel()
		c.closeSockets()
		c.wg.Wait()
		close(c.iopubCh)
		close(c.replyCh)
	})
	return nil
}

func (c *Client) request(ctx context.Context, sock zmq4.Socket, msgType string) (Message, error) {
	header := newHeader(c.session, c.username, msgType)
	wait := make(chan Message, 1)

	c.mu.Lock()
	c.waiters[header.MsgID] = wait
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.waiters, header.MsgID)
		c.mu.Unlock()
	}()

	if err := c.send(ctx, sock, Message{Header: header}); err != nil {
		return Message{}, err
	}

	select {
	case reply := <-wait:
		return reply, nil
	case <-c.done:
		return Message{}, ErrClientClosed
	case <-ctx.Done():
		return Message{}, fmt.Errorf("wait for %s reply: %w", msgType, ctx.Err())
	}
}

func (c *Client) send(ctx context.Context, sock zmq4.Socket, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	frames, err := c.codec.Encode(msg)
	if err != nil {
		return err
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := sock.SendMulti(zmq4.NewMsgFrom(frames...)); err != nil {
		return &domain.ConnectivityError{Target: "kernel", Err: fmt.Errorf("send %s: %w", msg.Header.MsgType, err)}
	}
	return nil
}

func (c *Client) readIOPub() {
	defer c.wg.Done()
	c.readLoop(c.iopub, "iopub", func(msg Message) {
		out, ok, err := toKernelMessage(msg)
		if err != nil {
			c.logger.Debug("drop iopub message", zap.String("msg_type", msg.Header.MsgType), zap.Error(err))
			return
		}
		if ok {
			deliver(c, c.iopubCh, out, out.ParentID())
		}
	})
}

func (c *Client) readShell() {
	defer c.wg.Done()
	c.readLoop(c.shell, "shell", func(msg Message) {
		if msg.Header.MsgType != msgExecuteReply {
			c.resolve(msg)
			return
		}
		reply, err := toExecuteReply(msg)
		if err != nil {
			c.logger.Debug("drop execute reply", zap.Error(err))
			return
		}
		deliver(c, c.replyCh, reply, reply.Parent)
	})
}

func (c *Client) readControl() {
	defer c.wg.Done()
	c.readLoop(c.control, "control", c.resolve)
}

func (c *Client) readLoop(sock zmq4.Socket, name string, handle func(Message)) {
	for {
		raw, err := sock.Recv()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Debug("channel closed", zap.String("channel", name), zap.Error(err))
			}
			return
		}

		msg, err := c.codec.Decode(raw.Frames)
		if err != nil {
			c.logger.Debug("drop malformed message", zap.String("channel", name), zap.Error(err))
			continue
		}
		handle(msg)
	}
}

func (c *Client) resolve(msg Message) {
	c.mu.Lock()
	wait, ok := c.waiters[msg.ParentHeader.MsgID]
	c.mu.Unlock()
	if !ok {
		return
	}

	select {
	case wait <- msg:
	default:
	}
}

func (c *Client) closeSockets() {
	for _, sock := range []zmq4.Socket{c.shell, c.control, c.iopub} {
		if sock != nil {
			_ = sock.Close()
		}
	}
}

// deliver queues v on ch. Output of the request in flight waits for room
// until the client closes or a newer request starts. Anything else replaces
// the oldest queued value when the channel is full; consumers filter by
// parent id, so stale entries are never needed.
func deliver[T any](c *Client, ch chan T, v T, parent string) {
	if over := c.flightOver(parent); over != nil {
		select {
		case ch <- v:
			return
		case <-c.done:
			return
		case <-over:
		}
	}

	for {
		select {
		case <-c.done:
			return
		case ch <- v:
			return
		default:
		}

		select {
		case <-ch:
			n := c.dropped.Add(1)
			c.logger.Warn("kernel channel full; dropped oldest message", zap.String("parent", parent), zap.Uint64("dropped_total", n))
		default:
		}
	}
}

func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "orca"
}
