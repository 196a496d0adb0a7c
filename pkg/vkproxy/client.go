package vkproxy

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/go-ctap/vkapi/pkg/options"
	"github.com/go-ctap/vkapi/pkg/vkx"
)

// Client is a vkx.Engine whose commands run on a remote Server. Callbacks
// are invoked on the client's reader goroutine in the order the server sent
// them.
type Client struct {
	conn    io.ReadWriteCloser
	logger  *slog.Logger
	writeMu sync.Mutex
	reqMu   sync.Mutex
	replies chan *Message

	cbMu sync.RWMutex
	cb   vkx.Callbacks

	done chan struct{}
	err  error
}

var _ vkx.Engine = (*Client)(nil)

// NewClient speaks the proxy protocol over conn and starts reading from it.
func NewClient(conn io.ReadWriteCloser, opts ...options.Option) *Client {
	oo := options.NewOptions(opts...)

	c := &Client{
		conn:    conn,
		logger:  oo.Logger.With("component", "vkproxy-client"),
		replies: make(chan *Message, 1),
		done:    make(chan struct{}),
	}
	go c.read()
	return c
}

func (c *Client) Close() error {
	err := c.conn.Close()
	<-c.done
	return err
}

// Err returns why the reader stopped, once it has.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

func (c *Client) read() {
	defer close(c.done)
	for {
		msg, err := ParseMessage(c.conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.logger.Debug("read failed", "err", err)
			}
			c.err = err
			return
		}

		if msg.Command == CommandReply {
			select {
			case c.replies <- msg:
			default:
				c.logger.Warn("reply without request")
			}
			continue
		}

		if err := c.dispatch(msg); err != nil {
			c.logger.Warn("cannot dispatch callback", "command", msg.Command.String(), "err", err)
		}
	}
}

func (c *Client) callbacks() vkx.Callbacks {
	c.cbMu.RLock()
	defer c.cbMu.RUnlock()
	return c.cb
}

func (c *Client) dispatch(msg *Message) error {
	var ev callback
	if err := msg.Decode(&ev); err != nil {
		return err
	}

	cb := c.callbacks()
	var retry bool
	switch msg.Command {
	case CommandStatus:
		if cb != nil {
			cb.OnStatus(vkx.Status(ev.Code))
		}
	case CommandProgress:
		if cb != nil {
			cb.OnEnrollProgress(ev.Code)
		}
	case CommandError:
		if cb != nil {
			retry = cb.OnError(vkx.Result(ev.Code))
		}
	case CommandTemplate:
		if cb != nil {
			retry = cb.OnTemplate(ev.Data)
		}
	case CommandImage:
		if cb != nil {
			retry = cb.OnImage(ev.Width, ev.Height, ev.Data, ev.Quality)
		}
	default:
		return ErrUnexpectedCommand
	}

	if !msg.Command.needsAck() {
		return nil
	}
	return c.write(CommandAck, &ack{Retry: retry})
}

func (c *Client) write(cmd Command, data any) error {
	msg, err := NewMessage(cmd, data)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err = msg.WriteTo(c.conn)
	return err
}

// request sends cmd and waits for its reply. Requests are serialized.
func (c *Client) request(cmd Command, data any) (*reply, error) {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	if err := c.write(cmd, data); err != nil {
		return nil, err
	}

	select {
	case msg := <-c.replies:
		var r reply
		if err := msg.Decode(&r); err != nil {
			return nil, err
		}
		if r.Err != "" {
			return &r, &RemoteError{Command: cmd, Message: r.Err}
		}
		return &r, nil
	case <-c.done:
		return nil, ErrClosed
	}
}

// SetCallbacks only affects the client: the server forwards every callback
// of its engine to the connection.
func (c *Client) SetCallbacks(cb vkx.Callbacks) error {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.cb = cb
	return nil
}

func (c *Client) Connect() (vkx.Result, error) {
	r, err := c.request(CommandConnect, nil)
	if err != nil {
		return vkx.VKX_RESULT_FAIL, err
	}
	return vkx.Result(r.Result), nil
}

func (c *Client) Disconnect() error {
	_, err := c.request(CommandDisconnect, nil)
	return err
}

func (c *Client) Abort() error {
	_, err := c.request(CommandAbort, nil)
	return err
}

func (c *Client) CaptureVerifyTemplate() error {
	_, err := c.request(CommandCaptureVerify, nil)
	return err
}

func (c *Client) CaptureEnrollTemplate() error {
	_, err := c.request(CommandCaptureEnroll, nil)
	return err
}

func (c *Client) Compare(enrolled, probe []byte) (vkx.Result, int, error) {
	r, err := c.request(CommandCompare, &compareRequest{Enrolled: enrolled, Probe: probe})
	if err != nil {
		return vkx.VKX_RESULT_FAIL, 0, err
	}
	return vkx.Result(r.Result), r.Score, nil
}
