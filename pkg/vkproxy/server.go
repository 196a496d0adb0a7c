package vkproxy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/go-ctap/vkapi/pkg/metrics"
	"github.com/go-ctap/vkapi/pkg/options"
	"github.com/go-ctap/vkapi/pkg/vkx"
)

// Server hosts an engine for one client connection at a time; the vendor
// engine is a process-wide singleton.
type Server struct {
	engine  vkx.Engine
	logger  *slog.Logger
	metrics *metrics.Proxy
}

func NewServer(engine vkx.Engine, opts ...options.Option) *Server {
	oo := options.NewOptions(opts...)
	return &Server{
		engine:  engine,
		logger:  oo.Logger.With("component", "vkproxy-server"),
		metrics: metrics.NewProxy(oo.Registerer),
	}
}

// ListenAndServe accepts connections from ln and serves them one after the
// other until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := s.Serve(ctx, conn); err != nil {
			s.logger.Warn("session ended", "err", err)
		}
	}
}

// Serve runs one session on conn. It returns when the peer hangs up or ctx
// is done, disconnecting the engine if the peer left it connected.
func (s *Server) Serve(ctx context.Context, conn io.ReadWriteCloser) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.metrics.SessionStarted()
	defer s.metrics.SessionEnded()

	sess := &session{
		engine:   s.engine,
		conn:     conn,
		logger:   s.logger,
		metrics:  s.metrics,
		requests: make(chan *Message, 16),
		acks:     make(chan bool, 1),
		ctx:      ctx,
	}
	if err := s.engine.SetCallbacks(sess); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sess.work()
	}()

	err := sess.read()
	cancel()
	close(sess.requests)
	wg.Wait()

	if sess.connected {
		if derr := s.engine.Disconnect(); derr != nil {
			s.logger.Warn("disconnect after session", "err", derr)
		}
	}

	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) || ctx.Err() != nil {
		return nil
	}
	return err
}

// session forwards engine callbacks to the connection and runs requests
// read from it on a single worker.
type session struct {
	engine   vkx.Engine
	conn     io.ReadWriteCloser
	logger   *slog.Logger
	metrics  *metrics.Proxy
	writeMu  sync.Mutex
	requests chan *Message
	acks     chan bool
	ctx      context.Context

	// connected is owned by the worker.
	connected bool
}

var _ vkx.Callbacks = (*session)(nil)

func (s *session) read() error {
	for {
		msg, err := ParseMessage(s.conn)
		if err != nil {
			return err
		}

		if msg.Command == CommandAck {
			var a ack
			if err := msg.Decode(&a); err != nil {
				return err
			}
			select {
			case s.acks <- a.Retry:
			default:
				s.logger.Warn("ack without pending callback")
			}
			continue
		}

		select {
		case s.requests <- msg:
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}
}

func (s *session) work() {
	for msg := range s.requests {
		r := s.execute(msg)
		if err := s.write(CommandReply, r); err != nil {
			s.logger.Debug("cannot write reply", "command", msg.Command.String(), "err", err)
		}
	}
}

func (s *session) execute(msg *Message) *reply {
	s.logger.Debug("request", "command", msg.Command.String())

	var err error
	r := &reply{}
	switch msg.Command {
	case CommandConnect:
		var res vkx.Result
		res, err = s.engine.Connect()
		r.Result = int(res)
		s.connected = err == nil && res == vkx.VKX_RESULT_SUCCESS
	case CommandDisconnect:
		err = s.engine.Disconnect()
		s.connected = false
	case CommandAbort:
		err = s.engine.Abort()
	case CommandCaptureVerify:
		err = s.engine.CaptureVerifyTemplate()
	case CommandCaptureEnroll:
		err = s.engine.CaptureEnrollTemplate()
	case CommandCompare:
		var req compareRequest
		if err = msg.Decode(&req); err == nil {
			var res vkx.Result
			res, r.Score, err = s.engine.Compare(req.Enrolled, req.Probe)
			r.Result = int(res)
		}
	default:
		err = ErrUnexpectedCommand
	}

	s.metrics.ObserveRequest(msg.Command.String(), err)
	if err != nil {
		r.Err = err.Error()
	}
	return r
}

func (s *session) write(cmd Command, data any) error {
	msg, err := NewMessage(cmd, data)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err = msg.WriteTo(s.conn)
	return err
}

// forward sends a callback frame and, for frames the client must answer,
// waits for its retry decision. A lost connection declines the retry.
func (s *session) forward(cmd Command, ev *callback) bool {
	if err := s.write(cmd, ev); err != nil {
		s.logger.Debug("cannot forward callback", "command", cmd.String(), "err", err)
		return false
	}
	if !cmd.needsAck() {
		return false
	}

	select {
	case retry := <-s.acks:
		return retry
	case <-s.ctx.Done():
		return false
	}
}

func (s *session) OnStatus(status vkx.Status) {
	s.forward(CommandStatus, &callback{Code: int(status)})
}

func (s *session) OnError(code vkx.Result) bool {
	return s.forward(CommandError, &callback{Code: int(code)})
}

func (s *session) OnEnrollProgress(stage int) {
	s.forward(CommandProgress, &callback{Code: stage})
}

func (s *session) OnTemplate(template []byte) bool {
	return s.forward(CommandTemplate, &callback{Data: template})
}

// OnImage forwards the image metadata; pixels only travel if they fit a
// frame.
func (s *session) OnImage(width, height int, img []byte, quality int) bool {
	ev := &callback{Width: width, Height: height, Quality: quality}
	if len(img) < 0xff00 {
		ev.Data = img
	}
	return s.forward(CommandImage, ev)
}
