// Package vkproxy carries the vendor engine over a byte stream so the
// engine can live in another process. Commands flow from Client to Server,
// callbacks flow back, and the client answers every callback that asks for
// a retry decision with an ack.
package vkproxy

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/fxamacker/cbor/v2"
)

var encMode, _ = cbor.CTAP2EncOptions().EncMode()

const (
	NamedPipePath = "\\\\.\\pipe\\vkapi"
	SocketPath    = "/run/vkapi/vkproxy.sock"
)

var (
	ErrMessageTooLarge   = errors.New("vkproxy: message too large")
	ErrUnexpectedCommand = errors.New("vkproxy: unexpected command")
	ErrClosed            = errors.New("vkproxy: connection closed")
)

type Command byte

const (
	CommandConnect Command = iota + 1
	CommandDisconnect
	CommandAbort
	CommandCaptureVerify
	CommandCaptureEnroll
	CommandCompare
	CommandReply
	CommandStatus
	CommandError
	CommandProgress
	CommandTemplate
	CommandImage
	CommandAck
)

var commandNames = map[Command]string{
	CommandConnect:       "connect",
	CommandDisconnect:    "disconnect",
	CommandAbort:         "abort",
	CommandCaptureVerify: "capture_verify",
	CommandCaptureEnroll: "capture_enroll",
	CommandCompare:       "compare",
	CommandReply:         "reply",
	CommandStatus:        "status",
	CommandError:         "error",
	CommandProgress:      "progress",
	CommandTemplate:      "template",
	CommandImage:         "image",
	CommandAck:           "ack",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// needsAck reports whether the client must answer a callback frame.
func (c Command) needsAck() bool {
	return c == CommandError || c == CommandTemplate || c == CommandImage
}

type Message struct {
	Command Command
	length  uint16
	Data    []byte
}

// ParseMessage reads one frame: command byte, big-endian uint16 length and
// a CBOR payload of that length.
func ParseMessage(r io.Reader) (*Message, error) {
	hdr := make([]byte, 3)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint16(hdr[1:])

	bData := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, bData); err != nil {
			return nil, err
		}
	}

	return &Message{
		Command: Command(hdr[0]),
		length:  length,
		Data:    bData,
	}, nil
}

func NewMessage(cmd Command, data any) (*Message, error) {
	msg := &Message{
		Command: cmd,
	}

	b := make([]byte, 0)
	var err error
	if data != nil {
		b, err = encMode.Marshal(data)
		if err != nil {
			return nil, err
		}
	}
	if len(b) > math.MaxUint16 {
		return nil, ErrMessageTooLarge
	}

	msg.length = uint16(len(b))
	msg.Data = b

	return msg, nil
}

// Decode unmarshals the payload into v.
func (m *Message) Decode(v any) error {
	return cbor.Unmarshal(m.Data, v)
}

// WriteTo writes the frame with a single Write so frames from concurrent
// writers sharing a lock never interleave.
func (m *Message) WriteTo(w io.Writer) (n int64, err error) {
	buf := make([]byte, 3, 3+len(m.Data))
	buf[0] = byte(m.Command)
	binary.BigEndian.PutUint16(buf[1:], m.length)
	buf = append(buf, m.Data...)

	written, err := w.Write(buf)
	return int64(written), err
}

type compareRequest struct {
	Enrolled []byte `cbor:"1,keyasint"`
	Probe    []byte `cbor:"2,keyasint"`
}

type reply struct {
	Result int    `cbor:"1,keyasint"`
	Score  int    `cbor:"2,keyasint,omitempty"`
	Err    string `cbor:"3,keyasint,omitempty"`
}

type callback struct {
	Code    int    `cbor:"1,keyasint,omitempty"`
	Data    []byte `cbor:"2,keyasint,omitempty"`
	Width   int    `cbor:"3,keyasint,omitempty"`
	Height  int    `cbor:"4,keyasint,omitempty"`
	Quality int    `cbor:"5,keyasint,omitempty"`
}

type ack struct {
	Retry bool `cbor:"1,keyasint"`
}

// RemoteError is a command error reported by the serving engine.
type RemoteError struct {
	Command Command
	Message string
}

func (e *RemoteError) Error() string {
	return "vkproxy: remote " + e.Command.String() + ": " + e.Message
}
