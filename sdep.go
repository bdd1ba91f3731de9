package bluefruit

import (
	"fmt"

	"github.com/pkg/errors"
)

// MsgType is the first byte of an SDEP frame.
// See https://learn.adafruit.com/introducing-the-adafruit-bluefruit-spi-breakout/sdep-spi-data-transport
type MsgType byte

const (
	MsgCommand  MsgType = 0x10
	MsgResponse MsgType = 0x20
	MsgAlert    MsgType = 0x40
	MsgError    MsgType = 0x80

	// Bytes the module clocks out instead of a message type.
	spiIgnored  = 0xFE // not ready, try again
	spiOverread = 0xFF // nothing left to read
)

func (t MsgType) String() string {
	switch t {
	case MsgCommand:
		return "command"
	case MsgResponse:
		return "response"
	case MsgAlert:
		return "alert"
	case MsgError:
		return "error"
	}
	return fmt.Sprintf("MsgType(%02X)", byte(t))
}

// CommandID identifies the payload of an SDEP command or response.
type CommandID uint16

const (
	CmdATWrapper  CommandID = 0x0A00
	CmdBLEUARTTX  CommandID = 0x0A01
	CmdBLEUARTRX  CommandID = 0x0A02
	CmdInitialize CommandID = 0xBEEF
)

const (
	packetSize  = 20
	headerSize  = 4
	maxPayload  = packetSize - headerSize
	moreDataBit = 0x80
)

var (
	ErrSDEP       = errors.New("SDEP error")
	ErrOverflow   = errors.New("message exceeds read buffer")
	ErrUnexpected = errors.New("unexpected SDEP message")
	ErrFrame      = errors.New("malformed SDEP frame")
)

// Packet is a single SDEP frame.
type Packet struct {
	Type    MsgType
	Command CommandID
	More    bool
	Payload []byte
}

// Marshal encodes p as a zero-padded 20-byte frame.
func (p Packet) Marshal() []byte {
	if len(p.Payload) > maxPayload {
		panic("SDEP payload too long")
	}
	b := make([]byte, packetSize)
	b[0] = byte(p.Type)
	copy(b[1:3], marshalUint16(uint16(p.Command)))
	b[3] = byte(len(p.Payload))
	if p.More {
		b[3] |= moreDataBit
	}
	copy(b[headerSize:], p.Payload)
	return b
}

func unmarshalPacket(b []byte) (Packet, error) {
	if len(b) < headerSize {
		return Packet{}, errors.Wrapf(ErrFrame, "%d-byte frame", len(b))
	}
	p := Packet{
		Type:    MsgType(b[0]),
		Command: CommandID(unmarshalUint16(b[1:3])),
		More:    b[3]&moreDataBit != 0,
	}
	switch p.Type {
	case MsgResponse, MsgAlert, MsgError, MsgCommand:
	default:
		return p, errors.Wrapf(ErrFrame, "message type %02X", b[0])
	}
	n := int(b[3] &^ moreDataBit)
	if p.Type == MsgError {
		// Error frames carry no payload length; the command ID is the error code.
		n = 0
	}
	if n > maxPayload || headerSize+n > len(b) {
		return p, errors.Wrapf(ErrFrame, "payload length %d", n)
	}
	p.Payload = b[headerSize : headerSize+n]
	return p, nil
}

// splitCommand fragments data into command frames.
// An empty payload still produces one frame.
func splitCommand(cmd CommandID, data []byte) []Packet {
	var packets []Packet
	for {
		n := len(data)
		if n > maxPayload {
			n = maxPayload
		}
		packets = append(packets, Packet{
			Type:    MsgCommand,
			Command: cmd,
			More:    len(data) > n,
			Payload: data[:n],
		})
		data = data[n:]
		if len(data) == 0 {
			return packets
		}
	}
}

// reassemble reads response frames for cmd until one arrives without the
// more-data bit, and returns the concatenated payload.
func reassemble(cmd CommandID, next func() ([]byte, error)) ([]byte, error) {
	var msg []byte
	for {
		b, err := next()
		if err != nil {
			return nil, err
		}
		p, err := unmarshalPacket(b)
		if err != nil {
			return nil, err
		}
		switch p.Type {
		case MsgError:
			return nil, errors.Wrapf(ErrSDEP, "code %04X", uint16(p.Command))
		case MsgResponse:
		default:
			return nil, errors.Wrapf(ErrUnexpected, "%v %04X", p.Type, uint16(p.Command))
		}
		if p.Command != cmd {
			return nil, errors.Wrapf(ErrUnexpected, "response to %04X, want %04X", uint16(p.Command), uint16(cmd))
		}
		if len(msg)+len(p.Payload) > BufSize {
			return nil, ErrOverflow
		}
		msg = append(msg, p.Payload...)
		if !p.More {
			return msg, nil
		}
	}
}
