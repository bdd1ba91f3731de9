//go:build uart
// +build uart

package bluefruit

import (
	"log"
	"time"

	"github.com/ecc1/serial"
	"github.com/pkg/errors"
)

const (
	serialDevice = "/dev/serial0"
	serialSpeed  = 9600
)

// uartTransport sends plain AT commands to a Bluefruit LE UART Friend.
type uartTransport struct {
	port *serial.Port
}

func openTransport() (transport, error) {
	port, err := serial.Open(serialDevice, serialSpeed)
	if err != nil {
		return nil, err
	}
	return &uartTransport{port: port}, nil
}

func (t *uartTransport) close() error {
	return t.port.Close()
}

func (*uartTransport) device() string {
	return serialDevice
}

// reset performs a software reset and turns off command echo.
// (The reset pin isn't used when connected via serial port.)
func (t *uartTransport) reset() error {
	if _, err := t.command("ATZ"); err != nil {
		return err
	}
	time.Sleep(1 * time.Second)
	_, err := t.command("ATE=0")
	return err
}

func (t *uartTransport) atCommand(at string) ([]byte, error) {
	err := t.port.Write([]byte(at + "\r\n"))
	if err != nil {
		return nil, err
	}
	return t.response(defaultTimeout)
}

// command sends at and checks the status line of its reply.
func (t *uartTransport) command(at string) (string, error) {
	b, err := t.atCommand(at)
	if err != nil {
		return "", err
	}
	s, err := parseReply(b)
	if err != nil {
		return "", errors.Wrap(err, at)
	}
	return s, nil
}

func (t *uartTransport) writeData(p []byte) error {
	_, err := t.command("AT+BLEUARTTX=" + string(p))
	return err
}

func (t *uartTransport) readData() ([]byte, error) {
	s, err := t.command("AT+BLEUARTRX")
	if err != nil || len(s) == 0 {
		return nil, err
	}
	return []byte(s), nil
}

func (t *uartTransport) response(timeout time.Duration) ([]byte, error) {
	buf := make([]byte, BufSize)
	off := 0
	for timeout > 0 {
		n, err := t.port.ReadAvailable(buf[off:])
		if err != nil {
			return nil, err
		}
		off += n
		if replyComplete(buf[:off]) {
			p := buf[:off]
			if Verbose {
				log.Printf("received %d-byte response %q", off, p)
			}
			return p, nil
		}
		if off == len(buf) {
			return nil, ErrOverflow
		}
		// No status line yet; wait for more data.
		time.Sleep(pollInterval)
		timeout -= pollInterval
	}
	if Verbose {
		log.Printf("no response")
	}
	return nil, errNoResponse
}
