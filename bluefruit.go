package bluefruit

import (
	"bytes"
	"log"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultTimeout = 250 * time.Millisecond
	pollInterval   = 1 * time.Millisecond
)

var (
	ErrCommand    = errors.New("AT command failed")
	ErrNoStatus   = errors.New("reply has no OK or ERROR status")
	ErrTimeout    = errors.New("timeout")
	errNoResponse = errors.Wrap(ErrTimeout, "no response")
)

func init() {
	if Verbose {
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.LUTC)
	}
}

// transport carries AT commands and BLE UART data to the module.
// It is implemented over SPI by default and over a serial port with -tags uart.
type transport interface {
	device() string
	reset() error
	atCommand(at string) ([]byte, error)
	writeData(p []byte) error
	readData() ([]byte, error)
	close() error
}

// Counts holds sent and received totals.
type Counts struct {
	Sent     int
	Received int
}

// Statistics holds the BLE UART byte and packet counts.
type Statistics struct {
	Bytes   Counts
	Packets Counts
}

// Module represents an open Bluefruit LE module.
type Module struct {
	t     transport
	stats Statistics
	err   error
}

// Open opens the module and resets it.
func Open() *Module {
	m := &Module{}
	m.t, m.err = openTransport()
	if m.err != nil {
		return m
	}
	m.Reset()
	if m.err != nil {
		m.Close()
	}
	return m
}

// Close closes the module's device.
func (m *Module) Close() {
	if m.t == nil {
		return
	}
	err := m.t.close()
	if m.err == nil {
		m.err = err
	}
}

// Name returns the module's name.
func (m *Module) Name() string {
	return "Bluefruit LE"
}

// Device returns the pathname of the module's device.
func (m *Module) Device() string {
	return m.t.device()
}

// Reset resets the module.
func (m *Module) Reset() {
	if m.Error() != nil {
		return
	}
	m.err = m.t.reset()
}

// Command sends an AT command and returns the reply
// without its final OK line.
func (m *Module) Command(at string) string {
	if m.Error() != nil {
		return ""
	}
	if Verbose {
		log.Printf("command: %s", at)
	}
	b, err := m.t.atCommand(at)
	if err != nil {
		m.SetError(err)
		return ""
	}
	s, err := parseReply(b)
	if err != nil {
		m.SetError(errors.Wrap(err, at))
	}
	return s
}

// Info returns the module's identification lines.
func (m *Module) Info() string {
	return m.Command("ATI")
}

// Address returns the module's BLE MAC address.
func (m *Module) Address() string {
	return m.Command("AT+BLEGETADDR")
}

// Connected reports whether a central is connected to the module.
func (m *Module) Connected() bool {
	return m.Command("AT+GAPGETCONN") == "1"
}

// Write sends data to the connected central over the BLE UART service.
func (m *Module) Write(p []byte) {
	if m.Error() != nil || len(p) == 0 {
		return
	}
	m.err = m.t.writeData(p)
	if m.err != nil {
		return
	}
	m.stats.Bytes.Sent += len(p)
	m.stats.Packets.Sent++
}

// Read returns data received from the central over the BLE UART service,
// or nil if none is pending.
func (m *Module) Read() []byte {
	if m.Error() != nil {
		return nil
	}
	p, err := m.t.readData()
	if err != nil {
		m.SetError(err)
		return nil
	}
	if len(p) == 0 {
		return nil
	}
	m.stats.Bytes.Received += len(p)
	m.stats.Packets.Received++
	return p
}

// Statistics returns the BLE UART byte and packet counts.
func (m *Module) Statistics() Statistics {
	return m.stats
}

// Error returns the error state of the module.
func (m *Module) Error() error {
	return m.err
}

// SetError sets the error state of the module.
func (m *Module) SetError(err error) {
	m.err = err
}

// parseReply splits the status line from an AT reply.
func parseReply(b []byte) (string, error) {
	s := strings.TrimRight(string(b), "\r\n")
	body, status := "", s
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		body = strings.TrimRight(s[:i], "\r\n")
		status = s[i+1:]
	}
	switch strings.TrimSpace(status) {
	case "OK":
		return body, nil
	case "ERROR":
		return body, ErrCommand
	}
	return s, ErrNoStatus
}

// replyComplete reports whether b ends with an AT status line.
func replyComplete(b []byte) bool {
	return bytes.HasSuffix(b, []byte("OK\r\n")) || bytes.HasSuffix(b, []byte("ERROR\r\n"))
}
