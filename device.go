//go:build !uart
// +build !uart

package bluefruit

import (
	"bytes"
	"log"
	"time"

	"github.com/ecc1/gpio"
	"github.com/ecc1/spi"
	"github.com/pkg/errors"
)

// spiBus is satisfied by *spi.Device.
type spiBus interface {
	Transfer(snd, rcv []byte) error
	Close() error
}

// irqLine is satisfied by gpio.InterruptPin.
type irqLine interface {
	Read() (bool, error)
	Wait(timeout time.Duration) error
}

// spiTransport talks SDEP to a Bluefruit LE SPI Friend.
type spiTransport struct {
	bus      spiBus
	irqPin   irqLine
	resetPin gpio.OutputPin
}

func openTransport() (transport, error) {
	const spiSpeed = 4000000 // Hz
	dev, err := spi.Open(spiDevice, spiSpeed, CSPin)
	if err != nil {
		return nil, err
	}
	t := &spiTransport{bus: dev}
	irq, err := gpio.Interrupt(IRQPin, false, "rising")
	if err != nil {
		_ = dev.Close()
		return nil, err
	}
	t.irqPin = irq
	if !IsUnused(ResetPin) {
		t.resetPin, err = gpio.Output(ResetPin, false, true)
		if err != nil {
			_ = dev.Close()
			return nil, err
		}
	}
	return t, nil
}

func (t *spiTransport) close() error {
	return t.bus.Close()
}

func (*spiTransport) device() string {
	return spiDevice
}

// reset pulses the reset line if it is wired,
// otherwise sends the SDEP initialize command.
func (t *spiTransport) reset() error {
	var err error
	if t.resetPin == nil {
		err = t.sendPackets(splitCommand(CmdInitialize, nil))
	} else {
		_ = t.resetPin.Write(false)
		time.Sleep(10 * time.Millisecond)
		err = t.resetPin.Write(true)
	}
	time.Sleep(1 * time.Second)
	return err
}

func (t *spiTransport) atCommand(at string) ([]byte, error) {
	return t.exchange(CmdATWrapper, []byte(at))
}

func (t *spiTransport) writeData(p []byte) error {
	return t.sendPackets(splitCommand(CmdBLEUARTTX, p))
}

func (t *spiTransport) readData() ([]byte, error) {
	return t.exchange(CmdBLEUARTRX, nil)
}

func (t *spiTransport) exchange(cmd CommandID, data []byte) ([]byte, error) {
	err := t.sendPackets(splitCommand(cmd, data))
	if err != nil {
		return nil, err
	}
	msg, err := reassemble(cmd, t.readPacket)
	if err != nil {
		return nil, err
	}
	if Verbose {
		log.Printf("received %d-byte message % X", len(msg), msg)
	}
	return msg, nil
}

func (t *spiTransport) sendPackets(packets []Packet) error {
	for _, p := range packets {
		err := t.sendPacket(p)
		if err != nil {
			return err
		}
	}
	return nil
}

// sendPacket retransmits the frame while the module reports it is not ready.
func (t *spiTransport) sendPacket(p Packet) error {
	b := p.Marshal()
	if Verbose {
		log.Printf("send % X", b)
	}
	buf := make([]byte, packetSize)
	for timeout := defaultTimeout; timeout > 0; timeout -= pollInterval {
		copy(buf, b)
		err := t.bus.Transfer(buf, buf)
		if err != nil || buf[0] != spiIgnored {
			return err
		}
		time.Sleep(pollInterval)
	}
	return errNoResponse
}

// readPacket waits for the IRQ line and clocks in one frame.
func (t *spiTransport) readPacket() ([]byte, error) {
	deadline := time.Now().Add(defaultTimeout)
	for {
		ready, err := t.irqPin.Read()
		if err != nil {
			return nil, err
		}
		if !ready {
			timeout := time.Until(deadline)
			if timeout <= 0 {
				break
			}
			if err := t.irqPin.Wait(timeout); err != nil {
				return nil, errors.Wrap(errNoResponse, err.Error())
			}
		}
		buf := bytes.Repeat([]byte{spiOverread}, packetSize)
		if err := t.bus.Transfer(buf, buf); err != nil {
			return nil, err
		}
		if buf[0] != spiIgnored && buf[0] != spiOverread {
			if Verbose {
				log.Printf("recv % X", buf)
			}
			return buf, nil
		}
		if !time.Now().Before(deadline) {
			break
		}
		// The module raised IRQ but was not ready to send yet.
		time.Sleep(pollInterval)
	}
	if Verbose {
		log.Printf("receive timeout")
	}
	return nil, errNoResponse
}
