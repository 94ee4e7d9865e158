package main

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"ospdriver/osp"
)

// frameStart/frameEnd are the fixed two-byte sequences bracketing every
// wire frame: start-of-frame, then a big-endian 15-bit length, the
// payload, a big-endian 15-bit checksum (sum of payload bytes mod
// 32768), and end-of-frame.
var (
	frameStart = [2]byte{0xA0, 0xA2}
	frameEnd   = [2]byte{0xB0, 0xB3}
)

// SerialTransport frames payloads over a serial.Port and feeds decoded
// inbound frames to an osp.Engine's Dispatch entry point.
type SerialTransport struct {
	port serial.Port

	writeMu sync.Mutex

	reader *bufio.Reader
	engine *osp.Engine

	stop chan struct{}
	done chan struct{}
}

// OpenSerialTransport opens dev at baud and returns a transport ready to
// have its engine attached and Run started.
func OpenSerialTransport(dev string, baud int) (*SerialTransport, error) {
	mode := &serial.Mode{BaudRate: baud, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}
	port, err := serial.Open(dev, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dev, err)
	}
	return &SerialTransport{
		port:   port,
		reader: bufio.NewReaderSize(port, osp.MaxFrameLen*2),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// Attach wires an engine's Dispatch as this transport's inbound delivery
// target. Must be called before Run.
func (t *SerialTransport) Attach(e *osp.Engine) {
	t.engine = e
}

// Close stops the reader goroutine (if running) and closes the port.
func (t *SerialTransport) Close() error {
	select {
	case <-t.stop:
	default:
		close(t.stop)
		<-t.done
	}
	return t.port.Close()
}

// Send implements osp.Transport: frame and write a single payload.
func (t *SerialTransport) Send(payload []byte) error {
	if len(payload) > 0x7FFF {
		return fmt.Errorf("payload too large: %d bytes", len(payload))
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	frame := make([]byte, 0, len(payload)+8)
	frame = append(frame, frameStart[:]...)
	frame = append(frame, byte(len(payload)>>8), byte(len(payload)))
	frame = append(frame, payload...)
	sum := checksum(payload)
	frame = append(frame, byte(sum>>8), byte(sum))
	frame = append(frame, frameEnd[:]...)

	_, err := t.port.Write(frame)
	return err
}

func checksum(payload []byte) uint16 {
	var sum uint32
	for _, b := range payload {
		sum += uint32(b)
	}
	return uint16(sum & 0x7FFF)
}

// Run reads framed payloads from the port and dispatches them until Close
// is called or the port reports io.EOF; framing errors and other read
// errors are skipped after a short pause. Intended to run in its own
// goroutine, matching the transport's reader-thread role.
func (t *SerialTransport) Run() {
	defer close(t.done)
	for {
		select {
		case <-t.stop:
			return
		default:
		}
		payload, err := t.readFrame()
		if err != nil {
			if err == io.EOF {
				return
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if t.engine != nil {
			t.engine.Dispatch(payload)
		}
	}
}

func (t *SerialTransport) readFrame() ([]byte, error) {
	if err := t.syncToStart(); err != nil {
		return nil, err
	}
	lenHi, err := t.reader.ReadByte()
	if err != nil {
		return nil, err
	}
	lenLo, err := t.reader.ReadByte()
	if err != nil {
		return nil, err
	}
	length := int(lenHi)<<8 | int(lenLo)
	if length <= 0 || length > osp.MaxFrameLen {
		return nil, fmt.Errorf("bad frame length %d", length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(t.reader, payload); err != nil {
		return nil, err
	}
	sumHi, err := t.reader.ReadByte()
	if err != nil {
		return nil, err
	}
	sumLo, err := t.reader.ReadByte()
	if err != nil {
		return nil, err
	}
	got := uint16(sumHi)<<8 | uint16(sumLo)
	if got != checksum(payload) {
		return nil, fmt.Errorf("checksum mismatch")
	}
	endHi, err := t.reader.ReadByte()
	if err != nil {
		return nil, err
	}
	endLo, err := t.reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if endHi != frameEnd[0] || endLo != frameEnd[1] {
		return nil, fmt.Errorf("missing end-of-frame marker")
	}
	return payload, nil
}

func (t *SerialTransport) syncToStart() error {
	for {
		b, err := t.reader.ReadByte()
		if err != nil {
			return err
		}
		if b != frameStart[0] {
			continue
		}
		b2, err := t.reader.ReadByte()
		if err != nil {
			return err
		}
		if b2 == frameStart[1] {
			return nil
		}
	}
}

// ForceOSP bootstraps a receiver stuck in NMEA mode: one literal ASCII
// write at 4800 baud switching it to OSP at 115200 8N1, then closes the
// bootstrap connection so the caller can reopen at the new rate.
func ForceOSP(dev string) error {
	mode := &serial.Mode{BaudRate: 4800, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}
	port, err := serial.Open(dev, mode)
	if err != nil {
		return fmt.Errorf("open %s at 4800 baud: %w", dev, err)
	}
	defer port.Close()

	const cmd = "$PSRF100,0,115200,8,1,0*04\r\n"
	if _, err := port.Write([]byte(cmd)); err != nil {
		return fmt.Errorf("write NMEA switch sentence: %w", err)
	}
	time.Sleep(100 * time.Millisecond)
	return nil
}
