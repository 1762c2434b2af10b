// Package input turns raw terminal bytes into per-frame key state.
package input

import (
	"io"
	"time"
)

// keyHoldDuration is how long a movement key is considered "held" after its last press.
const keyHoldDuration = 30 * time.Millisecond

// Input represents the current frame's input state.
//
// Movement keys are level-triggered (held for keyHoldDuration after the
// last byte). Everything else is edge-triggered: true only in the frame
// that received the key.
type Input struct {
	Left  bool
	Right bool
	Up    bool
	Down  bool

	Quit      bool
	Start     bool // Space or Enter
	Stop      bool // X
	Pause     bool // P
	Tab       bool
	Backspace bool
	Escape    bool

	// Difficulty holds 'e', 'n' or 'h' when a difficulty key was pressed, 0 otherwise.
	Difficulty byte
	// Digits are the number keys pressed this frame, in order.
	Digits []byte
}

// Any reports whether the frame carried any key press.
func (in Input) Any() bool {
	return in.Quit || in.Start || in.Stop || in.Pause || in.Tab || in.Backspace ||
		in.Escape || in.Difficulty != 0 || len(in.Digits) > 0
}

// direction indexes the held movement keys.
type direction int

const (
	dirLeft direction = iota
	dirRight
	dirUp
	dirDown
	numDirections
)

// arrows maps the final byte of an ESC [ arrow sequence to its direction.
var arrows = map[byte]direction{'A': dirUp, 'B': dirDown, 'C': dirRight, 'D': dirLeft}

// Stream feeds terminal bytes through a channel and remembers when each
// movement key was last seen, so diagonals work with repeating keys.
type Stream struct {
	ch       chan byte
	lastSeen [numDirections]time.Time
	closed   bool
}

// StartStream reads r on its own goroutine until it fails.
func StartStream(r io.ByteReader) *Stream {
	s := &Stream{
		ch: make(chan byte, 128),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Closed reports whether the underlying reader has ended (e.g. the SSH
// session hung up).
func (s *Stream) Closed() bool {
	return s.closed
}

// ReadInput takes whatever bytes arrived since the previous frame without
// blocking. A closed stream reads as Quit.
func ReadInput(s *Stream) Input {
	var buf []byte

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := s.parse(buf, time.Now())
	if s.closed {
		in.Quit = true
	}
	return in
}

// parse applies buf to the key state and builds the frame's input.
func (s *Stream) parse(buf []byte, now time.Time) Input {
	var in Input

	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			if d, ok := arrows[buf[i+2]]; ok {
				s.lastSeen[d] = now
				i += 2
				continue
			}
		}
		s.applyByte(&in, b, now)
	}

	held := func(d direction) bool { return now.Sub(s.lastSeen[d]) < keyHoldDuration }
	in.Left, in.Right = held(dirLeft), held(dirRight)
	in.Up, in.Down = held(dirUp), held(dirDown)
	return in
}

// applyByte updates the key state or the frame's edge events for one byte.
func (s *Stream) applyByte(in *Input, b byte, now time.Time) {
	switch b {
	case 'q', 'Q', '\x03': // Ctrl+C in raw mode
		in.Quit = true
	case 'a', 'A', 'j', 'J':
		s.lastSeen[dirLeft] = now
	case 'd', 'D', 'l', 'L':
		s.lastSeen[dirRight] = now
	case 'w', 'W', 'i', 'I':
		s.lastSeen[dirUp] = now
	case 's', 'S', 'k', 'K':
		s.lastSeen[dirDown] = now
	case ' ', '\n', '\r':
		in.Start = true
	case 'x', 'X':
		in.Stop = true
	case 'p', 'P':
		in.Pause = true
	case '\t':
		in.Tab = true
	case '\b', '\x7f':
		in.Backspace = true
	case '\x1b':
		in.Escape = true
	case 'e', 'E', 'n', 'N', 'h', 'H':
		in.Difficulty = b | 0x20 // lower case
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		in.Digits = append(in.Digits, b)
	}
}
