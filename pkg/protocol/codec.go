// Package protocol implements the wire framing used by the process
// transport: one CBOR-encoded envelope per frame, each frame preceded by a
// 4-byte big-endian length prefix.
package protocol

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/koineramitranjan/threads/pkg/domain"
)

// MaxFrameSize bounds a single envelope on the wire. Frames above the limit
// indicate a corrupted stream rather than a legitimate payload.
const MaxFrameSize = 16 << 20

// ErrMalformed marks a frame whose body failed to decode. The frame
// boundary is intact, so readers may skip the envelope and continue.
var ErrMalformed = errors.New("malformed envelope")

// Writer frames envelopes onto an underlying stream. It is safe for
// concurrent use.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter wraps w in a frame writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes env and writes it as a single frame.
func (w *Writer) Write(env domain.Envelope) error {
	data, err := cbor.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if len(data) > MaxFrameSize {
		return fmt.Errorf("envelope of %d bytes exceeds frame limit", len(data))
	}

	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(data)))

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.Write(prefix[:]); err != nil {
		return fmt.Errorf("write frame prefix: %w", err)
	}
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}
	return nil
}

// Reader decodes framed envelopes from an underlying stream.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r in a frame reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read consumes the next frame and decodes it. It returns io.EOF when the
// stream ends cleanly between frames.
func (r *Reader) Read() (domain.Envelope, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r.r, prefix[:]); err != nil {
		if err == io.EOF {
			return domain.Envelope{}, io.EOF
		}
		return domain.Envelope{}, fmt.Errorf("read frame prefix: %w", err)
	}

	size := binary.BigEndian.Uint32(prefix[:])
	if size > MaxFrameSize {
		return domain.Envelope{}, fmt.Errorf("frame of %d bytes exceeds limit", size)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return domain.Envelope{}, fmt.Errorf("read frame body: %w", err)
	}

	var env domain.Envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return env, nil
}
