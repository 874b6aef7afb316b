package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Wire framing: a 4-byte big-endian length prefix followed by that many bytes
// of UTF-8 JSON. Both directions use the same framing.

const (
	headerSize = 4

	// MaxFrameSize bounds a single message. A full snapshot for a few dozen
	// players is a few KB; anything near a megabyte is a broken or hostile
	// peer.
	MaxFrameSize = 1 << 20
)

// WriteFrame writes one length-prefixed message.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds limit", len(payload))
	}
	var header [headerSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-prefixed message. Any framing violation is
// returned as an error; the caller treats it as fatal to the connection.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(header[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
