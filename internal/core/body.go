package core

// body.go wraps the dataset response body before it reaches the CSV reader:
//
//   - cappedReader: counts raw bytes and fails once the size cap is passed
//   - bomSkippingReader: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - utf8Sanitizer: replaces malformed UTF-8 with U+FFFD
//
// wrapBody applies them in that order.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// wrapBody returns the cleaned body and the counter tracking raw bytes read.
// maxBytes <= 0 disables the cap.
func wrapBody(r io.Reader, maxBytes int64) (io.Reader, *cappedReader) {
	capped := &cappedReader{r: r, max: maxBytes}
	return newUTF8Sanitizer(newBOMSkippingReader(capped)), capped
}

// cappedReader counts bytes and errors once more than max have been read.
type cappedReader struct {
	r   io.Reader
	max int64
	n   int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.max > 0 && c.n > c.max {
		return n, fmt.Errorf("dataset exceeds %d bytes", c.max)
	}
	return n, err
}

// BytesRead returns the number of raw bytes consumed so far.
func (c *cappedReader) BytesRead() int64 {
	return c.n
}

// bomSkippingReader skips the UTF-8 BOM if the stream starts with one.
type bomSkippingReader struct {
	r       *bufio.Reader
	checked bool
}

func newBOMSkippingReader(r io.Reader) *bomSkippingReader {
	return &bomSkippingReader{r: bufio.NewReader(r)}
}

func (b *bomSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.r.Peek(len(utf8BOM))
		if err == nil && bytes.Equal(head, utf8BOM) {
			_, _ = b.r.Discard(len(utf8BOM))
		}
	}
	return b.r.Read(p)
}

// utf8Sanitizer replaces invalid UTF-8 sequences with U+FFFD as it reads.
// A multi-byte sequence split across reads is held back until complete.
type utf8Sanitizer struct {
	r       io.Reader
	scratch []byte
	pending []byte // raw bytes not yet decoded
	out     []byte // decoded bytes not yet returned
	off     int
	err     error
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, scratch: make([]byte, 32*1024)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for s.off == len(s.out) {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}
	n := copy(p, s.out[s.off:])
	s.off += n
	return n, nil
}

func (s *utf8Sanitizer) fill() {
	n, err := s.r.Read(s.scratch)
	s.pending = append(s.pending, s.scratch[:n]...)
	s.err = err
	atEOF := err != nil

	s.out = s.out[:0]
	s.off = 0

	// Fast path for the common all-ASCII chunk.
	if isASCII(s.pending) {
		s.out = append(s.out, s.pending...)
		s.pending = s.pending[:0]
		return
	}

	i := 0
	for i < len(s.pending) {
		c := s.pending[i]
		if c < utf8.RuneSelf {
			s.out = append(s.out, c)
			i++
			continue
		}
		if !atEOF && !utf8.FullRune(s.pending[i:]) {
			break
		}
		r, size := utf8.DecodeRune(s.pending[i:])
		if r == utf8.RuneError && size == 1 {
			s.out = utf8.AppendRune(s.out, utf8.RuneError)
		} else {
			s.out = append(s.out, s.pending[i:i+size]...)
		}
		i += size
	}
	s.pending = append(s.pending[:0], s.pending[i:]...)
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
