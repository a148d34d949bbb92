package frame

import (
	"bufio"
	"errors"
	"io"
)

// Decoder reads a stream of frames, skipping bytes until it finds a header
// followed by a well-formed frame. A corrupted byte inside the value field
// cannot be detected.
type Decoder struct {
	r       *bufio.Reader
	skipped int
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 64)}
}

// Skipped returns the number of bytes discarded while resynchronising.
func (d *Decoder) Skipped() int {
	return d.skipped
}

// Next returns the next valid frame. It returns io.EOF once the stream ends,
// or io.ErrUnexpectedEOF if it ends inside a frame.
func (d *Decoder) Next() (Frame, error) {
	for {
		b, err := d.r.Peek(Size)
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(b) == 0 {
					return Frame{}, io.EOF
				}
				d.skipped += len(b)
				d.r.Discard(len(b))
				return Frame{}, io.ErrUnexpectedEOF
			}
			return Frame{}, err
		}

		f, err := Decode(b)
		if err == nil {
			d.r.Discard(Size)
			return f, nil
		}

		// Drop one byte and look for the next header.
		d.r.Discard(1)
		d.skipped++
	}
}
