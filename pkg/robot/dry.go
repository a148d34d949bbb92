package robot

import (
	"fmt"
	"io"

	"github.com/gwillem/serialbot/pkg/frame"
)

// DryLink prints every frame it is asked to send instead of writing to a port.
type DryLink struct {
	w io.Writer
}

// NewDryLink returns a link that writes a line per frame to w.
func NewDryLink(w io.Writer) *DryLink {
	return &DryLink{w: w}
}

func (d *DryLink) Write(b []byte) (int, error) {
	for off := 0; off < len(b); off += frame.Size {
		end := min(off+frame.Size, len(b))
		f, err := frame.Decode(b[off:end])
		if err != nil {
			fmt.Fprintf(d.w, "tx % x (%v)\n", b[off:end], err)
			continue
		}
		fmt.Fprintf(d.w, "tx %s\n", f)
	}
	return len(b), nil
}

func (d *DryLink) Flush() error { return nil }

func (d *DryLink) Close() error { return nil }
