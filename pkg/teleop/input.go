package teleop

import (
	"bufio"
	"context"
	"io"
)

// ReadLines turns each line read from r into an Input using keys. The
// channel is closed when r is exhausted or ctx is done. A read blocked on r
// is not interrupted by ctx; the goroutine exits after the read returns.
func ReadLines(ctx context.Context, r io.Reader, keys Keymap) <-chan Input {
	ch := make(chan Input)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			select {
			case ch <- Input{Symbol: keys.Lookup(line), Key: line}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
