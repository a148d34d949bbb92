// frame-monitor decodes a stream of motion-command frames and prints them,
// one per line. It reads from a serial port (for example the receiving end
// of a loopback cable) or from a captured file, "-" meaning stdin.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jessevdk/go-flags"
	"go.bug.st/serial"

	"github.com/gwillem/serialbot/pkg/frame"
	"github.com/gwillem/serialbot/pkg/robot"
)

type Options struct {
	Port  string `short:"p" long:"port" description:"Serial port to read from"`
	Baud  int    `short:"b" long:"baud" default:"115200" description:"Baud rate"`
	File  string `short:"f" long:"file" description:"Read a captured stream from this file (- for stdin)"`
	Stamp bool   `short:"t" long:"timestamps" description:"Prefix each frame with the time it was decoded"`
}

var (
	axisStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.LongDescription = "Decode and print serialbot motion-command frames"

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	r, err := open(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer r.Close()

	n, skipped, err := monitor(r, os.Stdout, opts.Stamp)
	fmt.Println(dimStyle.Render(fmt.Sprintf("%d frame(s), %d byte(s) skipped", n, skipped)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func open(opts Options) (io.ReadCloser, error) {
	switch {
	case opts.File == "-":
		return io.NopCloser(os.Stdin), nil
	case opts.File != "":
		return os.Open(opts.File)
	case opts.Port != "":
		p, err := serial.Open(opts.Port, &serial.Mode{
			BaudRate: opts.Baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		})
		if err != nil {
			return nil, &robot.ConfigurationError{Port: opts.Port, Err: err}
		}
		return p, nil
	default:
		return nil, errors.New("one of --port or --file is required")
	}
}

// monitor prints every frame decoded from r and returns the number of
// frames and skipped bytes. A stream ending mid-frame is reported but is
// not an error.
func monitor(r io.Reader, w io.Writer, stamp bool) (frames, skipped int, err error) {
	dec := frame.NewDecoder(r)
	for {
		f, err := dec.Next()
		switch {
		case errors.Is(err, io.EOF):
			return frames, dec.Skipped(), nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			fmt.Fprintln(w, warnStyle.Render("stream ended inside a frame"))
			return frames, dec.Skipped(), nil
		case err != nil:
			return frames, dec.Skipped(), err
		}

		frames++
		line := fmt.Sprintf("%s %8.3f  %s", axisStyle.Render(fmt.Sprintf("%-6s", f.Axis())), f.Value(), dimStyle.Render(f.Hex()))
		if stamp {
			line = time.Now().Format("15:04:05.000") + " " + line
		}
		fmt.Fprintln(w, line)
	}
}
