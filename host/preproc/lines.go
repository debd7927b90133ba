package preproc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"
)

// LineLogger prints the text lines the light controller sends back,
// stamped with the time since start and since the previous line
type LineLogger struct {
	out   io.Writer
	now   func() time.Time
	start time.Time
	last  time.Time
	buf   []byte
}

// NewLineLogger creates a logger writing to out
func NewLineLogger(out io.Writer) *LineLogger {
	return &LineLogger{out: out, now: time.Now}
}

// Header prints the column titles
func (l *LineLogger) Header() {
	fmt.Fprintln(l.out, "     TOTAL  DIFFERENCE  RESPONSE")
	fmt.Fprintln(l.out, "----------  ----------  --------")
}

// Write accepts received bytes and prints every completed line
func (l *LineLogger) Write(data []byte) (int, error) {
	if l.start.IsZero() {
		l.start = l.now()
		l.last = l.start
	}

	l.buf = append(l.buf, data...)
	for {
		i := bytes.IndexByte(l.buf, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimRight(l.buf[:i], "\r")
		l.printLine(line)
		l.buf = l.buf[i+1:]
	}
	return len(data), nil
}

func (l *LineLogger) printLine(line []byte) {
	now := l.now()
	total := now.Sub(l.start).Seconds()
	delta := now.Sub(l.last).Seconds()
	l.last = now

	fmt.Fprintf(l.out, "%10.3f  %10.3f  %s\n", total, delta, bytes.ToValidUTF8(line, []byte("?")))
}

// Run copies r into the logger until ctx is cancelled or r fails.
// Reads returning no data are treated as timeouts.
func (l *LineLogger) Run(ctx context.Context, r io.Reader) error {
	buf := make([]byte, 256)
	for ctx.Err() == nil {
		n, err := r.Read(buf)
		if n > 0 {
			l.Write(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
	}
	return nil
}
