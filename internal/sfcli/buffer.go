package sfcli

import "bytes"

// cappedBuffer retains writes up to a fixed number of bytes and silently
// drops the rest. Write never returns an error, so a child process is never
// blocked or killed by a full capture buffer.
type cappedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func newCappedBuffer(maxBytes int) *cappedBuffer {
	return &cappedBuffer{max: maxBytes}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	n := len(p)

	remaining := b.max - b.buf.Len()
	if remaining <= 0 {
		if n > 0 {
			b.truncated = true
		}
		return n, nil
	}

	if n > remaining {
		p = p[:remaining]
		b.truncated = true
	}
	b.buf.Write(p)

	return n, nil
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}

// Truncated reports whether any bytes were dropped.
func (b *cappedBuffer) Truncated() bool {
	return b.truncated
}
