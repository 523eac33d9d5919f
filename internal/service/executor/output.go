package executor

import (
	"bytes"
)

// collector captures command output up to maxBytes and drops the rest.
type collector struct {
	buffer    bytes.Buffer
	maxBytes  int
	truncated bool
}

func newCollector(maxBytes int) *collector {
	return &collector{maxBytes: maxBytes}
}

func (c *collector) Write(p []byte) (n int, err error) {
	remainingSpace := c.maxBytes - c.buffer.Len()
	if remainingSpace <= 0 {
		c.truncated = true
		return len(p), nil
	}

	toWrite := p
	if len(toWrite) > remainingSpace {
		toWrite = toWrite[:remainingSpace]
		c.truncated = true
	}

	written, err := c.buffer.Write(toWrite)
	if err != nil {
		return written, err
	}

	// Report the full length so io.Copy keeps draining the pipe.
	return len(p), nil
}

func (c *collector) String() string {
	return c.buffer.String()
}

func (c *collector) Truncated() bool {
	return c.truncated
}
