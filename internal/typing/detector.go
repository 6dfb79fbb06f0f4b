// Package typing watches typed characters for declaration keywords.
package typing

import (
	"strings"
	"sync"
)

// DefaultBufferSize is the number of characters kept when none is configured.
const DefaultBufferSize = 50

// DefaultTriggerWords start an inline completion when followed by a space.
var DefaultTriggerWords = []string{"def", "function", "class", "public", "private"}

// Detector keeps the most recent characters typed in one editing session.
// It is safe for concurrent use.
type Detector struct {
	mu       sync.Mutex
	buf      []rune
	size     int
	triggers []string
}

// NewDetector creates a detector. Zero size and nil triggers use the defaults.
func NewDetector(size int, triggers []string) *Detector {
	if size <= 0 {
		size = DefaultBufferSize
	}
	if len(triggers) == 0 {
		triggers = DefaultTriggerWords
	}
	return &Detector{size: size, triggers: append([]string(nil), triggers...)}
}

// Observe appends typed text and reports the trigger word when the buffer
// now ends with that word followed by a space.
func (d *Detector) Observe(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.buf = append(d.buf, []rune(text)...)
	if over := len(d.buf) - d.size; over > 0 {
		d.buf = append(d.buf[:0], d.buf[over:]...)
	}

	tail := string(d.buf)
	for _, word := range d.triggers {
		if strings.HasSuffix(tail, word+" ") {
			return word, true
		}
	}
	return "", false
}

// Reset clears the buffer.
func (d *Detector) Reset() {
	d.mu.Lock()
	d.buf = d.buf[:0]
	d.mu.Unlock()
}

// Buffer returns a copy of the buffered text.
func (d *Detector) Buffer() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return string(d.buf)
}
