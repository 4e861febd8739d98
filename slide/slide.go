// Package slide is the vendor-neutral surface for tiled pyramid images.
//
// Format drivers register themselves with a magic pattern; Open sniffs the
// file head and dispatches to the first driver whose pattern matches, the
// same way the standard image package resolves formats.
package slide

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrUnknownFormat indicates no registered driver recognizes the file.
var ErrUnknownFormat = errors.New("unknown slide format")

// Slide is a read-only pyramid image. Level 0 is the full resolution;
// higher levels shrink by their downsampling factors.
//
// Implementations must be safe for concurrent use.
type Slide interface {
	// LevelCount returns the number of pyramid levels.
	LevelCount() int
	// LevelDimensions returns the pixel extent of one level.
	LevelDimensions(level int) (w, h int64, err error)
	// ReadRegion decodes a rectangle of one level into a tightly packed
	// row-major pixel buffer. Coordinates are level pixels.
	ReadRegion(level int, x, y, w, h int64) ([]byte, error)
	// Metadata returns the vendor metadata document verbatim, nil when the
	// file carries none.
	Metadata() []byte
	// Close releases the underlying file. Further calls on the slide fail.
	Close() error
}

type driver struct {
	name  string
	magic string
	open  func(string) (Slide, error)
}

var (
	driversMu sync.RWMutex
	drivers   []driver
)

// Register makes a format driver available to Open. The magic pattern is
// matched byte-for-byte against the start of the file, with '?' matching
// any byte. Drivers register from their package init.
func Register(name, magic string, open func(string) (Slide, error)) {
	driversMu.Lock()
	defer driversMu.Unlock()

	drivers = append(drivers, driver{name: name, magic: magic, open: open})
}

// Formats returns the names of the registered drivers, in registration
// order.
func Formats() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, len(drivers))
	for i, d := range drivers {
		names[i] = d.name
	}

	return names
}

// Open sniffs the file and opens it with the matching driver.
//
// Returns:
//   - Slide: The opened slide
//   - error: ErrUnknownFormat when no driver matches, otherwise the
//     driver's open error
func Open(path string) (Slide, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	head := make([]byte, maxMagicLen())
	n, _ := f.ReadAt(head, 0)
	head = head[:n]

	if err := f.Close(); err != nil {
		return nil, err
	}

	driversMu.RLock()
	defer driversMu.RUnlock()

	for _, d := range drivers {
		if matchMagic(d.magic, head) {
			return d.open(path)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

func maxMagicLen() int {
	driversMu.RLock()
	defer driversMu.RUnlock()

	n := 0
	for _, d := range drivers {
		n = max(n, len(d.magic))
	}

	return n
}

func matchMagic(magic string, head []byte) bool {
	if len(head) < len(magic) {
		return false
	}

	for i := 0; i < len(magic); i++ {
		if magic[i] != '?' && magic[i] != head[i] {
			return false
		}
	}

	return true
}
