package loopkit

import (
	"crypto/rand"
	"io"
	"sync"

	"github.com/oklog/ulid/v2"
)

// ID is a short, sortable, loggable identifier assigned to every Looper
// and Handler. It plays no part in dispatch ordering or in
// remove_messages/remove_callbacks equality (those compare Handler
// identity by pointer). It exists purely for diagnostics, the way
// bollywood.PID identifies an actor in log lines and
// epochq/internal/node.ID identifies a server instance on disk.
type ID ulid.ULID

// String renders the ID in its canonical base32 form.
func (id ID) String() string { return ulid.ULID(id).String() }

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == ID{} }

// entropy is a single shared, monotonic entropy source. Sharing it across
// every NewID call keeps IDs minted in quick succession across goroutines
// lexicographically ordered, which makes interleaved log lines easy to
// read back in order (grounded: epochq/internal/node/node.go's
// monoEntropy/monoMu).
var (
	entropyMu sync.Mutex
	entropy   io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// NewID mints a fresh, time-ordered ID.
func NewID() ID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	u := ulid.MustNew(ulid.Now(), entropy)
	return ID(u)
}
