package loopkit

import (
	"runtime"
	"strconv"
)

// goroutineID identifies a goroutine for the lifetime of the process. The
// Go runtime never reuses goroutine ids, which is the property prepare
// relies on to emulate a per-OS-thread slot: combined with
// runtime.LockOSThread (called by prepare), the id returned here stays
// attached to the same underlying OS thread for as long as the owning
// Looper is alive.
//
// There is no supported Go API for reading the current goroutine id. This
// parses it out of the header line runtime.Stack always writes first
// ("goroutine 123 [running]:"). See DESIGN.md for why this stays
// stdlib-only rather than reaching for a third-party library.
type goroutineID uint64

func currentGoroutineID() goroutineID {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGoroutineID(buf[:n])
}

const goroutineHeaderPrefix = "goroutine "

func parseGoroutineID(line []byte) goroutineID {
	if len(line) <= len(goroutineHeaderPrefix) || string(line[:len(goroutineHeaderPrefix)]) != goroutineHeaderPrefix {
		panic("loopkit: unexpected runtime.Stack header: " + string(line))
	}
	rest := line[len(goroutineHeaderPrefix):]
	end := 0
	for end < len(rest) && rest[end] != ' ' {
		end++
	}
	id, err := strconv.ParseUint(string(rest[:end]), 10, 64)
	if err != nil {
		panic("loopkit: cannot parse goroutine id: " + err.Error())
	}
	return goroutineID(id)
}
