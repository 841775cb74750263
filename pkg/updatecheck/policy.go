// Package updatecheck implements component G, UpdateCheckManager: the
// state machine deciding whether a remote (re)check is required for an
// artifact or metadata.
//
// Grounded on storj-storj's overlay Config.Run dispatch-by-policy shape
// (pkg/overlay/config_test.go) and spec.md §4.G for the exact policy
// grammar and decision table.
package updatecheck

import (
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/errs"
)

// Error is the namespaced error class for this package.
var Error = errs.Class("updatecheck")

// Policy is one of "never", "always", "daily" or "interval:<minutes>".
type Policy string

// Known policy literals.
const (
	Never  Policy = "never"
	Always Policy = "always"
	Daily  Policy = "daily"
)

// Interval builds an "interval:<n>" policy string.
func Interval(minutes int) Policy {
	return Policy("interval:" + strconv.Itoa(minutes))
}

// rank orders policies from most to least frequent, for Effective's
// "shortest-interval wins" comparison: always < interval:<n> < daily <
// never (spec.md §4.G).
func (p Policy) rank() int {
	switch {
	case p == Always:
		return 0
	case strings.HasPrefix(string(p), "interval:"):
		return 1
	case p == Daily:
		return 2
	default: // never, or anything unrecognized
		return 3
	}
}

func (p Policy) intervalMinutes() (int, bool) {
	if !strings.HasPrefix(string(p), "interval:") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(string(p), "interval:"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Effective returns the shortest-interval (most frequent) of a and b.
// When both are "interval:<n>", the smaller n wins. The comparison is
// commutative and monotone: replacing either input with a stricter
// (more frequent) policy never loosens the result (spec.md §8).
func Effective(a, b Policy) Policy {
	ra, rb := a.rank(), b.rank()
	if ra != rb {
		if ra < rb {
			return a
		}
		return b
	}
	if ra == 1 {
		na, oka := a.intervalMinutes()
		nb, okb := b.intervalMinutes()
		switch {
		case oka && okb:
			if na <= nb {
				return a
			}
			return b
		case oka:
			return a
		case okb:
			return b
		}
	}
	return a
}

// IsUpdateRequired implements spec.md §4.G's isUpdateRequired table:
//
//	never            -> false
//	always           -> true
//	daily            -> true iff lastUpdate < local midnight today
//	interval:n       -> true iff now - lastUpdate > n minutes
//	interval:<bogus> -> false
func IsUpdateRequired(now, lastUpdate time.Time, policy Policy) bool {
	switch {
	case policy == Never:
		return false
	case policy == Always:
		return true
	case policy == Daily:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return lastUpdate.Before(midnight)
	default:
		minutes, ok := policy.intervalMinutes()
		if !ok {
			return false
		}
		return now.Sub(lastUpdate) > time.Duration(minutes)*time.Minute
	}
}
