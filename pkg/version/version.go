// Package version implements component A, VersionScheme: parsing of
// versions and version ranges/constraints, and a total order over
// versions.
//
// Grounded on golang-dep's Version/Constraint split
// (_examples/other_examples/solver.go, source_manager.go) for the
// contract shape, and on the teacher's zeebo/errs idiom for errors.
package version

import (
	"strconv"
	"strings"

	"github.com/zeebo/errs"
)

// Error is the namespaced error class for this package.
var Error = errs.Class("version")

// Version is a parsed, comparable version. Two versions parsed from
// identical input strings always compare equal and hash to the same
// key (spec.md §3 invariant: "identical input -> identical comparison
// class").
type Version struct {
	raw    string
	tokens []token
}

// String returns the original input string.
func (v Version) String() string { return v.raw }

// Scheme parses versions and constraints. The zero value is ready to
// use; it implements a generic dot/dash/qualifier ordering compatible
// with the Maven-2 version scheme referenced throughout spec.md, without
// depending on any particular build-tool's parser (spec.md §1 scope:
// "specific version-scheme parsers" are external; this is the module's
// own default implementation of that abstracted capability).
type Scheme struct{}

// Default is the package-level default scheme instance.
var Default = Scheme{}

// ParseVersion parses a literal version string.
func (Scheme) ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, Error.New("empty version")
	}
	return Version{raw: s, tokens: tokenize(s)}, nil
}

// Compare orders two versions. The result is <0, 0, or >0 as a<b, a==b,
// a>b.
func Compare(a, b Version) int {
	ta, tb := a.tokens, b.tokens
	for i := 0; i < len(ta) || i < len(tb); i++ {
		var x, y token
		if i < len(ta) {
			x = ta[i]
		} else {
			x = token{kind: kindNil}
		}
		if i < len(tb) {
			y = tb[i]
		} else {
			y = token{kind: kindNil}
		}
		if c := x.compare(y); c != 0 {
			return c
		}
	}
	return 0
}

// Less reports whether a orders before b.
func Less(a, b Version) bool { return Compare(a, b) < 0 }

// tokenKind distinguishes numeric, string, and "absent" components.
type tokenKind int

const (
	kindNumber tokenKind = iota
	kindString
	kindNil
)

type token struct {
	kind tokenKind
	num  int64
	str  string
}

// qualifierOrder ranks well-known pre-release qualifiers below "release"
// (empty string), matching conventional Maven ordering.
var qualifierOrder = map[string]int{
	"alpha":      -5,
	"a":          -5,
	"beta":       -4,
	"b":          -4,
	"milestone":  -3,
	"m":          -3,
	"rc":         -2,
	"cr":         -2,
	"snapshot":   -1,
	"":           0,
	"ga":         0,
	"final":      0,
	"release":    0,
	"sp":         1,
}

func (t token) compare(o token) int {
	if t.kind == kindNil && o.kind == kindNil {
		return 0
	}
	if t.kind == kindNumber && o.kind == kindNumber {
		switch {
		case t.num < o.num:
			return -1
		case t.num > o.num:
			return 1
		default:
			return 0
		}
	}
	if t.kind == kindString && o.kind == kindString {
		ra, oka := qualifierOrder[strings.ToLower(t.str)]
		rb, okb := qualifierOrder[strings.ToLower(o.str)]
		if oka && okb {
			if ra != rb {
				if ra < rb {
					return -1
				}
				return 1
			}
			return 0
		}
		return strings.Compare(strings.ToLower(t.str), strings.ToLower(o.str))
	}
	// Number vs string/nil: a number component outranks a string
	// qualifier at the same position. Against an absent component, a
	// numeric 0 ties (1.0 == 1), a known pre-release qualifier ranks
	// below (1.0-beta < 1.0), and any other component ranks above.
	if t.kind == kindNil {
		if o.kind == kindString {
			if r, ok := qualifierOrder[strings.ToLower(o.str)]; ok && r < 0 {
				return 1
			}
			return -1
		}
		if o.num == 0 {
			return 0
		}
		return -1
	}
	if o.kind == kindNil {
		return -o.compare(t)
	}
	if t.kind == kindNumber {
		return 1
	}
	return -1
}

// tokenize splits a version string into alternating numeric/alpha runs
// on '.', '-', '_' boundaries and on digit/letter transitions.
func tokenize(s string) []token {
	var tokens []token
	var cur strings.Builder
	var curIsDigit bool
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		text := cur.String()
		if curIsDigit {
			n, err := strconv.ParseInt(text, 10, 64)
			if err == nil {
				tokens = append(tokens, token{kind: kindNumber, num: n})
				cur.Reset()
				return
			}
		}
		tokens = append(tokens, token{kind: kindString, str: text})
		cur.Reset()
	}
	for i, r := range s {
		switch {
		case r == '.' || r == '-' || r == '_':
			flush()
		default:
			isDigit := r >= '0' && r <= '9'
			if cur.Len() > 0 && isDigit != curIsDigit {
				flush()
			}
			curIsDigit = isDigit
			cur.WriteRune(r)
			_ = i
		}
	}
	flush()
	return tokens
}
