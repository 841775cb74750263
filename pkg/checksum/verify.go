package checksum

// Policy is one of the three named strategies in spec.md §4.D.
type Policy int

// Known policies, ordered from least to most tolerant for Effective's
// "stricter wins" comparison.
const (
	Fail Policy = iota
	Warn
	Ignore
)

// ParsePolicy maps a configuration token to a Policy; an unrecognized
// token maps to Warn (spec.md §4.D "Effective policy").
func ParsePolicy(token string) Policy {
	switch token {
	case "fail":
		return Fail
	case "warn":
		return Warn
	case "ignore":
		return Ignore
	default:
		return Warn
	}
}

// Effective computes the stricter of two policies: FAIL > WARN > IGNORE
// (spec.md §8 testable property: commutative, FAIL if either is FAIL,
// WARN if either is WARN and neither is FAIL, else IGNORE).
func Effective(a, b Policy) Policy {
	if a == Fail || b == Fail {
		return Fail
	}
	if a == Warn || b == Warn {
		return Warn
	}
	return Ignore
}

// Logger receives WARN-level diagnostics; callers inject their own (e.g.
// a zap.SugaredLogger wrapper) rather than this package depending on a
// concrete logging library.
type Logger interface {
	Warnf(format string, args ...interface{})
}

// nopLogger discards all WARN diagnostics.
type nopLogger struct{}

func (nopLogger) Warnf(string, ...interface{}) {}

// Outcome is the per-candidate result after Decide evaluates a computed
// checksum against an expected one.
type Outcome struct {
	Accepted bool
	Err      error
}

// Candidate is one checksum to evaluate: its kind, algorithm, expected
// value (empty if none was available) and an error from computing it,
// if any.
type Candidate struct {
	Kind      Kind
	Algorithm string
	Expected  string
	Actual    string
	ComputeErr error
}

// Decide applies policy to the ordered list of candidates, implementing
// spec.md §4.H step 4 / §4.D's full state table:
//   - FAIL: accept on match; on mismatch, throw unless the mismatching
//     candidate's kind is "unofficial" (then accept); throw on a compute
//     error; throw "no checksums available" if every candidate abstained
//     (no expected value at all).
//   - WARN: log and accept on mismatch or error.
//   - IGNORE: no candidates are consulted at all; accept unconditionally.
func Decide(policy Policy, candidates []Candidate, logger Logger) Outcome {
	if policy == Ignore {
		return Outcome{Accepted: true}
	}
	if logger == nil {
		logger = nopLogger{}
	}
	sawAny := false
	for _, c := range candidates {
		if c.Expected == "" && c.ComputeErr == nil {
			continue // abstained: no checksum of this kind was available
		}
		sawAny = true
		if c.ComputeErr != nil {
			if policy == Fail {
				return Outcome{Accepted: false, Err: Error.New("%s: %v", c.Algorithm, c.ComputeErr)}
			}
			logger.Warnf("checksum error for %s: %v", c.Algorithm, c.ComputeErr)
			continue
		}
		if c.Actual == c.Expected {
			return Outcome{Accepted: true}
		}
		mismatch := &MismatchError{Algorithm: c.Algorithm, Expected: c.Expected, Actual: c.Actual}
		if policy == Fail {
			if !c.Kind.Official() {
				continue
			}
			return Outcome{Accepted: false, Err: mismatch}
		}
		logger.Warnf("%v", mismatch)
	}
	if !sawAny {
		if policy == Fail {
			return Outcome{Accepted: false, Err: Error.New("no checksums available")}
		}
		logger.Warnf("no checksums available")
	}
	return Outcome{Accepted: true}
}
