package checksum_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apache/maven-resolver-sub005/pkg/checksum"
)

func TestComputeSHA1(t *testing.T) {
	sum, err := checksum.Compute("SHA-1", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", sum)
}

func TestComputeUnsupported(t *testing.T) {
	_, err := checksum.Compute("crc32", strings.NewReader(""))
	assert.Error(t, err)
}

func TestEffectivePolicyCommutativeAndStrictest(t *testing.T) {
	assert.Equal(t, checksum.Fail, checksum.Effective(checksum.Fail, checksum.Warn))
	assert.Equal(t, checksum.Fail, checksum.Effective(checksum.Warn, checksum.Fail))
	assert.Equal(t, checksum.Warn, checksum.Effective(checksum.Warn, checksum.Ignore))
	assert.Equal(t, checksum.Ignore, checksum.Effective(checksum.Ignore, checksum.Ignore))
}

func TestParsePolicyUnknownIsWarn(t *testing.T) {
	assert.Equal(t, checksum.Warn, checksum.ParsePolicy("bogus"))
}

func TestDecideFailOnMismatch(t *testing.T) {
	// spec.md §8 scenario 5.
	candidates := []checksum.Candidate{{
		Kind: checksum.RemoteExternal, Algorithm: "SHA-1",
		Expected: "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3",
		Actual:   "deadbeef",
	}}
	out := checksum.Decide(checksum.Fail, candidates, nil)
	assert.False(t, out.Accepted)
	assert.Error(t, out.Err)
}

func TestDecideWarnAcceptsMismatch(t *testing.T) {
	candidates := []checksum.Candidate{{Kind: checksum.RemoteExternal, Algorithm: "SHA-1", Expected: "x", Actual: "y"}}
	out := checksum.Decide(checksum.Warn, candidates, nil)
	assert.True(t, out.Accepted)
	assert.NoError(t, out.Err)
}

func TestDecideIgnoreSkipsEntirely(t *testing.T) {
	candidates := []checksum.Candidate{{Kind: checksum.RemoteExternal, Algorithm: "SHA-1", Expected: "x", Actual: "y"}}
	out := checksum.Decide(checksum.Ignore, candidates, nil)
	assert.True(t, out.Accepted)
}

func TestDecideFailNoChecksumsAvailable(t *testing.T) {
	out := checksum.Decide(checksum.Fail, nil, nil)
	assert.False(t, out.Accepted)
	assert.Error(t, out.Err)
}

func TestDecideFailUnofficialMismatchAccepted(t *testing.T) {
	candidates := []checksum.Candidate{{Kind: checksum.RemoteIncluded, Algorithm: "SHA-1", Expected: "x", Actual: "y"}}
	out := checksum.Decide(checksum.Fail, candidates, nil)
	assert.True(t, out.Accepted)
}
