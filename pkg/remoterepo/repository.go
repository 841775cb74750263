// Package remoterepo implements component I, the RemoteRepositoryManager:
// aggregation of user-declared remotes with their policies, and the
// mirror/proxy/authentication selector contracts.
//
// Grounded on storj-storj's pkg/overlay (a Config struct with a .Run
// method dispatching on a URL scheme, see overlay/config_test.go) and
// golang-dep's SourceManager (_examples/other_examples/source_manager.go)
// for the aggregation/caching shape.
package remoterepo

import "github.com/zeebo/errs"

// Error is the namespaced error class for this package.
var Error = errs.Class("remoterepo")

// ContentType distinguishes the kind of content a repository serves.
type ContentType string

// Known content types.
const (
	ContentDefault ContentType = "default"
)

// UpdatePolicy is one of "never", "always", "daily" or "interval:<n>".
// Parsing and comparison live in pkg/updatecheck; this package only
// carries the raw string through configuration.
type UpdatePolicy string

// Known update policy literals.
const (
	UpdateNever    UpdatePolicy = "never"
	UpdateAlways   UpdatePolicy = "always"
	UpdateDaily    UpdatePolicy = "daily"
	UpdateDefault               = UpdateDaily
)

// ChecksumPolicyName is one of "fail", "warn" or "ignore".
type ChecksumPolicyName string

// Known checksum policy literals.
const (
	ChecksumFail   ChecksumPolicyName = "fail"
	ChecksumWarn   ChecksumPolicyName = "warn"
	ChecksumIgnore ChecksumPolicyName = "ignore"
)

// Policy carries the per-release-type settings of a RemoteRepository.
type Policy struct {
	Enabled        bool
	UpdatePolicy   UpdatePolicy
	ChecksumPolicy ChecksumPolicyName
}

// DefaultPolicy is the conventional "check daily, warn on checksum
// mismatch" policy.
func DefaultPolicy() Policy {
	return Policy{Enabled: true, UpdatePolicy: UpdateDaily, ChecksumPolicy: ChecksumWarn}
}

// Proxy describes an HTTP(S) proxy to reach a repository through.
type Proxy struct {
	Type string // "http", "https", "socks5"
	Host string
	Port int
	// NonProxyHosts is a list of host patterns to reach directly.
	NonProxyHosts []string
}

// Authentication carries credentials for reaching a repository.
type Authentication struct {
	Username   string
	Password   string
	PrivateKey string
}

// MirrorOf describes which repository ids a mirror stands in for.
type MirrorOf struct {
	MirrorID string
	Of       string // comma-separated ids or "*" for all; "external:*" has no special meaning to StaticMirrorSelector
}

// Repository is a RemoteRepository value: {id, contentType, url,
// releases/snapshots policy, optional proxy/authentication, optional
// mirrored-repositories list}. See spec.md §3.
type Repository struct {
	ID              string
	ContentType     ContentType
	URL             string
	ReleasesPolicy  Policy
	SnapshotsPolicy Policy
	Proxy           *Proxy
	Authentication  *Authentication

	// Mirrored is the list of repositories this one mirrors, populated
	// when this Repository is itself a mirror (see MirrorSelector).
	Mirrored []Repository
}

// PolicyFor returns the effective policy for the given version kind.
func (r Repository) PolicyFor(snapshot bool) Policy {
	if snapshot {
		return r.SnapshotsPolicy
	}
	return r.ReleasesPolicy
}

// KeyFunc computes the "repository key" used for aggregation, caching
// and LocalRepositoryManager origin tracking. The function is pluggable
// (see spec.md §4.I "repository key function"); the zero value is NID.
type KeyFunc func(Repository) string

// NID is the default repository key function: the bare id.
func NID(r Repository) string { return r.ID }

// NIDHurl keys by id plus a hash of the URL, distinguishing two
// declarations that reuse an id against different URLs.
func NIDHurl(r Repository) string {
	return r.ID + "#" + hashURL(r.URL)
}

func hashURL(url string) string {
	var h uint32 = 2166136261
	for i := 0; i < len(url); i++ {
		h ^= uint32(url[i])
		h *= 16777619
	}
	return itoaHex(h)
}

func itoaHex(v uint32) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}
