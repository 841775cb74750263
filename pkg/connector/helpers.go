package connector

import (
	"encoding/hex"
	"hash"
	"strings"
)

// headerChecksumNames maps a checksum algorithm to the response header
// names a remote is conventionally expected to include it under
// (spec.md §4.H step 3, "remote-included" kind).
var headerChecksumNames = map[string][]string{
	"SHA-1":  {"X-Checksum-Sha1", "ETag"},
	"SHA-256": {"X-Checksum-Sha256"},
	"MD5":    {"X-Checksum-Md5", "Content-MD5"},
}

// headerChecksum returns the first matching header value for algorithm,
// or "" if the remote included none. ETag values are frequently quoted
// and occasionally weak-tagged; both are stripped.
func headerChecksum(headers map[string][]string, algorithm string) string {
	for _, name := range headerChecksumNames[algorithm] {
		for k, vs := range headers {
			if !strings.EqualFold(k, name) || len(vs) == 0 {
				continue
			}
			v := strings.TrimPrefix(vs[0], "W/")
			return strings.Trim(v, `"`)
		}
	}
	return ""
}

func hexDigest(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// firstToken returns the first whitespace-separated field of a checksum
// side-car file's contents, tolerating the "<hex>  <filename>" form some
// tools emit alongside the bare-hex form.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
