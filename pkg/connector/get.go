package connector

import (
	"context"
	"hash"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/apache/maven-resolver-sub005/pkg/checksum"
	"github.com/apache/maven-resolver-sub005/pkg/transport"
)

// Get implements spec.md §4.H RepositoryConnector.get: both collections
// are processed concurrently up to the configured thread pool bound.
// Per-item failures are recorded on the item itself rather than
// aborting the batch (spec.md §4.H "a failed item does not cancel its
// siblings").
func (c *Connector) Get(ctx context.Context, artifacts []*ArtifactDownload, metadatas []*MetadataDownload) error {
	sem := semaphore.NewWeighted(c.parallelism())
	g, gctx := errgroup.WithContext(ctx)

	for _, dl := range artifacts {
		dl := dl
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				dl.Exception = err
				return nil
			}
			defer sem.Release(1)
			dl.Exception = c.getOne(gctx, dl.RemotePath, dl.LocalPath, dl.ChecksumPolicy, dl.Listener)
			return nil
		})
	}
	for _, dl := range metadatas {
		dl := dl
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				dl.Exception = err
				return nil
			}
			defer sem.Release(1)
			dl.Exception = c.getOne(gctx, dl.RemotePath, dl.LocalPath, dl.ChecksumPolicy, dl.Listener)
			return nil
		})
	}
	return g.Wait()
}

// getOne implements a single transfer's steps 1-5 of spec.md §4.H:
// resume if a partial file exists, download, verify under policy, and
// only on success move the file into place.
func (c *Connector) getOne(ctx context.Context, remotePath, localPath string, policy checksum.Policy, listener TransferListener) error {
	notify(listener, "get", remotePath, Active, nil)

	resumeFrom := int64(0)
	if info, err := os.Stat(localPath + tempSuffix); err == nil {
		resumeFrom = info.Size()
	}

	res, err := c.Transport.Get(ctx, transport.GetRequest{Path: remotePath, ResumeFrom: resumeFrom})
	if err != nil {
		notify(listener, "get", remotePath, DoneError, err)
		return Error.Wrap(err)
	}
	defer res.Body.Close()

	if err := c.verifyAndWrite(ctx, remotePath, localPath, res, policy, resumeFrom); err != nil {
		notify(listener, "get", remotePath, DoneError, err)
		return err
	}
	notify(listener, "get", remotePath, DoneSuccess, nil)
	return nil
}

// tempSuffix marks a partially-downloaded file eligible for resume on a
// later attempt (spec.md §4.H step 2).
const tempSuffix = ".part"

// verifyAndWrite streams res's body into a resumable temp file,
// computes every configured checksum algorithm over the file's full
// contents, decides under policy, and only then atomically renames into
// place -- so a failed verification never leaves a file at its final
// path (spec.md §8 scenario 5), and a failed transfer leaves a .part
// file a later attempt can resume from.
func (c *Connector) verifyAndWrite(ctx context.Context, remotePath, localPath string, res transport.GetResult, policy checksum.Policy, resumeFrom int64) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return Error.Wrap(err)
	}
	tmpName := localPath + tempSuffix

	flags := os.O_CREATE | os.O_WRONLY
	if res.Resumed && resumeFrom > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	tmp, err := os.OpenFile(tmpName, flags, 0o644)
	if err != nil {
		return Error.Wrap(err)
	}

	if _, err := io.Copy(tmp, contextReader{ctx: ctx, r: res.Body}); err != nil {
		tmp.Close()
		return Error.Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return Error.Wrap(err)
	}

	candidates := c.computeCandidates(ctx, remotePath, tmpName, res.Headers)
	outcome := checksum.Decide(policy, candidates, nil)
	if !outcome.Accepted {
		return outcome.Err
	}
	return os.Rename(tmpName, localPath)
}

// computeCandidates hashes the downloaded file once per algorithm the
// Layout advertises, then pairs each digest against both a
// remote-included expectation (response headers, unofficial) and a
// remote-external expectation (a separate GET per algorithm's side-car
// file, official), per spec.md §4.H step 3.
func (c *Connector) computeCandidates(ctx context.Context, remotePath, localFile string, headers map[string][]string) []checksum.Candidate {
	var out []checksum.Candidate
	for _, cs := range c.Layout.Checksums(remotePath) {
		h := checksum.NewHasher(cs.Algorithm)
		if h == nil {
			continue
		}
		actual, computeErr := hashFile(localFile, h)

		out = append(out, checksum.Candidate{
			Kind:       checksum.RemoteIncluded,
			Algorithm:  cs.Algorithm,
			Expected:   headerChecksum(headers, cs.Algorithm),
			Actual:     actual,
			ComputeErr: computeErr,
		})

		if expected, err := c.fetchExternalChecksum(ctx, remotePath+cs.Extension); err == nil && expected != "" {
			out = append(out, checksum.Candidate{
				Kind:       checksum.RemoteExternal,
				Algorithm:  cs.Algorithm,
				Expected:   expected,
				Actual:     actual,
				ComputeErr: computeErr,
			})
		}
	}
	return out
}

// fetchExternalChecksum downloads a checksum side-car file and extracts
// its first whitespace-separated token (checksum files conventionally
// read "<hex>" or "<hex>  <filename>").
func (c *Connector) fetchExternalChecksum(ctx context.Context, path string) (string, error) {
	res, err := c.Transport.Get(ctx, transport.GetRequest{Path: path})
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	return firstToken(string(data)), nil
}

func hashFile(path string, h hash.Hash) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hexDigest(h), nil
}

// contextReader aborts an in-progress copy as soon as ctx is done,
// matching the cancellation contract of spec.md §5.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	select {
	case <-c.ctx.Done():
		return 0, c.ctx.Err()
	default:
	}
	return c.r.Read(p)
}
