package connector

import (
	"context"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/apache/maven-resolver-sub005/pkg/checksum"
	"github.com/apache/maven-resolver-sub005/pkg/transport"
)

// Put implements spec.md §4.H RepositoryConnector.put: both collections
// upload concurrently up to the configured thread pool bound, with
// parent collections created up the path chain by the Transporter
// itself (spec.md §4.H "MKCOL ... up the path chain").
func (c *Connector) Put(ctx context.Context, artifacts []*ArtifactUpload, metadatas []*MetadataUpload) error {
	sem := semaphore.NewWeighted(c.parallelism())
	g, gctx := errgroup.WithContext(ctx)

	for _, up := range artifacts {
		up := up
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				up.Exception = err
				return nil
			}
			defer sem.Release(1)
			up.Exception = c.putOne(gctx, up.RemotePath, up.LocalPath, up.Listener)
			return nil
		})
	}
	for _, up := range metadatas {
		up := up
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				up.Exception = err
				return nil
			}
			defer sem.Release(1)
			up.Exception = c.putOne(gctx, up.RemotePath, up.LocalPath, up.Listener)
			return nil
		})
	}
	return g.Wait()
}

func (c *Connector) putOne(ctx context.Context, remotePath, localPath string, listener TransferListener) error {
	notify(listener, "put", remotePath, Active, nil)

	f, err := os.Open(localPath)
	if err != nil {
		notify(listener, "put", remotePath, DoneError, err)
		return Error.Wrap(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		notify(listener, "put", remotePath, DoneError, err)
		return Error.Wrap(err)
	}

	if err := c.Transport.Put(ctx, transport.PutRequest{Path: remotePath, Body: f, Size: info.Size()}); err != nil {
		notify(listener, "put", remotePath, DoneError, err)
		return Error.Wrap(err)
	}

	if err := c.putChecksums(ctx, remotePath, localPath); err != nil {
		notify(listener, "put", remotePath, DoneError, err)
		return err
	}

	notify(listener, "put", remotePath, DoneSuccess, nil)
	return nil
}

// putChecksums uploads a side-car checksum file per algorithm the
// Layout advertises, alongside the artifact -- the deploy-side
// complement of GET's remote-external verification (spec.md §4.H,
// §4.O).
func (c *Connector) putChecksums(ctx context.Context, remotePath, localPath string) error {
	for _, cs := range c.Layout.Checksums(remotePath) {
		h := checksum.NewHasher(cs.Algorithm)
		if h == nil {
			continue
		}
		digest, err := hashFile(localPath, h)
		if err != nil {
			return Error.Wrap(err)
		}
		body := strings.NewReader(digest)
		if err := c.Transport.Put(ctx, transport.PutRequest{Path: remotePath + cs.Extension, Body: body, Size: int64(len(digest))}); err != nil {
			return Error.Wrap(err)
		}
	}
	return nil
}
