package syncctx_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/syncctx"
)

func pathFor(a artifact.Artifact) string    { return "/repo/" + a.Key() }
func metaPathFor(m artifact.Metadata) string { return "/repo/meta/" + m.Key() }

func TestExclusiveAcquireBlocksConcurrentWriter(t *testing.T) {
	factory := syncctx.NewLocal(pathFor, metaPathFor)
	a := artifact.New("g", "a", "1.0")

	ctx1 := factory.NewContext(false)
	require := assert.New(t)
	require.NoError(ctx1.Acquire(context.Background(), []artifact.Artifact{a}, nil))

	acquired := make(chan struct{})
	go func() {
		ctx2 := factory.NewContext(false)
		_ = ctx2.Acquire(context.Background(), []artifact.Artifact{a}, nil)
		close(acquired)
		ctx2.Release()
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should have blocked while first is held")
	case <-time.After(50 * time.Millisecond):
	}

	ctx1.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire never completed after release")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	factory := syncctx.NewLocal(pathFor, metaPathFor)
	a := artifact.New("g", "a", "1.0")
	ctx := factory.NewContext(false)
	assert.NoError(t, ctx.Acquire(context.Background(), []artifact.Artifact{a}, nil))
	ctx.Release()
	assert.NotPanics(t, func() { ctx.Release() })
}

func TestDuplicatePathsDoNotSelfDeadlock(t *testing.T) {
	factory := syncctx.NewLocal(pathFor, metaPathFor)
	a := artifact.New("g", "a", "1.0")
	ctx := factory.NewContext(false)
	done := make(chan struct{})
	go func() {
		_ = ctx.Acquire(context.Background(), []artifact.Artifact{a, a}, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("acquiring the same path twice in one call deadlocked")
	}
	ctx.Release()
}
