package rlog

import (
	"go.uber.org/zap"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/connector"
	"github.com/apache/maven-resolver-sub005/pkg/deploy"
	"github.com/apache/maven-resolver-sub005/pkg/resolve"
)

// ResolveListener logs pkg/resolve's two guaranteed events at debug and
// info level respectively.
type ResolveListener struct {
	Log *zap.Logger
}

var _ resolve.Listener = ResolveListener{}

func (l ResolveListener) ArtifactResolving(a artifact.Artifact) {
	l.Log.Debug("resolving artifact", zap.String("artifact", a.String()))
}

func (l ResolveListener) ArtifactResolved(a artifact.Artifact, err error) {
	if err != nil {
		l.Log.Info("artifact resolution failed", zap.String("artifact", a.String()), zap.Error(err))
		return
	}
	l.Log.Info("artifact resolved", zap.String("artifact", a.String()))
}

// DeployListener logs pkg/deploy's install/deploy events.
type DeployListener struct {
	Log *zap.Logger
}

var _ deploy.Listener = DeployListener{}

func (l DeployListener) OnEvent(kind, coordinate string, err error) {
	if err != nil {
		l.Log.Warn(kind, zap.String("coordinate", coordinate), zap.Error(err))
		return
	}
	l.Log.Debug(kind, zap.String("coordinate", coordinate))
}

// TransferListener logs pkg/connector's per-transfer state changes.
type TransferListener struct {
	Log *zap.Logger
}

var _ connector.TransferListener = TransferListener{}

func (l TransferListener) OnStateChanged(kind, path string, state connector.State, err error) {
	fields := []zap.Field{zap.String("kind", kind), zap.String("path", path), zap.Int("state", int(state))}
	if err != nil {
		l.Log.Warn("transfer error", append(fields, zap.Error(err))...)
		return
	}
	l.Log.Debug("transfer state", fields...)
}
