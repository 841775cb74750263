package rlog_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/apache/maven-resolver-sub005/internal/rlog"
	"github.com/apache/maven-resolver-sub005/pkg/checksum"
)

func TestSugarSatisfiesChecksumLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	sugar := rlog.NewSugar(zap.New(core))

	var l checksum.Logger = sugar
	l.Warnf("checksum mismatch for %s", "g:a:1.0")

	require.Equal(t, 1, logs.Len())
	require.Contains(t, logs.All()[0].Message, "checksum mismatch for g:a:1.0")
}
