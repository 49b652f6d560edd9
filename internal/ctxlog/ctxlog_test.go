package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWithLogger_RoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestWith_AddsAttributes(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(buf, nil)))

	ctx, logger := With(ctx, "feature", "Site")
	logger.Info("Feature executed.")
	FromContext(ctx).Info("Again.")

	assert.Contains(t, buf.String(), `msg="Feature executed." feature=Site`)
	assert.Contains(t, buf.String(), `msg=Again. feature=Site`)
}
