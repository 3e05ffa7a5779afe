package progress

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// The spinner never animates outside a terminal, so only messages and stage
// tracking are observable here.
func TestSpinnerSink(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	sink := newSpinnerSink(&buf)
	ctx := context.Background()

	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "loading", Message: "Loading proposals...", Spinner: true})
	assert.Equal(t, "loading", sink.Stage())
	assert.Equal(t, " Loading proposals...", sink.spinner.Suffix)

	sink.Info("found 3 proposals")
	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "complete"})
	assert.Equal(t, "complete", sink.Stage())
	assert.False(t, sink.spinner.Active())

	sink.Error("boom")
	sink.Stop()

	assert.Equal(t, "found 3 proposals\nboom\n", buf.String())
}

func TestNopSink(t *testing.T) {
	sink := NewNopSink()
	sink.OnProgress(context.Background(), usecase.ProgressEvent{Stage: "loading"})
	sink.Info("ignored")
	sink.Error("ignored")
}
