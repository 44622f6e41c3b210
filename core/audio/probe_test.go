package audio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProber struct {
	d   float64
	err error
}

func (s stubProber) Duration(context.Context, string) (float64, error) { return s.d, s.err }

func TestParseDuration(t *testing.T) {
	d, err := parseDuration([]byte(`{"format":{"duration":"183.456000"}}`))
	require.NoError(t, err)
	assert.InDelta(t, 183.456, d, 0.0001)

	_, err = parseDuration([]byte(`{"format":{}}`))
	assert.Error(t, err)

	_, err = parseDuration([]byte(`not json`))
	assert.Error(t, err)
}

func TestProbeSecondsDegradesToZero(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, 184, ProbeSeconds(ctx, stubProber{d: 183.6}, "x.mp3"))
	assert.Equal(t, 0, ProbeSeconds(ctx, stubProber{err: errors.New("corrupt")}, "x.mp3"))
	assert.Equal(t, 0, ProbeSeconds(ctx, nil, "x.mp3"))

	missing := NewFFprobe("/nonexistent/bin/ffmpeg")
	assert.Equal(t, 0, ProbeSeconds(ctx, missing, "x.mp3"))
}

func TestNewFFprobePath(t *testing.T) {
	assert.Equal(t, "/usr/bin/ffprobe", NewFFprobe("/usr/bin/ffmpeg").ffprobePath)
	assert.Equal(t, "ffprobe", NewFFprobe("ffmpeg").ffprobePath)
}
