package media_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/termplay/media"
)

func TestParseRate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  float64
		err   bool
	}{
		"integer ratio":  {input: "25/1", want: 25},
		"ntsc ratio":     {input: "30000/1001", want: 30000.0 / 1001.0},
		"decimal":        {input: "29.97", want: 29.97},
		"zero":           {input: "0/0", err: true},
		"zero numerator": {input: "0/1", err: true},
		"negative":       {input: "-24", err: true},
		"garbage":        {input: "fast", err: true},
		"empty":          {input: "", err: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := media.ParseRate(tc.input)
			if tc.err {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestParseProbe(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  media.Info
		err   error
	}{
		"video and audio": {
			input: `{"streams": [
				{"codec_type": "video", "width": 1920, "height": 1080,
				 "r_frame_rate": "24/1", "avg_frame_rate": "24/1"},
				{"codec_type": "audio"}
			]}`,
			want: media.Info{Width: 1920, Height: 1080, FPS: 24, HasAudio: true},
		},
		"falls back to r_frame_rate": {
			input: `{"streams": [
				{"codec_type": "video", "width": 640, "height": 480,
				 "r_frame_rate": "30/1", "avg_frame_rate": "0/0"}
			]}`,
			want: media.Info{Width: 640, Height: 480, FPS: 30},
		},
		"first video stream wins": {
			input: `{"streams": [
				{"codec_type": "video", "width": 320, "height": 240, "avg_frame_rate": "10/1"},
				{"codec_type": "video", "width": 640, "height": 480, "avg_frame_rate": "30/1"}
			]}`,
			want: media.Info{Width: 320, Height: 240, FPS: 10},
		},
		"no video": {
			input: `{"streams": [{"codec_type": "audio"}]}`,
			err:   media.ErrProbe,
		},
		"no rate": {
			input: `{"streams": [{"codec_type": "video", "width": 1, "height": 1}]}`,
			err:   media.ErrProbe,
		},
		"no size": {
			input: `{"streams": [{"codec_type": "video", "avg_frame_rate": "24/1"}]}`,
			err:   media.ErrProbe,
		},
		"not json": {
			input: `Input #0, mov`,
			err:   media.ErrProbe,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := media.ParseProbe([]byte(tc.input))
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
