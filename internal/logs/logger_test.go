package logs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		wantOut string
		wantErr string
	}{
		{
			name:    "verbose shows everything",
			level:   Verbose,
			wantOut: "verbose 1\ndisplay 2\n",
			wantErr: "error 3\n",
		},
		{
			name:    "display hides verbose",
			level:   Display,
			wantOut: "display 2\n",
			wantErr: "error 3\n",
		},
		{
			name:    "error only",
			level:   Error,
			wantOut: "",
			wantErr: "error 3\n",
		},
		{
			name:    "disabled hides errors too",
			level:   Disabled,
			wantOut: "",
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			log := New(tt.level, &out, &errOut)

			log.Verbosef("verbose %d", 1)
			log.Displayf("display %d", 2)
			log.Errorf("error %d", 3)

			require.Equal(t, tt.wantOut, out.String())
			require.Equal(t, tt.wantErr, errOut.String())
		})
	}
}

func TestLogger_Enabled(t *testing.T) {
	log := New(Display, nil, nil)
	require.False(t, log.Enabled(Verbose))
	require.True(t, log.Enabled(Display))
	require.True(t, log.Enabled(Error))
	require.False(t, Discard().Enabled(Error))
}
