package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDurationUnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"seconds", "15s", 15 * time.Second, false},
		{"minutes", "10m", 10 * time.Minute, false},
		{"hours", "24h", 24 * time.Hour, false},
		{"milliseconds", "500ms", 500 * time.Millisecond, false},
		{"compound", "1h30m", 90 * time.Minute, false},
		{"days", "30d", 30 * 24 * time.Hour, false},
		{"weeks", "2w", 14 * 24 * time.Hour, false},
		{"fractional days", "1.5d", 36 * time.Hour, false},
		{"negative days", "-1d", -24 * time.Hour, false},
		{"garbage", "soon", 0, true},
		{"bare number", "\"30\"", 0, true},
		{"unknown suffix", "3y", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := yaml.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.ToDuration())
		})
	}
}

func TestDurationMarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, "1m30s\n", string(out))
}

func TestDurationJSON(t *testing.T) {
	// Strings use the same parser as YAML, numbers are nanoseconds.
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"2w"`), &d))
	assert.Equal(t, 14*24*time.Hour, d.ToDuration())

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, d.ToDuration())

	assert.Error(t, json.Unmarshal([]byte(`"never"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	out, err := json.Marshal(Duration(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, `"1m0s"`, string(out))
}

func TestDurationString(t *testing.T) {
	assert.Equal(t, "15s", Duration(15*time.Second).String())
	assert.Equal(t, "0s", Duration(0).String())
}
