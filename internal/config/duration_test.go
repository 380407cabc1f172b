package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_YAML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "seconds", input: `d: 30s`, want: 30 * time.Second},
		{name: "compound", input: `d: 1h30m`, want: 90 * time.Minute},
		{name: "empty", input: `d: ""`, want: 0},
		{name: "invalid", input: `d: later`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var v struct {
				D Duration `yaml:"d"`
			}
			err := yaml.Unmarshal([]byte(tt.input), &v)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.D.Duration())
		})
	}

	out, err := yaml.Marshal(struct {
		D Duration `yaml:"d"`
	}{D: Duration(5 * time.Second)})
	require.NoError(t, err)
	assert.Equal(t, "d: 5s\n", string(out))
}

func TestDuration_JSON(t *testing.T) {
	t.Parallel()

	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"250ms"`), &d))
	assert.Equal(t, 250*time.Millisecond, d.Duration())

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.Equal(t, Duration(0), d)

	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`12`), &d))

	out, err := json.Marshal(Duration(2 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, `"2m0s"`, string(out))
	assert.Equal(t, "2m0s", Duration(2*time.Minute).String())
}
