package flagx

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept as-is",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "flag followed by another flag (no value)",
			args:         []string{"-c", "-notvalue"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "single letter flag does not swallow longer names",
			args:         []string{"-email", "a@b.c", "-d", "dsn"},
			allowedFlags: []string{"-d", "-e"},
			want:         []string{"-d", "dsn"},
		},
		{
			name:         "repeated allowed flag is preserved in order",
			args:         []string{"-m", "3", "-m", "5"},
			allowedFlags: []string{"-m"},
			want:         []string{"-m", "3", "-m", "5"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "/path/short.json", ConfigFileFlag([]string{"-c", "/path/short.json"}))
	assert.Equal(t, "/path/long.json", ConfigFileFlag([]string{"-a", ":8080", "-config", "/path/long.json"}))
	assert.Equal(t, "/path/eq.json", ConfigFileFlag([]string{"--config=/path/eq.json"}))
	assert.Equal(t, "/path/2.json", ConfigFileFlag([]string{"-c", "/path/1.json", "-config", "/path/2.json"}))
	assert.Empty(t, ConfigFileFlag([]string{"-x", "1"}))
}

func TestSplitCommand(t *testing.T) {
	cmd, rest := SplitCommand([]string{"grant", "-email", "a@b.c"})
	assert.Equal(t, "grant", cmd)
	assert.Equal(t, []string{"-email", "a@b.c"}, rest)

	cmd, rest = SplitCommand([]string{"-d", "dsn"})
	assert.Empty(t, cmd)
	assert.Equal(t, []string{"-d", "dsn"}, rest)

	cmd, rest = SplitCommand(nil)
	assert.Empty(t, cmd)
	assert.Empty(t, rest)
}
