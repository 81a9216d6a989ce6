package flagx

import (
	"os"
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
			args:         []string{"-c", "conf.json", "-u", "https://dav.example.com"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.json", "-u", "https://dav.example.com"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "both forms present, order preserved",
			args:         []string{"--config=first.json", "-c", "second.json", "-x", "1"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=first.json", "-c", "second.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "flag without value at end kept as-is",
			args:         []string{"-c"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c"},
		},
		{
			name:         "next dash-starting token is not a value",
			args:         []string{"-c", "-notvalue"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c"},
		},
		{
			name:         "multiple allowed flags kept",
			args:         []string{"-u", "https://dav.example.com", "-c", "conf.json", "--other", "x"},
			allowedFlags: []string{"-c", "-u"},
			want:         []string{"-u", "https://dav.example.com", "-c", "conf.json"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "flags before the command are skipped",
			args: []string{"-c", "conf.json", "sync"},
			want: []string{"sync"},
		},
		{
			name: "everything after the command passes through",
			args: []string{"-db", "x.db", "list", "-a", "needle"},
			want: []string{"list", "-a", "needle"},
		},
		{
			name: "equals form consumes no value",
			args: []string{"--config=conf.json", "status"},
			want: []string{"status"},
		},
		{
			name: "no command",
			args: []string{"-c", "conf.json"},
			want: nil,
		},
		{
			name: "bare command",
			args: []string{"add", "https://go.dev"},
			want: []string{"add", "https://go.dev"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommandArgs(tt.args))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"tabdav", "-c", "conf.json", "-u", "https://dav.example.com"}
	assert.Equal(t, "conf.json", JsonConfigFlags())

	os.Args = []string{"tabdav", "--config=alt.json"}
	assert.Equal(t, "alt.json", JsonConfigFlags())

	os.Args = []string{"tabdav", "-u", "https://dav.example.com"}
	assert.Equal(t, "", JsonConfigFlags())
}
