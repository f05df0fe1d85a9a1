package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	// The server command line mixes flags owned by different layers.
	server := []string{"-env", "-grpc", "-t", "-r"}

	tests := map[string]struct {
		args []string
		keep []string
		want []string
	}{
		"dotenv path among server flags": {
			args: []string{"-a", ":8080", "-env", ".env.local", "-s", "secret"},
			keep: server,
			want: []string{"-env", ".env.local"},
		},
		"equals form keeps value intact": {
			args: []string{"-grpc=:9090", "-d", "postgres://u:p@db/verixa?x=y"},
			keep: server,
			want: []string{"-grpc=:9090"},
		},
		"equals value containing dashes and equals": {
			args: []string{"-u=http://localhost:8080/?next=--home"},
			keep: []string{"-u"},
			want: []string{"-u=http://localhost:8080/?next=--home"},
		},
		"ttl flags keep command line order": {
			args: []string{"-r", "1440", "-m", "5", "-t", "15"},
			keep: server,
			want: []string{"-r", "1440", "-t", "15"},
		},
		"trailing flag without value": {
			args: []string{"-s", "secret", "-t"},
			keep: server,
			want: []string{"-t"},
		},
		"next flag is not taken as value": {
			args: []string{"-env", "-grpc", ":9090"},
			keep: server,
			want: []string{"-env", "-grpc", ":9090"},
		},
		"negative number is treated as a flag": {
			args: []string{"-t", "-5"},
			keep: []string{"-t"},
			want: []string{"-t"},
		},
		"repeated flag kept twice": {
			args: []string{"-c", "base.json", "-c", "override.json"},
			keep: []string{"-c", "-config"},
			want: []string{"-c", "base.json", "-c", "override.json"},
		},
		"positional arguments dropped": {
			args: []string{"login", "-u", "http://verixa.local", "extra"},
			keep: []string{"-u"},
			want: []string{"-u", "http://verixa.local"},
		},
		"nothing allowed": {
			args: []string{"-env", ".env"},
			keep: nil,
			want: []string{},
		},
		"no args": {
			args: nil,
			keep: server,
			want: []string{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.keep))
		})
	}
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"verixa-server"}, args...)
}

func TestJsonConfigFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short name", []string{"-grpc", ":9090", "-c", "verixa.json"}, "verixa.json"},
		{"long name with equals", []string{"-config=/etc/verixa/server.json"}, "/etc/verixa/server.json"},
		{"later occurrence wins", []string{"-config", "a.json", "-c", "b.json"}, "b.json"},
		{"not given", []string{"-env", ".env", "-t", "15"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)
			assert.Equal(t, tt.want, JsonConfigFlags())
		})
	}
}

func TestEnvFileFlags(t *testing.T) {
	withArgs(t, "-s", "secret", "-env=.env.test", "-r", "60")
	assert.Equal(t, ".env.test", EnvFileFlags())

	withArgs(t, "-s", "secret")
	assert.Empty(t, EnvFileFlags())
}

func TestStringFlag_IgnoresFlagsOfOtherLayers(t *testing.T) {
	withArgs(t, "-s", "secret", "-grpc", ":9090", "-t", "15", "-u", "http://localhost:8080")
	assert.Equal(t, ":9090", StringFlag("grpc"))
	assert.Equal(t, "http://localhost:8080", StringFlag("u"))
	assert.Empty(t, StringFlag("d"))
}
