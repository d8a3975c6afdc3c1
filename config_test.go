package httpd

import (
	"io"
	"testing"
)

func TestParsePort(t *testing.T) {
	testCases := []struct {
		name      string
		arg       string
		expected  int
		expectErr bool
	}{
		{name: "valid port", arg: "8080", expected: 8080},
		{name: "lowest port", arg: "1", expected: 1},
		{name: "highest port", arg: "65535", expected: 65535},
		{name: "zero", arg: "0", expectErr: true},
		{name: "too large", arg: "65536", expectErr: true},
		{name: "negative", arg: "-80", expectErr: true},
		{name: "not a number", arg: "http", expectErr: true},
		{name: "empty", arg: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ParsePort(tc.arg)
			if tc.expectErr {
				if err == nil {
					t.Fatalf("expected an error for %q, received config %+v", tc.arg, cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.arg, err)
			}
			if cfg.Port != tc.expected {
				t.Errorf("wrong port - expected: %d\treceived: %d", tc.expected, cfg.Port)
			}
		})
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{Port: 9090}
	if addr := cfg.Address(); addr != ":9090" {
		t.Errorf("wrong address - expected: %s\treceived: %s", ":9090", addr)
	}
}

func TestConfigNewLogger(t *testing.T) {
	quiet := (&Config{Port: 80, Quiet: true}).NewLogger()
	if quiet.Writer() != io.Discard {
		t.Error("quiet logger should discard output")
	}

	loud := (&Config{Port: 80}).NewLogger()
	if loud.Prefix() != "error :: " {
		t.Errorf("wrong prefix - expected: %q\treceived: %q", "error :: ", loud.Prefix())
	}
}

func TestNewServer(t *testing.T) {
	s := NewServer(&Config{Port: 8081, Quiet: true})
	defer s.Handler.Reaper.Stop()

	if s.Addr != ":8081" {
		t.Errorf("wrong address - expected: %s\treceived: %s", ":8081", s.Addr)
	}
	if s.Handler.Logger != s.Logger {
		t.Error("handler and server should share a logger")
	}
}
