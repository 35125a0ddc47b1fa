package config

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zer0users/wpk/internal/platform"
)

// mockDetector is a test implementation of platform.Detector.
type mockDetector struct {
	info *platform.Info
	err  error
}

func (m *mockDetector) Detect(ctx context.Context) (*platform.Info, error) {
	return m.info, m.err
}

func TestParser_ParseString_Minimal(t *testing.T) {
	parser := NewParser(nil)
	cfg, err := parser.ParseString(context.Background(), `wpk = {}`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	want := Default()
	if *cfg != *want {
		t.Errorf("ParseString() = %+v, want defaults %+v", cfg, want)
	}
}

func TestParser_ParseString_Full(t *testing.T) {
	luaCode := `
		wpk = {
			repository = {
				base_url = "https://mirror.example.com/packages",
				listing_url = "https://mirror.example.com/index",
				archive_suffix = "zip",
			},
			install = {
				interpreter = "python3.12",
				script_name = "Setupfile",
				unpacker = "builtin",
				assume_yes = true,
				temp_dir = "/var/tmp",
			},
			http = { user_agent = "WPK/1.0 mirror" },
			log = { level = "debug" },
		}
	`

	cfg, err := NewParser(nil).ParseString(context.Background(), luaCode)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	checks := []struct {
		name string
		got  string
		want string
	}{
		{"base_url", cfg.Repository.BaseURL, "https://mirror.example.com/packages"},
		{"listing_url", cfg.Repository.ListingURL, "https://mirror.example.com/index"},
		{"archive_suffix", cfg.Repository.ArchiveSuffix, "zip"},
		{"interpreter", cfg.Install.Interpreter, "python3.12"},
		{"script_name", cfg.Install.ScriptName, "Setupfile"},
		{"unpacker", cfg.Install.Unpacker, "builtin"},
		{"temp_dir", cfg.Install.TempDir, "/var/tmp"},
		{"user_agent", cfg.HTTP.UserAgent, "WPK/1.0 mirror"},
		{"level", cfg.Log.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
	if !cfg.Install.AssumeYes {
		t.Error("assume_yes = false, want true")
	}
}

func TestParser_ParseString_PlatformTable(t *testing.T) {
	luaCode := `
		wpk = {
			install = {
				interpreter = platform.when(platform.is_windows, "python", "python3"),
			},
			http = { user_agent = "WPK/1.0 " .. platform.os .. "-" .. platform.arch },
		}
	`

	tests := []struct {
		name            string
		info            platform.Info
		wantInterpreter string
		wantAgent       string
	}{
		{
			name:            "linux",
			info:            platform.Info{OS: "linux", Arch: "amd64", Distro: "ubuntu"},
			wantInterpreter: "python3",
			wantAgent:       "WPK/1.0 linux-amd64",
		},
		{
			name:            "windows",
			info:            platform.Info{OS: "windows", Arch: "arm64"},
			wantInterpreter: "python",
			wantAgent:       "WPK/1.0 windows-arm64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.info
			parser := NewParser(&mockDetector{info: &info})
			cfg, err := parser.ParseString(context.Background(), luaCode)
			if err != nil {
				t.Fatalf("ParseString() error = %v", err)
			}
			if cfg.Install.Interpreter != tt.wantInterpreter {
				t.Errorf("Interpreter = %q, want %q", cfg.Install.Interpreter, tt.wantInterpreter)
			}
			if cfg.HTTP.UserAgent != tt.wantAgent {
				t.Errorf("UserAgent = %q, want %q", cfg.HTTP.UserAgent, tt.wantAgent)
			}
		})
	}
}

func TestParser_ParseString_DetectorError(t *testing.T) {
	detectErr := errors.New("no platform")
	parser := NewParser(&mockDetector{err: detectErr})

	_, err := parser.ParseString(context.Background(), `wpk = {}`)
	if !errors.Is(err, detectErr) {
		t.Fatalf("ParseString() error = %v, want wrapping %v", err, detectErr)
	}
}

func TestParser_ParseString_Errors(t *testing.T) {
	tests := []struct {
		name        string
		luaCode     string
		wantMessage string
	}{
		{
			name:        "syntax error",
			luaCode:     `wpk = {`,
			wantMessage: "Lua syntax error",
		},
		{
			name:        "missing wpk table",
			luaCode:     `other = {}`,
			wantMessage: "missing or invalid 'wpk' table",
		},
		{
			name:        "wpk is not a table",
			luaCode:     `wpk = "hello"`,
			wantMessage: "missing or invalid 'wpk' table",
		},
		{
			name:        "section is not a table",
			luaCode:     `wpk = { install = "yes" }`,
			wantMessage: "invalid value for 'install'",
		},
		{
			name:        "string field with number",
			luaCode:     `wpk = { install = { interpreter = 3 } }`,
			wantMessage: "invalid value for 'install.interpreter'",
		},
		{
			name:        "boolean field with string",
			luaCode:     `wpk = { install = { assume_yes = "yes" } }`,
			wantMessage: "invalid value for 'install.assume_yes'",
		},
		{
			name:        "invalid unpacker",
			luaCode:     `wpk = { install = { unpacker = "7z" } }`,
			wantMessage: "config validation failed",
		},
		{
			name:        "non-http base url",
			luaCode:     `wpk = { repository = { base_url = "file:///srv/packages" } }`,
			wantMessage: "config validation failed",
		},
		{
			name:        "sandboxed os library",
			luaCode:     `os.execute("true") wpk = {}`,
			wantMessage: "Lua syntax error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil).ParseString(context.Background(), tt.luaCode)
			if err == nil {
				t.Fatal("ParseString() error = nil, want error")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if parseErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", parseErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestParser_PlatformTableReadOnly(t *testing.T) {
	parser := NewParser(&mockDetector{info: &platform.Info{OS: "linux", Arch: "amd64"}})
	_, err := parser.ParseString(context.Background(), `platform.os = "windows" wpk = {}`)
	if err == nil {
		t.Fatal("ParseString() error = nil, want read-only error")
	}
	if !strings.Contains(err.Error(), "read-only") {
		t.Errorf("error = %v, want read-only message", err)
	}
}

func TestFormatError(t *testing.T) {
	err := &ParseError{
		Message: "Lua syntax error",
		Detail:  "<string>:1: unexpected EOF\nstack traceback:\n\t[G]: ?",
	}

	short := FormatError(err, false)
	if strings.Contains(short, "stack traceback") {
		t.Errorf("FormatError(verbose=false) = %q, should drop traceback", short)
	}
	if !strings.HasPrefix(short, "Lua syntax error: ") {
		t.Errorf("FormatError(verbose=false) = %q, want message prefix", short)
	}

	long := FormatError(err, true)
	if !strings.Contains(long, "Details:") || !strings.Contains(long, "stack traceback") {
		t.Errorf("FormatError(verbose=true) = %q, want full detail", long)
	}

	plain := errors.New("boom")
	if got := FormatError(plain, false); got != "boom" {
		t.Errorf("FormatError(plain) = %q, want %q", got, "boom")
	}
}
