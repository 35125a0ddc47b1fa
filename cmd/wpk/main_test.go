package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/zer0users/wpk/internal/catalog"
	"github.com/zer0users/wpk/internal/testutil"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

// testEnv points wpk at a fake repository through a generated wpk.lua.
type testEnv struct {
	repo       *testutil.Repository
	configPath string
	tempDir    string
}

func newTestEnv(t *testing.T, extraInstall string) *testEnv {
	t.Helper()

	// Keep the user's real wpk.lua out of the way.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	repo := testutil.NewRepository(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(t.TempDir(), "wpk.lua")
	code := fmt.Sprintf(`
wpk = {
	repository = {
		base_url = %q,
		listing_url = %q,
	},
	install = {
		unpacker = "builtin",
		temp_dir = %q,
		%s
	},
}
`, repo.BaseURL(), repo.ListingURL(), tempDir, extraInstall)
	if err := os.WriteFile(configPath, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}

	return &testEnv{repo: repo, configPath: configPath, tempDir: tempDir}
}

func (e *testEnv) run(stdin string, args ...string) cliResult {
	args = append(args, "--config", e.configPath)
	return runCLI(stdin, args...)
}

func runCLI(stdin string, args ...string) cliResult {
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

const mixedListing = `[
	{"name": "terminal.wpk", "type": "file"},
	{"name": "README.md", "type": "file"},
	{"name": "water.wpk", "type": "file"},
	{"name": "editor.wpk", "type": "file"}
]`

func TestRun_List(t *testing.T) {
	env := newTestEnv(t, "")
	env.repo.SetListing(http.StatusOK, mixedListing)

	res := env.run("", "list")
	if res.code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", res.code, res.stderr)
	}

	want := "terminal\nwater\neditor\nTotal: 3 packages\n"
	if res.stdout != want {
		t.Errorf("stdout = %q, want %q", res.stdout, want)
	}

	for _, ua := range env.repo.UserAgents() {
		if !strings.HasPrefix(ua, "WPK/1.0 (") {
			t.Errorf("User-Agent = %q, want WPK/1.0 with platform comment", ua)
		}
	}
}

func TestRun_ListFormats(t *testing.T) {
	env := newTestEnv(t, "")
	env.repo.SetListing(http.StatusOK, mixedListing)

	tests := []struct {
		format    string
		unmarshal func([]byte, any) error
	}{
		{"json", json.Unmarshal},
		{"yaml", yaml.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			res := env.run("", "list", "--format", tt.format)
			if res.code != 0 {
				t.Fatalf("exit code = %d, stderr = %s", res.code, res.stderr)
			}

			var entries []catalog.Entry
			if err := tt.unmarshal([]byte(res.stdout), &entries); err != nil {
				t.Fatalf("unmarshal %s: %v\n%s", tt.format, err, res.stdout)
			}
			if len(entries) != 3 || entries[1].Name != "water" {
				t.Errorf("entries = %+v, want terminal, water, editor", entries)
			}
		})
	}
}

func TestRun_ListFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "oops"},
		{"malformed body", http.StatusOK, `[{"name": "water.wpk"`},
		{"not an array", http.StatusOK, `{"message": "rate limited"}`},
		{"null body", http.StatusOK, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")
			env.repo.SetListing(tt.status, tt.body)

			res := env.run("", "list")
			if res.code != 1 {
				t.Errorf("exit code = %d, want 1", res.code)
			}
			if !strings.HasPrefix(res.stderr, "Error: ") {
				t.Errorf("stderr = %q, want Error: prefix", res.stderr)
			}
		})
	}
}

func TestRun_Search(t *testing.T) {
	env := newTestEnv(t, "")
	env.repo.SetListing(http.StatusOK, mixedListing)

	res := env.run("", "search", "wtr")
	if res.code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", res.code, res.stderr)
	}
	if res.stdout != "water\nFound: 1 packages\n" {
		t.Errorf("stdout = %q", res.stdout)
	}

	res = env.run("", "search")
	if res.code != 1 || !strings.Contains(res.stderr, "Search term required") {
		t.Errorf("search without term: code = %d, stderr = %q", res.code, res.stderr)
	}
}

func TestRun_Install(t *testing.T) {
	tests := []struct {
		name       string
		pkg        string
		stdin      string
		publish    bool
		wantCode   int
		wantStdout string
		wantStderr string
		wantGET    int
	}{
		{
			name:       "confirmed",
			pkg:        "water",
			stdin:      "Y\n",
			publish:    true,
			wantStdout: "Install done!\n",
			wantGET:    1,
		},
		{
			name:       "declined",
			pkg:        "water",
			stdin:      "n\n",
			publish:    true,
			wantStdout: "Installation cancelled.\n",
		},
		{
			name:       "missing package",
			pkg:        "water",
			stdin:      "Y\n",
			wantCode:   1,
			wantStderr: "Error: package 'water': package not found",
		},
		{
			name:       "invalid name",
			pkg:        "../water",
			stdin:      "Y\n",
			wantCode:   1,
			wantStderr: "invalid package name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")
			if tt.publish {
				env.repo.AddArchive("water.wpk", testutil.BuildZipOfSize(t, map[string]string{
					"bin/water": "water\n",
				}, 2048))
			}

			res := env.run(tt.stdin, "install", tt.pkg)
			if res.code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d\nstdout: %s\nstderr: %s", res.code, tt.wantCode, res.stdout, res.stderr)
			}
			if !strings.Contains(res.stdout, tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", res.stdout, tt.wantStdout)
			}
			if !strings.Contains(res.stderr, tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", res.stderr, tt.wantStderr)
			}
			if got := env.repo.Requests("GET", "/packages/water.wpk"); got != tt.wantGET {
				t.Errorf("GET requests = %d, want %d", got, tt.wantGET)
			}

			entries, err := os.ReadDir(env.tempDir)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Errorf("workspace left behind: %v", entries)
			}
		})
	}
}

func TestRun_InstallAssumeYes(t *testing.T) {
	env := newTestEnv(t, "")
	env.repo.AddArchive("water.wpk", testutil.BuildZip(t, map[string]string{"bin/water": "water\n"}))

	res := env.run("", "install", "--yes", "water")
	if res.code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", res.code, res.stderr)
	}
	if strings.Contains(res.stdout, "(Y/N)") {
		t.Errorf("stdout contains a prompt: %q", res.stdout)
	}
}

func TestRun_InstallRunsPackagefile(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	env := newTestEnv(t, `interpreter = "sh",`)
	env.repo.AddArchive("water.wpk", testutil.BuildZip(t, map[string]string{
		"water/Packagefile": "echo configured from $(basename \"$PWD\")\nexit 3\n",
	}))

	res := env.run("y\n", "install", "water")
	if res.code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "configured from water\n") {
		t.Errorf("stdout = %q, want script output", res.stdout)
	}
	if !strings.Contains(res.stdout, "Warning: Packagefile execution returned non-zero exit code\n") {
		t.Errorf("stdout = %q, want script warning", res.stdout)
	}
}

func TestRun_Commands(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "no arguments", args: nil, wantCode: 1, wantStdout: "Usage:"},
		{name: "help", args: []string{"help"}, wantCode: 0, wantStdout: "Usage:"},
		{name: "short help", args: []string{"-h"}, wantCode: 0, wantStdout: "Usage:"},
		{name: "long help", args: []string{"--help"}, wantCode: 0, wantStdout: "Usage:"},
		{name: "version", args: []string{"--version"}, wantCode: 0, wantStdout: "WPK " + Version},
		{
			name:       "unknown command",
			args:       []string{"frobnicate"},
			wantCode:   1,
			wantStderr: "Error: Unknown command 'frobnicate'",
		},
		{
			name:       "install without name",
			args:       []string{"install"},
			wantCode:   1,
			wantStderr: "Error: Package name required",
		},
		{
			name:       "install with two names",
			args:       []string{"install", "water", "terminal"},
			wantCode:   1,
			wantStderr: "exactly one package name",
		},
		{name: "install help", args: []string{"install", "--help"}, wantCode: 0, wantStdout: "Usage: wpk install"},
		{name: "list help", args: []string{"list", "-h"}, wantCode: 0, wantStdout: "Usage: wpk list"},
		{name: "search help", args: []string{"search", "--help"}, wantCode: 0, wantStdout: "Usage: wpk search"},
		{
			name:       "list with bad format",
			args:       []string{"list", "--format", "xml"},
			wantCode:   1,
			wantStderr: "unknown format",
		},
		{
			name:       "list rejects yes",
			args:       []string{"list", "--yes"},
			wantCode:   1,
			wantStderr: "unknown flag: --yes",
		},
		{
			name:       "missing explicit config",
			args:       []string{"list", "--config", "/nonexistent/wpk.lua"},
			wantCode:   1,
			wantStderr: "Error: load /nonexistent/wpk.lua",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI("", tt.args...)
			if res.code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr %q)", res.code, tt.wantCode, res.stderr)
			}
			if !strings.Contains(res.stdout, tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", res.stdout, tt.wantStdout)
			}
			if !strings.Contains(res.stderr, tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", res.stderr, tt.wantStderr)
			}
		})
	}
}

func TestRun_BrokenConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "wpk.lua")
	if err := os.WriteFile(path, []byte(`wpk = { install = { unpacker = "7z" } }`), 0o644); err != nil {
		t.Fatal(err)
	}

	res := runCLI("", "list", "--config", path)
	if res.code != 1 {
		t.Errorf("exit code = %d, want 1", res.code)
	}
	if !strings.Contains(res.stderr, "Error: load config: config validation failed") {
		t.Errorf("stderr = %q", res.stderr)
	}
}
