package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/zer0users/wpk/internal/platform"
)

// Parser evaluates wpk.lua files.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// ParseFile reads and evaluates the config at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return p.ParseString(ctx, string(code))
}

// ParseString evaluates Lua code and overlays the "wpk" table on Default().
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L)
}

// extractConfig reads the global "wpk" table.
func extractConfig(L *lua.LState) (*Config, error) {
	root := L.GetGlobal("wpk")
	if root.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: "missing or invalid 'wpk' table",
			Detail:  fmt.Sprintf("expected table, got %s", root.Type()),
		}
	}
	table := root.(*lua.LTable)
	cfg := Default()

	fields := []struct {
		section string
		key     string
		str     *string
		flag    *bool
	}{
		{section: "repository", key: "base_url", str: &cfg.Repository.BaseURL},
		{section: "repository", key: "listing_url", str: &cfg.Repository.ListingURL},
		{section: "repository", key: "archive_suffix", str: &cfg.Repository.ArchiveSuffix},
		{section: "install", key: "interpreter", str: &cfg.Install.Interpreter},
		{section: "install", key: "script_name", str: &cfg.Install.ScriptName},
		{section: "install", key: "unpacker", str: &cfg.Install.Unpacker},
		{section: "install", key: "assume_yes", flag: &cfg.Install.AssumeYes},
		{section: "install", key: "temp_dir", str: &cfg.Install.TempDir},
		{section: "http", key: "user_agent", str: &cfg.HTTP.UserAgent},
		{section: "log", key: "level", str: &cfg.Log.Level},
	}

	for _, f := range fields {
		sectionVal := table.RawGetString(f.section)
		switch sectionVal.Type() {
		case lua.LTNil:
			continue
		case lua.LTTable:
		default:
			return nil, typeError(f.section, "table", sectionVal)
		}

		val := sectionVal.(*lua.LTable).RawGetString(f.key)
		name := f.section + "." + f.key
		switch {
		case val.Type() == lua.LTNil:
		case f.str != nil && val.Type() == lua.LTString:
			*f.str = val.String()
		case f.flag != nil && val.Type() == lua.LTBool:
			*f.flag = bool(val.(lua.LBool))
		case f.str != nil:
			return nil, typeError(name, "string", val)
		default:
			return nil, typeError(name, "boolean", val)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}

	return cfg, nil
}

func typeError(field, want string, got lua.LValue) error {
	return &ParseError{
		Message: fmt.Sprintf("invalid value for '%s'", field),
		Detail:  fmt.Sprintf("expected %s, got %s", want, got.Type()),
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	if parseErr, ok := err.(*ParseError); ok {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
