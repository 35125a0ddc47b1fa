package main

import (
	"fmt"
	"strings"
)

// Flags a command accepts.
const (
	flagConfig = 1 << iota
	flagDebug
	flagYes
	flagFormat

	flagGlobal = flagConfig | flagDebug
)

// options holds parsed command-line arguments.
type options struct {
	configPath string
	debug      bool
	yes        bool
	format     string
	help       bool
	positional []string
}

// parseArgs parses args for a command that accepts the flags in allowed.
// Both "--flag value" and "--flag=value" are understood; "--" ends flags.
func parseArgs(args []string, allowed int) (*options, error) {
	opts := &options{format: "text"}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			opts.positional = append(opts.positional, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			opts.positional = append(opts.positional, arg)
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")
		takeValue := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("flag %s requires a value", name)
			}
			i++
			return args[i], nil
		}

		var err error
		switch {
		case name == "--help" || name == "-h":
			opts.help = true
		case name == "--config" && allowed&flagConfig != 0:
			opts.configPath, err = takeValue()
		case name == "--debug" && allowed&flagDebug != 0:
			opts.debug = true
		case (name == "--yes" || name == "-y") && allowed&flagYes != 0:
			opts.yes = true
		case name == "--format" && allowed&flagFormat != 0:
			opts.format, err = takeValue()
		default:
			return nil, fmt.Errorf("unknown flag: %s", arg)
		}
		if err != nil {
			return nil, err
		}
	}

	if allowed&flagFormat != 0 {
		switch opts.format {
		case "text", "json", "yaml":
		default:
			return nil, fmt.Errorf("unknown format %q (want text, json or yaml)", opts.format)
		}
	}
	return opts, nil
}
