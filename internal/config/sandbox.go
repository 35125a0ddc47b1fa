package config

import (
	lua "github.com/yuin/gopher-lua"
)

// blockedGlobals are removed before wpk.lua runs. A config file only
// describes settings; it may not run commands, read files or pull in
// other Lua code. string, table and math stay available.
var blockedGlobals = []string{
	"os", "io", "debug",
	"require", "module",
	"dofile", "loadfile", "load", "loadstring",
}

// newSandboxedVM creates the Lua VM that evaluates wpk.lua.
func newSandboxedVM() *lua.LState {
	L := lua.NewState()
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}
