package archive

import (
	"fmt"

	"github.com/zer0users/wpk/internal/command"
)

// Unpacker kinds accepted by Select.
const (
	KindAuto    = "auto"
	KindUnzip   = "unzip"
	KindBuiltin = "builtin"
)

// Select returns the unpacker for kind. KindAuto prefers the unzip tool when
// it is on PATH and falls back to the builtin unpacker.
func Select(kind string, runner command.Runner) (Unpacker, error) {
	switch kind {
	case KindUnzip:
		return NewCommandUnpacker(runner, DefaultUnzipProgram), nil
	case KindBuiltin:
		return NewNativeUnpacker(), nil
	case KindAuto, "":
		if _, err := runner.LookPath(DefaultUnzipProgram); err == nil {
			return NewCommandUnpacker(runner, DefaultUnzipProgram), nil
		}
		return NewNativeUnpacker(), nil
	default:
		return nil, fmt.Errorf("unknown unpacker %q (want %s, %s or %s)", kind, KindAuto, KindUnzip, KindBuiltin)
	}
}
