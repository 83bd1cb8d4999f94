package process

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/koineramitranjan/threads/pkg/ports"
)

// BuildExecArgv computes the execution flags for a spawn.
//
// An explicit argv fully replaces the inherited flags verbatim, with no
// merging or inspector rewriting. Otherwise inherited flags pass through unchanged
// except inspector flags, which are rewritten so each spawned process gets
// its own debug port.
func BuildExecArgv(explicit, inherited []string, alloc ports.PortAllocator) []string {
	if explicit != nil {
		return slices.Clone(explicit)
	}
	out := make([]string, len(inherited))
	for i, flag := range inherited {
		out[i] = rewriteInspectFlag(flag, alloc)
	}
	return out
}

// rewriteInspectFlag maps --inspect / --inspect-brk flags to a free port:
// an explicit port P becomes P+1 without touching the allocator, a portless
// flag takes the allocator's next port. A flag value that does not parse as
// a port is passed through unmodified.
func rewriteInspectFlag(flag string, alloc ports.PortAllocator) string {
	name, value, hasValue := strings.Cut(flag, "=")
	if name != "--inspect" && name != "--inspect-brk" {
		return flag
	}
	if !hasValue {
		return fmt.Sprintf("%s=%d", name, alloc.Next())
	}
	port, err := strconv.Atoi(value)
	if err != nil {
		return flag
	}
	return fmt.Sprintf("%s=%d", name, port+1)
}
