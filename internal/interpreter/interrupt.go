package interpreter

import "github.com/specialistvlad/wdlgo/internal/value"

type interruptKind int

const (
	interruptNone interruptKind = iota
	interruptBreak
	interruptContinue
	interruptReturn
)

func (k interruptKind) String() string {
	switch k {
	case interruptBreak:
		return "break"
	case interruptContinue:
		return "continue"
	case interruptReturn:
		return "return"
	default:
		return "none"
	}
}

// interrupt is the control signal a statement completes with. value is set
// for interruptReturn only.
type interrupt struct {
	kind  interruptKind
	value value.Value
}

var proceed = interrupt{kind: interruptNone}
