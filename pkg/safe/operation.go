package safe

import "fmt"

// Operation is the execution mode of a Safe transaction.
type Operation uint8

const (
	Call         Operation = 0
	DelegateCall Operation = 1
)

// Valid reports whether o is one of the two modes the Safe contract accepts.
func (o Operation) Valid() bool {
	return o == Call || o == DelegateCall
}

func (o Operation) String() string {
	switch o {
	case Call:
		return "call"
	case DelegateCall:
		return "delegatecall"
	}
	return fmt.Sprintf("operation(%d)", uint8(o))
}
