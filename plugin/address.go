package plugin

import "fmt"

// Address identifies a parameter. The numbering is stable so hosts can
// store automation against it.
type Address uint64

const (
	Depth Address = iota
	Rate
	Delay
	Feedback
	DryMix
	WetMix
	NegativeFeedback
	Odd90

	numParameters = int(Odd90) + 1
)

// String returns the parameter identifier.
func (a Address) String() string {
	if int(a) < numParameters {
		return definitions[a].Identifier
	}
	return fmt.Sprintf("Address(%d)", uint64(a))
}

// ParseAddress maps an identifier such as "depth" or "-feedback" back to
// its address.
func ParseAddress(identifier string) (Address, error) {
	for _, def := range definitions {
		if def.Identifier == identifier {
			return def.Address, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, identifier)
}
