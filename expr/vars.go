package expr

import (
	"fmt"
	"math"
)

// Vars fixes the mapping from variable names to positional parameter slots
// of the compiled function. The order of names is significant: it is the
// order in which arguments must be supplied at call time. Read-only after
// construction
type Vars struct {
	names []string
	slots map[string]byte
}

// NewVars panics on duplicate or empty names: the binding is always supplied
// by trusted code, a bad list is an invariant violation, not a runtime
// condition
func NewVars(names ...string) *Vars {
	if len(names) > math.MaxUint8+1 {
		panic(fmt.Sprintf("NewVars: can't be more than 256 variables (%d)", len(names)))
	}
	ret := &Vars{
		names: make([]string, len(names)),
		slots: make(map[string]byte, len(names)),
	}
	for i, name := range names {
		if len(name) == 0 {
			panic(fmt.Sprintf("NewVars: empty name @ slot %d", i))
		}
		if _, already := ret.slots[name]; already {
			panic(fmt.Sprintf("NewVars: repeating name '%s'", name))
		}
		ret.names[i] = name
		ret.slots[name] = byte(i)
	}
	return ret
}

// SlotOf resolves a name to its parameter slot. Unknown name is the one
// expected failure of code generation and is returned as an error
func (v *Vars) SlotOf(name string) (byte, error) {
	slot, found := v.slots[name]
	if !found {
		return 0, fmt.Errorf("can't resolve variable '%s'", name)
	}
	return slot, nil
}

func (v *Vars) NumVars() int {
	return len(v.names)
}

// Names returns a copy of the ordered name list
func (v *Vars) Names() []string {
	ret := make([]string, len(v.names))
	copy(ret, v.names)
	return ret
}
