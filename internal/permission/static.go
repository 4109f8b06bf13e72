package permission

import "context"

type staticGate struct {
	granted bool
}

// NewStaticGate returns a gate whose answer is fixed by configuration.
// Used in development and CI where no platform prompt exists.
func NewStaticGate(granted bool) Gate {
	return &staticGate{granted: granted}
}

func (g *staticGate) Request(_ context.Context) bool {
	return g.granted
}

func (g *staticGate) Query(_ context.Context) bool {
	return g.granted
}
