package asset

import (
	"errors"
	"fmt"
)

// Status is the lifecycle position of a cache entry. It only ever moves Pending -> Ready or Pending -> Failed.
type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// State is the tagged result of a load. Graph is set only when Ready, Err only when Failed.
type State struct {
	Status Status
	Graph  *SceneGraph
	Err    error
}

// Pending returns the state of an unresolved load.
func Pending() State { return State{Status: StatusPending} }

// Ready returns a resolved state carrying g.
func Ready(g *SceneGraph) State { return State{Status: StatusReady, Graph: g} }

// Failed returns a terminal error state.
func Failed(err error) State { return State{Status: StatusFailed, Err: err} }

// Settled reports whether the load has finished, successfully or not.
func (s State) Settled() bool { return s.Status != StatusPending }

// Load operations recorded in LoadError.Op.
const (
	OpFetch  = "fetch"
	OpUnpack = "unpack"
	OpParse  = "parse"
)

// LoadError describes why an asset could not be acquired. It is carried inside a Failed state
// rather than returned, so callers render a fallback instead of aborting.
type LoadError struct {
	URL string
	Op  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("asset %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

var errUnsettled = errors.New("loader returned a pending state")

// IsLoadError reports whether err is, or wraps, a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
