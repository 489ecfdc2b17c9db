package surface

import "fmt"

// EventKind is the phase of a pointer gesture.
type EventKind int

const (
	Down EventKind = iota
	Move
	Up
)

func (k EventKind) String() string {
	switch k {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Button is the pointer button involved in an event.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

// TargetKind classifies what lies under the pointer on press.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetPalette
	TargetBlock
	TargetCanvas
)

func (k TargetKind) String() string {
	switch k {
	case TargetPalette:
		return "palette"
	case TargetBlock:
		return "block"
	case TargetCanvas:
		return "canvas"
	}
	return "none"
}

// Target is the node a press landed on. BlockID is set for block targets;
// Ref names the palette item for palette targets.
type Target struct {
	Kind    TargetKind `json:"kind"`
	Ref     NodeRef    `json:"ref,omitempty"`
	BlockID int        `json:"blockId"`
}

// Event is a normalized pointer event in screen coordinates.
type Event struct {
	Kind   EventKind `json:"kind"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Button Button    `json:"button"`
	Target Target    `json:"target"`
}
