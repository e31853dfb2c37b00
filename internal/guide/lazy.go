package guide

// Trigger is the load the coordinator asks for.
type Trigger int

const (
	TriggerNone Trigger = iota
	TriggerBatch
	TriggerExtend
)

func (t Trigger) String() string {
	switch t {
	case TriggerBatch:
		return "batch"
	case TriggerExtend:
		return "extend"
	default:
		return "none"
	}
}

// Viewport is the visible part of the grid, in rows and pixels.
type Viewport struct {
	Top    int
	Left   int
	Height int
	Width  int
}

// Bottom is the exclusive last visible row.
func (v Viewport) Bottom() int { return v.Top + v.Height }

// Right is the exclusive last visible pixel.
func (v Viewport) Right() int { return v.Left + v.Width }

// Coordinator decides when scrolling should grow the grid.
type Coordinator struct {
	VerticalThreshold   int
	HorizontalThreshold int
}

// LoadState is what the coordinator needs to know about in-flight work.
type LoadState struct {
	Loading   bool
	More      bool
	CanExtend bool
}

// Check returns the load to start for viewport v over a grid of totalHeight
// rows and totalWidth pixels. Both axes share one loading flag, so nothing is
// returned while a load runs. Vertical loads win when both qualify.
func (c Coordinator) Check(v Viewport, totalHeight, totalWidth int, ls LoadState) Trigger {
	if ls.Loading {
		return TriggerNone
	}
	if ls.More && v.Bottom() >= totalHeight-c.VerticalThreshold {
		return TriggerBatch
	}
	if ls.CanExtend && v.Right() >= totalWidth-c.HorizontalThreshold {
		return TriggerExtend
	}
	return TriggerNone
}
