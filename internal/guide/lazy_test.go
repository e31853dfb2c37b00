package guide

import "testing"

func TestCoordinatorCheck(t *testing.T) {
	c := Coordinator{VerticalThreshold: 5, HorizontalThreshold: 20}
	tests := []struct {
		name string
		v    Viewport
		ls   LoadState
		want Trigger
	}{
		{"near bottom", Viewport{Top: 10, Height: 12, Width: 60}, LoadState{More: true, CanExtend: true}, TriggerBatch},
		{"near bottom but loading", Viewport{Top: 10, Height: 12, Width: 60}, LoadState{Loading: true, More: true, CanExtend: true}, TriggerNone},
		{"near bottom no more", Viewport{Top: 10, Height: 12, Width: 60}, LoadState{CanExtend: true}, TriggerNone},
		{"near right", Viewport{Top: 0, Height: 10, Left: 20, Width: 60}, LoadState{More: true, CanExtend: true}, TriggerExtend},
		{"near right but capped", Viewport{Top: 0, Height: 10, Left: 20, Width: 60}, LoadState{More: true}, TriggerNone},
		{"both prefer vertical", Viewport{Top: 20, Height: 10, Left: 40, Width: 60}, LoadState{More: true, CanExtend: true}, TriggerBatch},
		{"far from edges", Viewport{Top: 0, Height: 10, Width: 20}, LoadState{More: true, CanExtend: true}, TriggerNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Check(tt.v, 25, 90, tt.ls); got != tt.want {
				t.Fatalf("Check = %v, want %v", got, tt.want)
			}
		})
	}
}
