package compressed

import (
	"testing"

	"github.com/adder-go/adder"
)

// TestBuildADURoutesEventsIntoCubesAndBlocks checks that events from two
// different cubes land in separate Cubes, that repeated events at the
// same slot grow a new temporal block rather than overwriting, and that
// channel routing keeps R/G/B separate.
func TestBuildADURoutesEventsIntoCubesAndBlocks(t *testing.T) {
	chR := uint8(0)
	chG := uint8(1)
	events := []adder.Event{
		{Coord: adder.Coord{X: 0, Y: 0, C: &chR}, D: 5, T: 10},
		{Coord: adder.Coord{X: 0, Y: 0, C: &chR}, D: 6, T: 20},
		{Coord: adder.Coord{X: 0, Y: 0, C: &chG}, D: 7, T: 10},
		{Coord: adder.Coord{X: BlockSize, Y: 0, C: &chR}, D: 9, T: 10},
	}

	a := BuildADU(events, 0)
	if a.HeadTick != 0 {
		t.Fatalf("HeadTick = %d, want 0", a.HeadTick)
	}
	if len(a.Cubes) != 2 {
		t.Fatalf("len(Cubes) = %d, want 2 (one per 16x16 region touched)", len(a.Cubes))
	}

	var origin, next *Cube
	for _, c := range a.Cubes {
		if c.CubeX == 0 {
			origin = c
		} else {
			next = c
		}
	}
	if origin == nil || next == nil {
		t.Fatalf("expected cubes at CubeX=0 and CubeX=1, got %+v", a.Cubes)
	}

	if len(origin.BlocksR) != 2 {
		t.Fatalf("origin.BlocksR has %d blocks, want 2 (repeated slot 0 grows a new temporal block)", len(origin.BlocksR))
	}
	if origin.BlocksR[0].Events[0] == nil || origin.BlocksR[0].Events[0].D != 5 {
		t.Fatalf("origin.BlocksR[0].Events[0] = %+v, want D=5", origin.BlocksR[0].Events[0])
	}
	if origin.BlocksR[1].Events[0] == nil || origin.BlocksR[1].Events[0].D != 6 {
		t.Fatalf("origin.BlocksR[1].Events[0] = %+v, want D=6", origin.BlocksR[1].Events[0])
	}
	if len(origin.BlocksG) != 1 || origin.BlocksG[0].Events[0] == nil || origin.BlocksG[0].Events[0].D != 7 {
		t.Fatalf("origin.BlocksG = %+v, want one block with D=7", origin.BlocksG)
	}
	if len(next.BlocksR) != 1 || next.BlocksR[0].Events[0] == nil || next.BlocksR[0].Events[0].D != 9 {
		t.Fatalf("next.BlocksR = %+v, want one block with D=9 at slot 0", next.BlocksR)
	}
}
