package compressed

import "github.com/adder-go/adder"

// BuildADU groups a batch of events into cubes by spatial location,
// routing each event through its pixel's cube coordinate and in-cube
// block slot, grounded on the source's Frame::add_event/
// event_coord_to_block_idx routing. Cubes appear in the ADU in the
// order their first event was seen.
func BuildADU(events []adder.Event, headTick uint32) *ADU {
	type cubeKey struct{ y, x int }
	cubes := make(map[cubeKey]*Cube)
	var order []cubeKey

	a := &ADU{HeadTick: headTick}
	for _, e := range events {
		cubeY, cubeX := PixelToCubeCoord(e.Coord.X, e.Coord.Y)
		key := cubeKey{cubeY, cubeX}
		c, ok := cubes[key]
		if !ok {
			c = NewCube(cubeY, cubeX)
			cubes[key] = c
			order = append(order, key)
		}
		c.SetEvent(e, PixelToBlockIdx(e.Coord.X, e.Coord.Y))
	}
	for _, key := range order {
		a.Cubes = append(a.Cubes, cubes[key])
	}
	return a
}
