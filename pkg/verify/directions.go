package verify

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Directions returns a deterministic set of 3D query directions: the six
// axis directions, the eight diagonals (not normalized), and n points of a
// Fibonacci lattice on the unit sphere.
func Directions(n int) []v3.Vec {
	dirs := []v3.Vec{
		{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
	}
	for _, x := range []float64{1, -1} {
		for _, y := range []float64{1, -1} {
			for _, z := range []float64{1, -1} {
				dirs = append(dirs, v3.Vec{X: x, Y: y, Z: z})
			}
		}
	}

	golden := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		z := 1 - (2*float64(i)+1)/float64(n)
		r := math.Sqrt(1 - z*z)
		phi := golden * float64(i)
		dirs = append(dirs, v3.Vec{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z})
	}
	return dirs
}
