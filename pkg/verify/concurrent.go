package verify

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/chazu/supportmap/pkg/supportmap"
	"golang.org/x/sync/errgroup"
)

// Fingerprint hashes the exact float bits of the support points of every
// direction, in order. Two runs that return bitwise identical points have
// equal fingerprints.
func Fingerprint[V Point[V], M any](s supportmap.SupportMap[V, M], m M, dirs []V) uint64 {
	h := xxhash.New()
	for _, d := range dirs {
		// %b prints every float component as mantissa and binary exponent.
		fmt.Fprintf(h, "%b;", s.SupportPoint(m, d))
	}
	return h.Sum64()
}

// Concurrent queries s from workers goroutines at once and checks that
// every goroutine observes the fingerprint of a sequential run.
func Concurrent[V Point[V], M any](ctx context.Context, s supportmap.SupportMap[V, M], m M, dirs []V, workers int) []Violation {
	want := Fingerprint(s, m, dirs)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if got := Fingerprint(s, m, dirs); got != want {
				return fmt.Errorf("worker %d fingerprint %016x, sequential run %016x", w, got, want)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return []Violation{{Check: CheckConcurrent, Index: -1, Message: err.Error()}}
	}
	return nil
}
