// Package supportmap defines the support-mapping contract for convex shapes.
//
// A support mapping answers one question for a shape placed under a pose:
// which point of the shape extends furthest along a given direction. The
// answer is always expressed in world space, after the pose is applied.
// Distance, penetration and contact algorithms are written against this
// contract and treat every convex shape as a black-box oracle.
//
// Shapes implement SupportMap. They may additionally implement
// TowardSupporter and AreaSupporter to refine the two derived operations;
// callers reach those operations through the SupportPointToward and
// SupportAreaToward functions, which fall back to the defaults when a
// shape does not refine them.
//
// The contract is partial by design. Query directions must be non-zero and
// shapes must be convex; neither is checked and neither is reported as an
// error. All operations are pure, so a shape whose geometry is immutable may
// be queried from any number of goroutines at once.
package supportmap
