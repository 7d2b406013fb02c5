// Package autodiff drives graphs of differentiable nodes.
//
// The nodes themselves live in package ops. A Tape records them in
// topological order and runs whole epochs:
//   - Forward marks every node stale and evaluates them in order.
//   - Backward sets every overwrite flag, seeds the last backward node and
//     propagates in reverse order, so the first gradient written into a node
//     in an epoch assigns and later ones accumulate.
//
// Checks returns a suite of small graphs whose analytic gradients are
// compared with central differences; the backprop CLI runs it.
package autodiff
