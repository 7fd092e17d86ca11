// Package helix implements closed-form transport of track states along a
// helix in a uniform field parallel to z.
//
// Every surface kind provides a chart between its track vector and the
// global helix state (x, y, z, ψ, tanλ, q/pT) together with the partial
// derivatives of both directions, and a constraint F(g) = 0 locating the
// surface. A propagation maps the origin vector to the global state, solves
// the destination constraint for the transverse arc length in closed form,
// transports the state and maps it back. The Jacobian is assembled by the
// chain rule with the implicit-function term for the path length:
//
//	J = ∂p₂/∂g₂ · (T − (∂g₂/∂s)(∇F·T)/(∇F·∂g₂/∂s)) · ∂g₁/∂p₁
//
// The tilted closest-approach surface has no closed-form crossing. It is
// seeded with the untilted solution and finished with rootfind.
//
// Dependency rule: helix depends on trf, trf/rootfind, units and gonum.
// It does not know about the dispatch registry.
package helix
