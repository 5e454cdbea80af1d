// Package uqstat estimates statistics of uncertain model outputs and exposes
// them as differentiable functions for a deterministic optimizer.
//
// Given a model f(x, u) of design variables x and random variables u, uqstat
// rewrites "optimize a statistic of f under uncertainty" into an equivalent
// deterministic problem: each registered quantity (objective, constraint,
// observable) becomes a Function whose Value and Jacobian are statistic
// estimates at the current design point.
//
// Estimation techniques are pluggable Formulations: crude Monte Carlo
// (Sampling), streaming Monte Carlo that grows the sample count across
// optimizer iterations (Sequential), local expansion around the mean of the
// uncertain variables (TaylorPolynomial), variance reduction against a cheap
// linearization (ControlVariate), polynomial chaos regression (PCE), and
// regression through an arbitrary surrogate (Surrogate). All Formulations
// share one evaluation of the underlying model per design point through a
// single-point memoization cache.
//
// The mlmc subpackage contains the Multilevel Monte Carlo engine, which
// allocates a fixed computational budget across a hierarchy of model
// fidelities, optionally with per-level control variates (MLMC-MLCV).
package uqstat
