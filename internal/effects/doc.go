// Package effects implements the per-frame image operations: edge detection,
// Gaussian blur, color adjustment, and text burn-in.
//
// Every effect is constructed from explicit parameter values, validated and
// frozen up front, so applying an effect can never fail mid-run. Constructors
// perform the documented corrections (even blur kernels are forced odd,
// edge thresholds are clamped to byte range) and reject everything else with
// a validation error. Given identical inputs, Apply produces byte-identical
// output.
package effects
