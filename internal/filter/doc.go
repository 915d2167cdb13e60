// Package filter implements the post-processing effects applied to whole
// frames: separable Gaussian blur, bloom, pixellate, drop shadow,
// posterize, colour matrices, outline, punch, trails and additive
// composition.
//
// Effects are created by name through New, which fills unspecified
// parameters with their defaults and rejects out-of-range values, so a
// misconfigured effect fails when it is configured rather than when a
// frame is drawn.
package filter
