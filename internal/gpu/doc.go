// Package gpu holds the wgpu/hal rendering layer of the plotting
// engine: one render pipeline per primitive kind, per-frame vertex and
// uniform resources, the glyph atlas texture, and the render session
// that encodes a whole frame into a single render pass.
//
// The package is deliberately dumb about plotting semantics. It
// receives fully transformed clip-space geometry as DrawCommands and
// turns them into exactly one draw call each; everything about
// subplots, layouts, and selections is resolved by the packages above
// it before the data reaches the GPU.
package gpu
