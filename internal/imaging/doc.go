// Package imaging implements the photo editing engine used by the ID card editor.
//
// The engine turns a decoded source photo plus a set of edit parameters into a
// freshly allocated output raster. It is a pure function of its inputs: there is
// no shared drawing surface, every render call allocates, fills and hands back
// its own buffers.
//
// # Pipeline
//
// Rendering runs a fixed sequence of stages:
//
//  1. Geometric: the source is rotated about its center, scaled by the zoom
//     factor and clipped to the crop rectangle (see PlanCrop).
//  2. Tone: brightness and contrast are applied to each sample produced by
//     the geometric stage.
//  3. Sharpen: a 3x3 Laplacian kernel blended with the tone output, written
//     into a new buffer. Skipped entirely when the amount is zero.
//  4. Vignette: a radial black overlay composited over the previous stage.
//     Skipped entirely when the amount is zero.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X increasing
// rightward and Y increasing downward. Crop regions are expressed as fractions
// of the displayed image size; rotation is in degrees, clockwise on screen.
//
// # Buffers
//
// A Buffer stores non-premultiplied RGBA samples in row-major order. A Buffer
// is owned by whoever holds it; the renderer never writes to the source
// buffer and never returns a buffer it retains.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Renderer values are
// immutable after construction and Render may be called concurrently with
// different inputs.
//
// # Error Handling
//
// Render failures wrap one of ErrInvalidRegion, ErrRenderTargetUnavailable,
// ErrUnsupportedBufferSize or ErrInvalidParams; use errors.Is to tell them apart.
package imaging
