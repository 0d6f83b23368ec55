package imaging

import "errors"

var (
	// ErrInvalidRegion reports a crop that is out of range or resolves to a
	// zero-area output. Callers should clamp or reject the gesture.
	ErrInvalidRegion = errors.New("invalid crop region")

	// ErrRenderTargetUnavailable reports that the output surface could not be
	// acquired. The render may be retried.
	ErrRenderTargetUnavailable = errors.New("render target unavailable")

	// ErrUnsupportedBufferSize reports an output larger than the renderer's
	// pixel ceiling. Reduce the output scale or the crop size.
	ErrUnsupportedBufferSize = errors.New("unsupported buffer size")

	// ErrInvalidParams reports edit parameters outside their domain.
	ErrInvalidParams = errors.New("invalid edit parameters")
)
