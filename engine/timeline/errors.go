package timeline

import "errors"

var (
	ErrLastTrack         = errors.New("timeline must keep at least one track")
	ErrInvalidIndex      = errors.New("track or segment index out of range")
	ErrStageMismatch     = errors.New("operation not available at the current stage")
	ErrTypeMismatch      = errors.New("track type mismatch")
	ErrNotEditing        = errors.New("no segment edit in progress")
	ErrMalformedDocument = errors.New("malformed timeline document")
)
