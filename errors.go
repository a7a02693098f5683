package mdk

import "github.com/pkg/errors"

// ErrMissingSpatialBounds marks a record whose single geographic rectangle
// lacks one of its four bounds. It is fatal for that record only: the
// record's status is forced to Inactive and it is excluded from indexing,
// while the rest of the batch keeps going.
var ErrMissingSpatialBounds = errors.New("missing spatial bounds")

// IsMissingSpatialBounds reports whether err (possibly wrapped) is the
// missing-bounds condition.
func IsMissingSpatialBounds(err error) bool {
	return errors.Cause(err) == ErrMissingSpatialBounds
}
