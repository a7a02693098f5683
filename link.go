package mdk

import "github.com/pkg/errors"

// LinkOutcome is the terminal state of one child-link attempt.
type LinkOutcome int

const (
	// Linked means both the child and the updated parent were written.
	Linked LinkOutcome = iota
	// ParentNotFound means no document matched the parent reference;
	// nothing was written.
	ParentNotFound
	// ParentAmbiguous means more than one document matched the parent
	// reference; nothing was written.
	ParentAmbiguous
)

func (o LinkOutcome) String() string {
	switch o {
	case Linked:
		return "Linked"
	case ParentNotFound:
		return "ParentNotFound"
	case ParentAmbiguous:
		return "ParentAmbiguous"
	default:
		return "unknown"
	}
}

// ReadFunc fetches the documents currently stored under an id.
type ReadFunc func(id string) ([]Document, error)

// WriteFunc stores one document.
type WriteFunc func(doc Document) error

// storeOnlyFields are query-time and store-internal fields that come back
// on a fetched document but must not be written back: version tokens, the
// full-text mirror, and the precomputed bounding box components.
var storeOnlyFields = []string{
	"_version_",
	"full_text",
	"bbox__maxX",
	"bbox__maxY",
	"bbox__minX",
	"bbox__minY",
	"bbox_rpt",
	"ss_access",
}

// Linker maintains the parent/child hierarchy in the store. For a
// child-level document it resolves the declared parent, merges the child's
// id into the parent's child-reference list, and writes both documents
// back.
//
// The read-modify-write is two separate store operations with no
// concurrency token: two ingesters adding different children of the same
// parent at the same time can lose one of the appends. That race is a
// known property of the store interface, accepted here rather than hidden.
type Linker struct {
	Log Logger
}

// LinkChild resolves child's parent through read, merges the child id into
// the parent's child-reference list, and writes the child and then the
// updated parent through write.
//
// The merge is idempotent: a child id already on the list is not appended
// again, so re-ingesting the same child any number of times leaves exactly
// one entry. ParentNotFound and ParentAmbiguous are returned with a nil
// error - they are skip-this-record conditions, not batch failures. Store
// errors are returned as errors and nothing further is written.
func (l *Linker) LinkChild(child Document, read ReadFunc, write WriteFunc) (LinkOutcome, error) {
	lg := l.Log
	if lg == nil {
		lg = NopLogger{}
	}

	parentID := SanitizeID(child.String("related_dataset"))
	if parentID == "" {
		lg.Printf("child %s has no parent reference", child.ID())
		return ParentNotFound, nil
	}

	matches, err := read(parentID)
	if err != nil {
		return ParentNotFound, errors.Wrapf(err, "fetching parent %s", parentID)
	}
	switch {
	case len(matches) == 0:
		lg.Printf("no parent %s found for %s, skipping record", parentID, child.ID())
		return ParentNotFound, nil
	case len(matches) > 1:
		lg.Printf("parent %s is not unique (%d matches), skipping record", parentID, len(matches))
		return ParentAmbiguous, nil
	}

	parent := matches[0].Clone()
	for _, f := range storeOnlyFields {
		parent.Delete(f)
	}
	parent.Set("isParent", "true")

	childID := SanitizeID(child.String("metadata_identifier"))
	refs := parent.Strings("related_dataset")
	if !contains(refs, childID) {
		lg.Printf("adding dataset %s to parent %s", childID, parentID)
		parent.Set("related_dataset", append(refs, childID))
	}

	child.Set("isChild", "true")

	if err := write(child); err != nil {
		return Linked, errors.Wrapf(err, "writing child %s", child.ID())
	}
	if err := write(parent); err != nil {
		return Linked, errors.Wrapf(err, "writing parent %s", parentID)
	}
	return Linked, nil
}
