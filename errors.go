package rich

import "github.com/pkg/errors"

var (
	// ErrHeaderNotFound reports that the input carries no Rich header:
	// either the "Rich" magic never occurs before the PE header, or no
	// offset in the scanned range decodes to "DanS". Plenty of valid PE
	// files trip this, so callers should treat it as a negative answer
	// rather than a parse failure.
	ErrHeaderNotFound = errors.New("rich header does not exist")

	// ErrTruncatedInput reports that the header geometry promises bytes
	// the input does not have.
	ErrTruncatedInput = errors.New("input truncated inside rich header region")
)
