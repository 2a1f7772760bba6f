package models

import (
	"fmt"

	"github.com/ontoserver/collabclient/pkg/constants"
)

// DocumentRevision marks one point in a project's linear change history.
// Revisions are assigned by the remote authority only.
type DocumentRevision int64

// RevisionBase is the revision of a freshly created project.
const RevisionBase DocumentRevision = 0

// Next returns the revision n forward steps after r. n must not be negative.
func (r DocumentRevision) Next(n int) DocumentRevision {
	if n < 0 {
		panic(fmt.Sprintf("models: cannot step %d revisions back from %v", -n, r))
	}
	return r + DocumentRevision(n)
}

func (r DocumentRevision) String() string {
	return fmt.Sprintf("R%d", int64(r))
}

// Distance returns the number of forward steps that lead from start to head.
func Distance(start, head DocumentRevision) (int, error) {
	if head < start {
		return 0, fmt.Errorf("%w: %v < %v", constants.ErrRevisionOrder, head, start)
	}
	return int(head - start), nil
}
