package blocktree

import (
	"fmt"

	apperrors "github.com/matzehuels/stackflow/pkg/errors"
)

var (
	// ErrDuplicateID is returned when a block id is already present.
	ErrDuplicateID = apperrors.New(apperrors.ErrCodeDuplicateID, "duplicate block id")

	// ErrNotFound is returned when a block id does not exist.
	ErrNotFound = apperrors.New(apperrors.ErrCodeNotFound, "block not found")

	// ErrDanglingParent is returned when a block references a parent id
	// absent from the same block set.
	ErrDanglingParent = apperrors.New(apperrors.ErrCodeDanglingParent, "parent block does not exist")

	// ErrCyclicParent is returned when a parent chain never reaches a root.
	ErrCyclicParent = apperrors.New(apperrors.ErrCodeCyclicParent, "parent chain contains a cycle")

	// ErrInvalidID is returned for negative block ids.
	ErrInvalidID = apperrors.New(apperrors.ErrCodeInvalidInput, "block id must not be negative")
)

func blockErr(id int, err error) error {
	return fmt.Errorf("block %d: %w", id, err)
}
