package thread

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrDuplicateId       = errors.New("duplicate comment id")
	ErrDanglingReference = errors.New("dangling parent reference")
	ErrCycle             = errors.New("comment parent cycle")
)

// DuplicateIdError is returned when the same comment id appears more than once
// in one build.
type DuplicateIdError struct {
	CommentId uuid.UUID
}

func (e *DuplicateIdError) Error() string {
	return fmt.Sprintf("duplicate comment id %s", e.CommentId)
}

func (e *DuplicateIdError) Is(target error) bool {
	return target == ErrDuplicateId
}

// DanglingReferenceError is returned when a reply names a parent that is not
// part of the collection.
type DanglingReferenceError struct {
	CommentId uuid.UUID
	ParentId  uuid.UUID
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("comment %s references unknown parent %s", e.CommentId, e.ParentId)
}

func (e *DanglingReferenceError) Is(target error) bool {
	return target == ErrDanglingReference
}

// CycleError is returned when parent references loop back on themselves, so
// the listed comments can never be reached from a top-level comment.
type CycleError struct {
	CommentIds []uuid.UUID
}

func (e *CycleError) Error() string {
	ids := make([]string, 0, len(e.CommentIds))
	for _, id := range e.CommentIds {
		ids = append(ids, id.String())
	}

	return fmt.Sprintf("comments unreachable from any root: %s", strings.Join(ids, ", "))
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}
