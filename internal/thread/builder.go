// Package thread turns the flat comment list of a post into reply trees and
// answers lookups against them. Everything here is pure and safe for
// concurrent use.
package thread

import (
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/google/uuid"
)

type options struct {
	orphansAsRoots bool
}

// Option changes how Build treats malformed input.
type Option func(*options)

// WithOrphansAsRoots keeps replies whose parent is missing by promoting them
// to top-level nodes marked ParentDeleted, instead of failing the build.
func WithOrphansAsRoots() Option {
	return func(o *options) {
		o.orphansAsRoots = true
	}
}

// Build returns the top-level comments of records, each carrying its replies.
// Records may arrive in any order. Siblings keep the relative order they have
// in records, so a chronological input gives chronological replies.
// records is never modified.
func Build(records []model.Comment, opts ...Option) ([]*model.CommentNode, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	// every node lives in one backing slice; index maps an id to its slot
	arena := make([]model.CommentNode, len(records))
	index := make(map[uuid.UUID]int, len(records))

	for i := range records {
		if _, exists := index[records[i].Id]; exists {
			return nil, &DuplicateIdError{CommentId: records[i].Id}
		}

		arena[i] = newNode(records[i])
		index[records[i].Id] = i
	}

	roots := []*model.CommentNode{}

	for i := range arena {
		node := &arena[i]

		if node.ParentId == nil {
			roots = append(roots, node)
			continue
		}

		parent, ok := index[*node.ParentId]
		if !ok {
			if !o.orphansAsRoots {
				return nil, &DanglingReferenceError{
					CommentId: node.Id,
					ParentId:  *node.ParentId,
				}
			}

			node.ParentDeleted = true
			roots = append(roots, node)
			continue
		}

		arena[parent].Replies = append(arena[parent].Replies, node)
	}

	if Count(roots) != len(records) {
		return nil, &CycleError{CommentIds: unreachable(records, roots)}
	}

	return roots, nil
}

func newNode(record model.Comment) model.CommentNode {
	node := model.CommentNode{
		Comment: record,
		Upvotes: 0,
		Replies: []*model.CommentNode{},
	}

	if record.ParentId != nil {
		parentId := *record.ParentId
		node.ParentId = &parentId
	}

	if record.Author.AvatarImage != nil {
		avatar := *record.Author.AvatarImage
		node.Author.AvatarImage = &avatar
	}

	return node
}

func unreachable(records []model.Comment, roots []*model.CommentNode) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(records))
	walk(roots, func(node *model.CommentNode) bool {
		seen[node.Id] = struct{}{}
		return false
	})

	ids := []uuid.UUID{}
	for i := range records {
		if _, ok := seen[records[i].Id]; !ok {
			ids = append(ids, records[i].Id)
		}
	}

	return ids
}
