package thread

import (
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/google/uuid"
)

// Contains reports whether node or any of its replies, at any depth, has id.
func Contains(node *model.CommentNode, id uuid.UUID) bool {
	if node == nil {
		return false
	}

	found := false
	walk([]*model.CommentNode{node}, func(current *model.CommentNode) bool {
		found = current.Id == id
		return found
	})

	return found
}

// IndexOf returns the position of the top-level comment whose tree holds id,
// or -1 when no tree does.
func IndexOf(forest []*model.CommentNode, id uuid.UUID) int {
	for i, root := range forest {
		if Contains(root, id) {
			return i
		}
	}

	return -1
}

// Count returns the number of nodes in forest, replies included.
func Count(forest []*model.CommentNode) int {
	total := 0
	walk(forest, func(*model.CommentNode) bool {
		total++
		return false
	})

	return total
}

// walk visits nodes depth first with an explicit stack so deep reply chains
// do not grow the call stack. It stops as soon as visit returns true.
func walk(forest []*model.CommentNode, visit func(*model.CommentNode) bool) {
	stack := make([]*model.CommentNode, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		if forest[i] != nil {
			stack = append(stack, forest[i])
		}
	}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visit(current) {
			return
		}

		for i := len(current.Replies) - 1; i >= 0; i-- {
			stack = append(stack, current.Replies[i])
		}
	}
}
