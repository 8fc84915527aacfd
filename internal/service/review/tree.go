package review

import (
	"github.com/google/uuid"

	"portfolio-backend/internal/domain"
)

type treeNode struct {
	comment  domain.Comment
	children []*treeNode
}

// BuildTree converts a flat comment list into a forest. Relative input order
// is preserved within each sibling group and no node appears twice. A row
// whose parent is not in the list is an orphan: its root was cut off by a
// pagination boundary or filter, so it is dropped entirely rather than
// promoted to the root level.
func BuildTree(flat []domain.Comment) []domain.CommentTree {
	nodes := make(map[uuid.UUID]*treeNode, len(flat))
	ordered := make([]*treeNode, 0, len(flat))
	for _, c := range flat {
		n := &treeNode{comment: c}
		nodes[c.ID] = n
		ordered = append(ordered, n)
	}

	roots := []*treeNode{}
	for _, n := range ordered {
		if n.comment.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[*n.comment.ParentID]
		if !ok {
			continue
		}
		parent.children = append(parent.children, n)
	}

	return materialize(roots)
}

func materialize(nodes []*treeNode) []domain.CommentTree {
	out := make([]domain.CommentTree, len(nodes))
	for i, n := range nodes {
		out[i] = domain.CommentTree{
			Comment: n.comment,
			Replies: materialize(n.children),
		}
	}
	return out
}

// InsertNode returns a new tree with node prepended to the roots when
// parentID is nil, or appended to the replies of the matching parent,
// searched through the whole forest. If parentID resolves to nothing the
// result carries the same nodes as the input.
func InsertNode(tree []domain.CommentTree, node domain.CommentTree, parentID *uuid.UUID) []domain.CommentTree {
	if parentID == nil {
		out := make([]domain.CommentTree, 0, len(tree)+1)
		out = append(out, node)
		return append(out, tree...)
	}

	if len(tree) == 0 {
		return tree
	}

	out := make([]domain.CommentTree, len(tree))
	for i, n := range tree {
		if n.ID == *parentID {
			replies := make([]domain.CommentTree, 0, len(n.Replies)+1)
			replies = append(replies, n.Replies...)
			n.Replies = append(replies, node)
		} else {
			n.Replies = InsertNode(n.Replies, node, parentID)
		}
		out[i] = n
	}
	return out
}

// RemoveNode returns a new tree with the matching node removed wherever it
// occurs. Its descendants go with it, since they are nested under it. Removing
// an absent id returns a tree equal to the input.
func RemoveNode(tree []domain.CommentTree, id uuid.UUID) []domain.CommentTree {
	if len(tree) == 0 {
		return tree
	}

	out := make([]domain.CommentTree, 0, len(tree))
	for _, n := range tree {
		if n.ID == id {
			continue
		}
		n.Replies = RemoveNode(n.Replies, id)
		out = append(out, n)
	}
	return out
}

// NodePatch is a partial update for a single node. Double pointers
// distinguish "leave alone" (nil) from "set to this value, possibly NULL"
// (non-nil), matching what the update operation may write.
type NodePatch struct {
	ID         uuid.UUID
	Text       *string
	Rating     **int
	WebsiteURL **string
	Package    **string
}

// UpdateNode returns a new tree with the matching node's fields shallow-merged
// from the patch. Placement in the tree never changes.
func UpdateNode(tree []domain.CommentTree, patch NodePatch) []domain.CommentTree {
	if len(tree) == 0 {
		return tree
	}

	out := make([]domain.CommentTree, len(tree))
	for i, n := range tree {
		if n.ID == patch.ID {
			if patch.Text != nil {
				n.Text = *patch.Text
			}
			if patch.Rating != nil {
				n.Rating = *patch.Rating
			}
			if patch.WebsiteURL != nil {
				n.WebsiteURL = *patch.WebsiteURL
			}
			if patch.Package != nil {
				n.Package = *patch.Package
			}
		} else {
			n.Replies = UpdateNode(n.Replies, patch)
		}
		out[i] = n
	}
	return out
}
