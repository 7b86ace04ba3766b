package content

import (
	"sort"

	"github.com/blog-publishing-api/internal/models"
)

// BuildThread assembles the flat comment list of one post into a forest.
//
// Roots (no parent) are ordered newest first; replies under a parent are
// ordered oldest first so a conversation reads top to bottom. A comment whose
// parent is missing, or belongs to a different post, is an orphan: it and
// everything under it are left out of the result.
func BuildThread(comments []models.Comment) []*models.CommentNode {
	nodes := make(map[string]*models.CommentNode, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &models.CommentNode{Comment: c, Replies: []*models.CommentNode{}}
	}

	roots := []*models.CommentNode{}
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*c.ParentID]
		if !ok || parent.PostID != c.PostID || parent == node {
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}

	sortNodes(roots, true)
	for _, r := range roots {
		sortReplies(r)
	}
	return roots
}

func sortReplies(n *models.CommentNode) {
	sortNodes(n.Replies, false)
	for _, r := range n.Replies {
		sortReplies(r)
	}
}

func sortNodes(nodes []*models.CommentNode, newestFirst bool) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if newestFirst {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if newestFirst {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
}

// CountNodes returns the number of comments reachable in a forest
func CountNodes(forest []*models.CommentNode) int {
	n := 0
	for _, node := range forest {
		n += 1 + CountNodes(node.Replies)
	}
	return n
}
