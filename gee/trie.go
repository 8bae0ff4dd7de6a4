package gee

import "strings"

type node struct {
	pattern  string // full route, set only on leaves, e.g. /v/:code
	part     string // this segment, e.g. :code
	children []*node
	isWild   bool // part starts with ':' or '*'
}

// matchChild finds the child to descend into when inserting.
func (n *node) matchChild(part string) *node {
	for _, child := range n.children {
		if child.part == part {
			return child
		}
	}
	return nil
}

// matchChildren returns static matches before wildcards, so /healthz wins over /:code.
func (n *node) matchChildren(part string) []*node {
	nodes := make([]*node, 0, len(n.children))
	for _, child := range n.children {
		if child.part == part {
			nodes = append(nodes, child)
		}
	}
	for _, child := range n.children {
		if child.isWild {
			nodes = append(nodes, child)
		}
	}
	return nodes
}

func (n *node) insert(pattern string, parts []string, height int) {
	if len(parts) == height {
		n.pattern = pattern
		return
	}
	part := parts[height]
	child := n.matchChild(part)
	if child == nil {
		child = &node{
			part:   part,
			isWild: part[0] == ':' || part[0] == '*',
		}
		n.children = append(n.children, child)
	}
	child.insert(pattern, parts, height+1)
}

func (n *node) search(parts []string, height int) *node {
	if len(parts) == height || strings.HasPrefix(n.part, "*") {
		if n.pattern == "" {
			return nil
		}
		return n
	}

	part := parts[height]
	for _, child := range n.matchChildren(part) {
		if result := child.search(parts, height+1); result != nil {
			return result
		}
	}
	return nil
}
