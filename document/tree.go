package document

import "strings"

// TreeNode is a directory or file in the file tree. Children keep the order
// in which paths were first seen.
type TreeNode struct {
	Name     string
	Path     string
	Dir      bool
	Children []*TreeNode

	index map[string]*TreeNode
}

func newTree(name string) *TreeNode {
	return &TreeNode{Name: name, Dir: true, index: map[string]*TreeNode{}}
}

func (n *TreeNode) insert(relPath string) {
	parts := strings.Split(strings.ReplaceAll(relPath, "\\", "/"), "/")
	cur := n
	for i, part := range parts {
		if part == "" || part == "." {
			continue
		}
		last := i == len(parts)-1
		child, ok := cur.index[part]
		if !ok || child.Dir == last {
			child = &TreeNode{Name: part, Path: strings.Join(parts[:i+1], "/"), Dir: !last}
			if !last {
				child.index = map[string]*TreeNode{}
				cur.index[part] = child
			}
			cur.Children = append(cur.Children, child)
		}
		cur = child
	}
}

// Walk visits every node below n depth first. Depth starts at 1 for
// direct children.
func (n *TreeNode) Walk(fn func(node *TreeNode, depth int)) {
	var walk func(*TreeNode, int)
	walk = func(node *TreeNode, depth int) {
		for _, c := range node.Children {
			fn(c, depth)
			if c.Dir {
				walk(c, depth+1)
			}
		}
	}
	walk(n, 1)
}

// Lines renders the tree with ASCII connectors, root first.
func (n *TreeNode) Lines() []string {
	out := []string{n.Name + "/"}
	var walk func(node *TreeNode, prefix string)
	walk = func(node *TreeNode, prefix string) {
		for i, c := range node.Children {
			last := i == len(node.Children)-1
			branch, indent := "|-- ", "|   "
			if last {
				branch, indent = "`-- ", "    "
			}
			name := c.Name
			if c.Dir {
				name += "/"
			}
			out = append(out, prefix+branch+name)
			if c.Dir {
				walk(c, prefix+indent)
			}
		}
	}
	walk(n, "")
	return out
}
