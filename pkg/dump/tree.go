// File: pkg/dump/tree.go
package dump

import (
	"path/filepath"
	"sort"
	"strings"
)

type treeNode struct {
	name     string
	children map[string]*treeNode
}

func (n *treeNode) isDir() bool {
	return n.children != nil
}

// RenderTree renders the given files, which must be below root, as a
// box-drawing tree. Directories come first, then files, each group sorted
// case-insensitively.
func RenderTree(root string, files []string) string {
	top := &treeNode{name: root, children: map[string]*treeNode{}}

	for _, file := range files {
		relPath, err := filepath.Rel(root, file)
		if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
			continue
		}
		parts := strings.Split(filepath.ToSlash(relPath), "/")
		node := top
		for i, part := range parts {
			child, ok := node.children[part]
			if !ok {
				child = &treeNode{name: part}
				if i < len(parts)-1 {
					child.children = map[string]*treeNode{}
				}
				node.children[part] = child
			}
			node = child
		}
	}

	var lines []string
	lines = append(lines, strings.TrimSuffix(filepath.ToSlash(root), "/")+"/")
	lines = renderChildren(top, "", lines)
	return strings.Join(lines, "\n")
}

func renderChildren(node *treeNode, prefix string, lines []string) []string {
	entries := make([]*treeNode, 0, len(node.children))
	for _, child := range node.children {
		entries = append(entries, child)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].isDir() != entries[j].isDir() {
			return entries[i].isDir()
		}
		li, lj := strings.ToLower(entries[i].name), strings.ToLower(entries[j].name)
		if li != lj {
			return li < lj
		}
		return entries[i].name < entries[j].name
	})

	for i, entry := range entries {
		connector := "├── "
		indent := "│   "
		if i == len(entries)-1 {
			connector = "└── "
			indent = "    "
		}

		if entry.isDir() {
			lines = append(lines, prefix+connector+entry.name+"/")
			lines = renderChildren(entry, prefix+indent, lines)
		} else {
			lines = append(lines, prefix+connector+entry.name)
		}
	}
	return lines
}
