// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tree walks the Backlog document tree. Traversal is depth-first
// pre-order in server child order and uses an explicit stack, so deep trees
// do not grow the goroutine stack.
package tree

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/backlog-exporter/internal/fsutil"
	"github.com/pdiddy/backlog-exporter/pkg/types"
)

const untitled = "untitled"

// Entry is a document found in the tree and the directory path it maps to.
// Children holds the directory names of the document's child nodes.
type Entry struct {
	DocumentID types.ID
	Name       string
	Path       []string
	Children   []string
}

// Dir joins the entry path under root.
func (e Entry) Dir(root string) string {
	return filepath.Join(append([]string{root}, e.Path...)...)
}

type frame struct {
	node    *types.TreeNode
	segment string
	path    []string
	depth   int
}

// walk visits every descendant of root in pre-order. The root itself is
// not visited and contributes no path segment. children are the segments
// of the visited node's children.
func walk(root *types.TreeNode, visit func(n *types.TreeNode, path, children []string, depth int)) {
	if root == nil {
		return
	}
	stack := make([]frame, 0, len(root.Children))
	pushChildren := func(parent *types.TreeNode, segments, path []string, depth int) {
		for i := len(parent.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: &parent.Children[i], segment: segments[i], path: path, depth: depth})
		}
	}
	pushChildren(root, ChildSegments(root), nil, 0)

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		path := make([]string, len(f.path), len(f.path)+1)
		copy(path, f.path)
		path = append(path, f.segment)

		children := ChildSegments(f.node)
		visit(f.node, path, children, f.depth)
		pushChildren(f.node, children, path, f.depth+1)
	}
}

// ChildSegments returns the directory names of n's children in order. The
// first child to claim a name keeps it; later siblings whose name matches
// case-insensitively get "_<id>" appended, or "_<position>" for folders,
// plus a counter if that is taken too.
func ChildSegments(n *types.TreeNode) []string {
	if len(n.Children) == 0 {
		return nil
	}
	segments := make([]string, len(n.Children))
	used := make(map[string]bool, len(n.Children))
	for i := range n.Children {
		c := &n.Children[i]
		seg := Segment(c)
		if used[strings.ToLower(seg)] {
			suffix := strconv.Itoa(i + 1)
			if c.IsDocument() {
				suffix = fsutil.SanitizeName(c.ID.String())
			}
			base := seg + "_" + suffix
			seg = base
			for k := 2; used[strings.ToLower(seg)]; k++ {
				seg = base + "_" + strconv.Itoa(k)
			}
		}
		used[strings.ToLower(seg)] = true
		segments[i] = seg
	}
	return segments
}

// Segment returns the directory name for a node: its name with path
// separators replaced by '_'. Names that cannot stand alone as a directory
// ("", ".", "..") fall back to the node id, or "untitled" for folders.
func Segment(n *types.TreeNode) string {
	fallback := untitled
	if n.IsDocument() {
		fallback = fsutil.SanitizeName(n.ID.String())
	}
	return fsutil.SafeFilename(n.Name, fallback)
}

// Flatten lists every document under root with its path segments. Folders
// without an id produce no entry, and traversal always continues into a
// node's children. Siblings never share a directory; see ChildSegments.
func Flatten(root *types.TreeNode) []Entry {
	var entries []Entry
	walk(root, func(n *types.TreeNode, path, children []string, _ int) {
		if n.IsDocument() {
			entries = append(entries, Entry{DocumentID: n.ID, Name: n.Name, Path: path, Children: children})
		}
	})
	return entries
}

// Dirs returns the distinct directories for entries under root, in entry
// order.
func Dirs(root string, entries []Entry) []string {
	seen := make(map[string]bool, len(entries))
	var dirs []string
	for _, e := range entries {
		d := e.Dir(root)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Render returns one indented bullet line per node, two spaces per level.
// Document lines end with the link returned by link; a nil link omits it.
func Render(root *types.TreeNode, link func(types.ID) string) []string {
	var lines []string
	walk(root, func(n *types.TreeNode, _, _ []string, depth int) {
		var b strings.Builder
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("- ")
		b.WriteString(n.Name)
		if n.IsDocument() && link != nil {
			b.WriteString(" (")
			b.WriteString(link(n.ID))
			b.WriteString(")")
		}
		lines = append(lines, b.String())
	})
	return lines
}
