// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tree

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/backlog-exporter/pkg/types"
)

func sampleTree() *types.TreeNode {
	return &types.TreeNode{
		ID: "root",
		Children: []types.TreeNode{
			{Name: "Guides", Children: []types.TreeNode{
				{ID: "d1", Name: "Setup"},
				{ID: "d2", Name: "Deploy"},
			}},
			{ID: "d3", Name: "FAQ", Children: []types.TreeNode{
				{ID: "d4", Name: "Billing"},
			}},
		},
	}
}

func TestFlatten_FolderWithTwoDocuments(t *testing.T) {
	root := &types.TreeNode{Children: []types.TreeNode{
		{Name: "Folder", Children: []types.TreeNode{
			{ID: "a", Name: "One"},
			{ID: "b", Name: "Two"},
		}},
	}}

	entries := Flatten(root)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{DocumentID: "a", Name: "One", Path: []string{"Folder", "One"}}, entries[0])
	assert.Equal(t, Entry{DocumentID: "b", Name: "Two", Path: []string{"Folder", "Two"}}, entries[1])
}

func TestFlatten_PreOrderAndDescendsIntoDocuments(t *testing.T) {
	entries := Flatten(sampleTree())

	var ids []types.ID
	for _, e := range entries {
		ids = append(ids, e.DocumentID)
	}
	assert.Equal(t, []types.ID{"d1", "d2", "d3", "d4"}, ids)
	assert.Equal(t, []string{"FAQ", "Billing"}, entries[3].Path)
}

func TestFlatten_SanitisesNames(t *testing.T) {
	root := &types.TreeNode{Children: []types.TreeNode{
		{Name: `A/B`, Children: []types.TreeNode{
			{ID: "x", Name: `C\D`},
		}},
		{ID: "y", Name: ".."},
		{Name: "", Children: []types.TreeNode{{ID: "z", Name: "Z"}}},
	}}

	entries := Flatten(root)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"A_B", "C_D"}, entries[0].Path)
	assert.Equal(t, []string{"y"}, entries[1].Path)
	assert.Equal(t, []string{"untitled", "Z"}, entries[2].Path)
}

func TestFlatten_PathsDoNotAlias(t *testing.T) {
	root := &types.TreeNode{Children: []types.TreeNode{
		{Name: "P", Children: []types.TreeNode{
			{ID: "1", Name: "A"},
			{ID: "2", Name: "B"},
			{ID: "3", Name: "C"},
		}},
	}}
	entries := Flatten(root)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"P", "A"}, entries[0].Path)
	assert.Equal(t, []string{"P", "B"}, entries[1].Path)
	assert.Equal(t, []string{"P", "C"}, entries[2].Path)
}

func TestFlatten_DeepTree(t *testing.T) {
	root := &types.TreeNode{}
	cur := root
	const depth = 5000
	for i := 0; i < depth; i++ {
		cur.Children = []types.TreeNode{{ID: types.ID("n"), Name: "n"}}
		cur = &cur.Children[0]
	}

	entries := Flatten(root)
	assert.Len(t, entries, depth)
	assert.Len(t, entries[depth-1].Path, depth)
}

func TestFlatten_EmptyAndNil(t *testing.T) {
	assert.Empty(t, Flatten(nil))
	assert.Empty(t, Flatten(&types.TreeNode{}))
}

func TestEntryDirAndDirs(t *testing.T) {
	entries := Flatten(sampleTree())
	assert.Equal(t, filepath.Join("out", "Guides", "Setup"), entries[0].Dir("out"))

	dirs := Dirs("out", append(entries, entries[0]))
	assert.Equal(t, []string{
		filepath.Join("out", "Guides", "Setup"),
		filepath.Join("out", "Guides", "Deploy"),
		filepath.Join("out", "FAQ"),
		filepath.Join("out", "FAQ", "Billing"),
	}, dirs)
}

func TestRender(t *testing.T) {
	lines := Render(sampleTree(), func(id types.ID) string {
		return "https://example.backlog.com/document/DOCS/" + id.String()
	})
	assert.Equal(t, []string{
		"- Guides",
		"  - Setup (https://example.backlog.com/document/DOCS/d1)",
		"  - Deploy (https://example.backlog.com/document/DOCS/d2)",
		"- FAQ (https://example.backlog.com/document/DOCS/d3)",
		"  - Billing (https://example.backlog.com/document/DOCS/d4)",
	}, lines)
}

func TestRender_NoLinks(t *testing.T) {
	lines := Render(sampleTree(), nil)
	assert.Equal(t, "  - Setup", lines[1])
	assert.Equal(t, "- FAQ", lines[3])
}

func TestFlatten_DuplicateSiblingNames(t *testing.T) {
	root := &types.TreeNode{Children: []types.TreeNode{
		{ID: "d1", Name: "Notes"},
		{ID: "d2", Name: "Notes"},
		{ID: "d3", Name: "A/B"},
		{ID: "d4", Name: "A_B"},
		{ID: "d5", Name: "notes"},
		{ID: "d6", Name: "Notes_d2"},
	}}

	entries := Flatten(root)
	require.Len(t, entries, 6)

	var paths [][]string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, [][]string{
		{"Notes"},
		{"Notes_d2"},
		{"A_B"},
		{"A_B_d4"},
		{"notes_d5"},
		{"Notes_d2_d6"},
	}, paths)
	assert.Len(t, Dirs("out", entries), 6, "every document gets its own directory")
}

func TestFlatten_DuplicateFolderNames(t *testing.T) {
	root := &types.TreeNode{Children: []types.TreeNode{
		{Name: "Guides", Children: []types.TreeNode{{ID: "a", Name: "Intro"}}},
		{Name: "Guides", Children: []types.TreeNode{{ID: "b", Name: "Intro"}}},
	}}

	entries := Flatten(root)
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"Guides", "Intro"}, entries[0].Path)
	assert.Equal(t, []string{"Guides_2", "Intro"}, entries[1].Path)
}

func TestFlatten_ChildrenSegments(t *testing.T) {
	entries := Flatten(sampleTree())
	require.Len(t, entries, 4)
	assert.Equal(t, []string{"Billing"}, entries[2].Children)
	assert.Nil(t, entries[0].Children)
}

func TestChildSegments_CounterWhenSuffixTaken(t *testing.T) {
	n := &types.TreeNode{Children: []types.TreeNode{
		{Name: "X"},
		{Name: "X_3"},
		{Name: "X"},
		{Name: "X"},
	}}
	assert.Equal(t, []string{"X", "X_3", "X_3_2", "X_4"}, ChildSegments(n))

	n = &types.TreeNode{Children: []types.TreeNode{
		{Name: "X"},
		{Name: "X_2"},
		{Name: "x"},
	}}
	assert.Equal(t, []string{"X", "X_2", "x_3"}, ChildSegments(n))

	n = &types.TreeNode{Children: []types.TreeNode{
		{Name: "X"},
		{Name: "X"},
		{Name: "X_2"},
	}}
	assert.Equal(t, []string{"X", "X_2", "X_2_3"}, ChildSegments(n))
}
