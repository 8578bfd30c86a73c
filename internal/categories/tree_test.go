package categories

import (
	"testing"

	"github.com/xelth-com/insalessync/internal/insales"
)

func parent(id int64) *int64 { return &id }

func sampleTree() *Tree {
	return NewTree([]insales.Category{
		{ID: 1, Title: "Catalog"},
		{ID: 5, Title: "Shoes", ParentID: parent(1)},
		{ID: 7, Title: "Boots", ParentID: parent(5)},
		{ID: 12, Title: "Bags", ParentID: parent(1)},
		{ID: 51, Title: "Sale", ParentID: parent(1)},
		{ID: 70, Title: "Winter", ParentID: parent(7)},
	})
}

func TestTree_Paths(t *testing.T) {
	tree := sampleTree()

	cases := map[int64][2]string{
		1:  {"", "Catalog"},
		5:  {"1", "Catalog / Shoes"},
		7:  {"1/5", "Catalog / Shoes / Boots"},
		70: {"1/5/7", "Catalog / Shoes / Boots / Winter"},
		12: {"1", "Catalog / Bags"},
	}
	for id, want := range cases {
		n, ok := tree.Get(id)
		if !ok {
			t.Fatalf("Node %d missing", id)
		}
		if n.ParentPath != want[0] || n.PathNamed != want[1] {
			t.Errorf("Node %d: got (%q, %q), want (%q, %q)", id, n.ParentPath, n.PathNamed, want[0], want[1])
		}
	}

	n, _ := tree.Get(7)
	if n.SelfPath() != "1/5/7" {
		t.Errorf("Unexpected self path: %s", n.SelfPath())
	}
}

func TestTree_UnknownParentIsRoot(t *testing.T) {
	tree := NewTree([]insales.Category{
		{ID: 3, Title: "Orphan", ParentID: parent(999)},
		{ID: 4, Title: "Child", ParentID: parent(3)},
	})
	n, _ := tree.Get(4)
	if n.ParentPath != "3" || n.PathNamed != "Orphan / Child" {
		t.Errorf("Unexpected paths: %q %q", n.ParentPath, n.PathNamed)
	}
}

func TestTree_CycleLeavesEmptyPaths(t *testing.T) {
	tree := NewTree([]insales.Category{
		{ID: 1, Title: "Root"},
		{ID: 2, Title: "A", ParentID: parent(3)},
		{ID: 3, Title: "B", ParentID: parent(2)},
	})
	if len(tree.Nodes()) != 3 {
		t.Fatalf("Expected 3 nodes, got %d", len(tree.Nodes()))
	}
	n, _ := tree.Get(2)
	if n.ParentPath != "" || n.PathNamed != "A" {
		t.Errorf("Unexpected paths for cyclic node: %q %q", n.ParentPath, n.PathNamed)
	}
}

func TestIsDescendantPath(t *testing.T) {
	// "1/5" must not match "1/51"
	n51, _ := sampleTree().Get(51)
	if IsDescendantPath(n51.SelfPath(), "1/5") {
		t.Error("Segment prefix must not match a longer id")
	}
	if !IsDescendantPath("1/5/7", "1/5") || !IsDescendantPath("1/5", "1/5") {
		t.Error("Expected descendant paths to match")
	}
}
