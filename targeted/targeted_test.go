package targeted

import "testing"

func TestSelectNodesIsDeterministic(t *testing.T) {
	nodes := []string{"http://a", "http://b", "http://c", "http://d", "http://e"}

	got1, err := SelectNodes(nodes, "QmExampleIpfsId", 3)
	if err != nil {
		t.Fatalf("SelectNodes: %v", err)
	}
	got2, err := SelectNodes(nodes, "QmExampleIpfsId", 3)
	if err != nil {
		t.Fatalf("SelectNodes: %v", err)
	}

	if len(got1) != 3 || len(got2) != 3 {
		t.Fatalf("expected 3 nodes, got %d and %d", len(got1), len(got2))
	}
	for i := range got1 {
		if got1[i] != got2[i] {
			t.Fatalf("not deterministic: %v vs %v", got1, got2)
		}
	}
}

func TestSelectNodesReturnsUniqueIndices(t *testing.T) {
	nodes := []string{"http://a", "http://b", "http://c"}

	got, err := SelectNodes(nodes, "some-ipfs-id", 3)
	if err != nil {
		t.Fatalf("SelectNodes: %v", err)
	}

	seen := make(map[string]bool)
	for _, u := range got {
		if seen[u] {
			t.Fatalf("duplicate URL in result: %v", got)
		}
		seen[u] = true
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 unique URLs, got %d", len(got))
	}
}

func TestSelectNodesRejectsOutOfBoundsK(t *testing.T) {
	nodes := []string{"http://a", "http://b"}

	if _, err := SelectNodes(nodes, "id", 0); err == nil {
		t.Fatal("expected error for k=0")
	}
	if _, err := SelectNodes(nodes, "id", 3); err == nil {
		t.Fatal("expected error for k > len(nodes)")
	}
}

func TestSelectNodesRejectsEmptyNodeList(t *testing.T) {
	if _, err := SelectNodes(nil, "id", 1); err == nil {
		t.Fatal("expected error for empty node list")
	}
}
