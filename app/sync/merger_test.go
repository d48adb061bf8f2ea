package sync

import (
	"testing"

	"github.com/podmirror/podmirror/app/model"
)

func TestMergeStream_Prepend(t *testing.T) {
	merged := mergeStream(episodeList("v4", "v3"), episodeList("v2", "v1"), 50)

	if len(merged) != 4 {
		t.Fatalf("Expected 4 episodes, got %d", len(merged))
	}
	for i, id := range []string{"v4", "v3", "v2", "v1"} {
		if merged[i].ID != id {
			t.Errorf("Expected %s at position %d, got %s", id, i, merged[i].ID)
		}
	}
}

func TestMergeStream_TruncationBound(t *testing.T) {
	// 3 stored + 2 new with page size 3: the 2 new plus the single most
	// recent previously stored item survive
	merged := mergeStream(episodeList("v5", "v4"), episodeList("v3", "v2", "v1"), 3)

	if len(merged) != 3 {
		t.Fatalf("Expected exactly 3 episodes, got %d", len(merged))
	}
	for i, id := range []string{"v5", "v4", "v3"} {
		if merged[i].ID != id {
			t.Errorf("Expected %s at position %d, got %s", id, i, merged[i].ID)
		}
	}
}

func TestMergeStream_NoTruncationWithoutPageSize(t *testing.T) {
	merged := mergeStream(episodeList("v2"), episodeList("v1"), 0)

	if len(merged) != 2 {
		t.Errorf("Expected 2 episodes, got %d", len(merged))
	}
}

func TestMergePlaylist_UpstreamOrder(t *testing.T) {
	d := diffPlaylist(entryList("b", "c"), episodeList("a", "b"))
	resolved := map[string]model.Episode{"c": {ID: "c", Title: "C"}}

	merged := mergePlaylist(d, resolved)

	if len(merged) != 2 {
		t.Fatalf("Expected 2 episodes, got %d", len(merged))
	}
	if merged[0].ID != "b" || merged[1].ID != "c" {
		t.Errorf("Expected [b c], got [%s %s]", merged[0].ID, merged[1].ID)
	}
}

func TestMergePlaylist_SkipsUnresolved(t *testing.T) {
	d := diffPlaylist(entryList("a", "b"), nil)

	// b failed resolution
	merged := mergePlaylist(d, map[string]model.Episode{"a": {ID: "a"}})

	if len(merged) != 1 || merged[0].ID != "a" {
		t.Errorf("Expected only resolved item a, got %v", merged)
	}
}

func TestSameEpisodes(t *testing.T) {
	if !sameEpisodes(episodeList("a", "b"), episodeList("a", "b")) {
		t.Error("Expected identical lists to compare equal")
	}
	if sameEpisodes(episodeList("a", "b"), episodeList("b", "a")) {
		t.Error("Expected reordered lists to compare unequal")
	}
	if sameEpisodes(episodeList("a"), episodeList("a", "b")) {
		t.Error("Expected lists of different length to compare unequal")
	}
}
