package sync

import (
	"github.com/podmirror/podmirror/app/model"
)

// mergeStream prepends newly resolved episodes (newest-first) to the stored
// list and truncates to pageSize, discarding the oldest excess.
func mergeStream(fresh, stored []model.Episode, pageSize int) []model.Episode {
	merged := make([]model.Episode, 0, len(fresh)+len(stored))
	merged = append(merged, fresh...)
	merged = append(merged, stored...)

	if pageSize > 0 && len(merged) > pageSize {
		merged = merged[:pageSize]
	}

	return merged
}

// mergePlaylist assembles the full episode list in upstream order from reused
// and newly resolved items. Playlist membership fully replaces the prior
// snapshot, so there is no prepend or truncate step. Ids whose resolution
// failed have no episode and are skipped.
func mergePlaylist(d playlistDiff, resolved map[string]model.Episode) []model.Episode {
	merged := make([]model.Episode, 0, len(d.order))

	for _, id := range d.order {
		if ep, ok := d.reused[id]; ok {
			merged = append(merged, ep)
			continue
		}
		if ep, ok := resolved[id]; ok {
			merged = append(merged, ep)
		}
	}

	return merged
}

// sameEpisodes reports whether two lists agree in membership, order and
// count, compared by episode id.
func sameEpisodes(a, b []model.Episode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
