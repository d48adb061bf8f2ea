package sync

import (
	"github.com/podmirror/podmirror/app/model"
)

// streamDiff classifies a freshly listed stream window against the stored
// cursor. lastID is the id of the newest listed entry, or empty when the
// window had no entries.
type streamDiff struct {
	fresh  []Entry
	lastID string
}

// diffStream walks entries in upstream (newest-first) order. Everything
// before the cursor is new; the cursor entry and everything after it are
// already known. A window that never reaches the cursor (stale cursor,
// deleted upstream, first sync) makes every entry new, bounded by count.
func diffStream(entries []Entry, cursor string, count int) streamDiff {
	var d streamDiff
	if len(entries) == 0 {
		return d
	}

	d.lastID = entries[0].ID

	for _, e := range entries {
		if cursor != "" && e.ID == cursor {
			break
		}
		if len(d.fresh) >= count {
			break
		}
		d.fresh = append(d.fresh, e)
	}

	return d
}

// playlistDiff describes how a fresh playlist listing relates to the stored
// episode list: reused holds stored items still present upstream (keyed by
// id), fresh holds entries that need resolution, order is the upstream id
// sequence the merged list must follow.
type playlistDiff struct {
	order  []string
	fresh  []Entry
	reused map[string]model.Episode
	dirty  bool
}

// diffPlaylist reuses stored items by id so unchanged metadata is never
// re-resolved. Stored items absent from the listing are dropped. The diff is
// dirty whenever membership or order changed, even with nothing to resolve.
func diffPlaylist(entries []Entry, stored []model.Episode) playlistDiff {
	known := make(map[string]model.Episode, len(stored))
	for _, ep := range stored {
		known[ep.ID] = ep
	}

	d := playlistDiff{
		order:  make([]string, 0, len(entries)),
		reused: make(map[string]model.Episode),
	}

	for _, e := range entries {
		d.order = append(d.order, e.ID)
		if ep, ok := known[e.ID]; ok {
			d.reused[e.ID] = ep
		} else {
			d.fresh = append(d.fresh, e)
			d.dirty = true
		}
	}

	if !d.dirty {
		if len(entries) != len(stored) {
			d.dirty = true
		} else {
			for i := range stored {
				if stored[i].ID != entries[i].ID {
					d.dirty = true
					break
				}
			}
		}
	}

	return d
}
