package model

import (
	"fmt"
	"time"

	"github.com/podmirror/podmirror/app/link"
)

// Quality of the media to mirror
type Quality string

const (
	QualityHigh = Quality("high")
	QualityLow  = Quality("low")
)

// Format of the media to mirror
type Format string

const (
	FormatVideo = Format("video")
	FormatAudio = Format("audio")
)

// DefaultUpdateInterval is the fallback synchronization period in seconds.
const DefaultUpdateInterval = 3600

// Kind describes how a feed's upstream listing behaves. Streams (channel and
// user uploads) are append-only and listed newest-first; playlists have
// upstream-defined, mutable membership and order.
type Kind string

const (
	KindStream   = Kind("stream")
	KindPlaylist = Kind("playlist")
)

// KindOf maps a link type to the feed kind it produces.
func KindOf(lt link.Type) Kind {
	if lt == link.TypePlaylist {
		return KindPlaylist
	}
	return KindStream
}

// Episode is one resolved media entry of a feed.
type Episode struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	Duration    int64     `json:"duration"`
	VideoURL    string    `json:"video_url"`
	PubDate     time.Time `json:"pub_date"`
	Size        int64     `json:"size"`
}

// Feed is one synchronized source.
type Feed struct {
	ID             string
	Provider       link.Provider
	LinkType       link.Type
	ItemID         string
	URL            string // source URL constructed from Provider/LinkType/ItemID
	Format         Format
	Quality        Quality
	PageSize       int
	UpdateInterval int    // seconds between synchronization attempts
	LastID         string // cursor: last seen newest item id (stream feeds only)
	Episodes       []Episode
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Kind returns the feed kind derived from its link type.
func (f *Feed) Kind() Kind {
	return KindOf(f.LinkType)
}

// FormatSpec returns the youtube-dl format expression for a format/quality
// combination. The string is opaque to the sync engine and is passed through
// to the extractor. Unknown combinations are input errors.
func FormatSpec(format Format, quality Quality) (string, error) {
	switch {
	case format == FormatVideo && quality == QualityHigh:
		return "best[ext=mp4]", nil
	case format == FormatVideo && quality == QualityLow:
		return "worst[ext=mp4]", nil
	case format == FormatAudio && quality == QualityHigh:
		return "bestaudio", nil
	case format == FormatAudio && quality == QualityLow:
		return "worstaudio", nil
	}
	return "", fmt.Errorf("unknown format spec: %s/%s", format, quality)
}
