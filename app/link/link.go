package link

import (
	"fmt"
	"net/url"
	"strings"
)

// Provider is a supported media source.
type Provider string

const (
	ProviderYoutube = Provider("youtube")
	ProviderVimeo   = Provider("vimeo")
)

// Type of the upstream listing behind a subscription URL.
type Type string

const (
	TypeChannel  = Type("channel")
	TypePlaylist = Type("playlist")
	TypeUser     = Type("user")
	TypeGroup    = Type("group")
)

// Info represents data extracted from a subscription URL.
type Info struct {
	Provider Provider
	LinkType Type
	ItemID   string
}

// Parse extracts provider, link type and item id from a subscription URL.
func Parse(link string) (Info, error) {
	parsed, err := parseURL(link)
	if err != nil {
		return Info{}, err
	}

	if strings.HasSuffix(parsed.Host, "youtube.com") {
		kind, id, err := parseYoutubeURL(parsed)
		if err != nil {
			return Info{}, err
		}
		return Info{Provider: ProviderYoutube, LinkType: kind, ItemID: id}, nil
	}

	if strings.HasSuffix(parsed.Host, "vimeo.com") {
		kind, id, err := parseVimeoURL(parsed)
		if err != nil {
			return Info{}, err
		}
		return Info{Provider: ProviderVimeo, LinkType: kind, ItemID: id}, nil
	}

	return Info{}, fmt.Errorf("unsupported URL host: %s", parsed.Host)
}

// SourceURL builds the canonical fetchable URL for a provider/type/id
// combination. Unmatched combinations fail here, at construction time.
func SourceURL(provider Provider, linkType Type, itemID string) (string, error) {
	if itemID == "" {
		return "", fmt.Errorf("empty item id")
	}

	switch provider {
	case ProviderYoutube:
		switch linkType {
		case TypeChannel:
			return "https://youtube.com/channel/" + itemID, nil
		case TypePlaylist:
			return "https://youtube.com/playlist?list=" + itemID, nil
		case TypeUser:
			return "https://youtube.com/user/" + itemID, nil
		}
	case ProviderVimeo:
		switch linkType {
		case TypeChannel:
			return "https://vimeo.com/channels/" + itemID, nil
		case TypeGroup:
			return "https://vimeo.com/groups/" + itemID, nil
		case TypeUser:
			return "https://vimeo.com/" + itemID, nil
		}
	}

	return "", fmt.Errorf("unsupported link combination: %s/%s", provider, linkType)
}

// VideoURL builds the watch page URL for a single item of a provider.
func VideoURL(provider Provider, videoID string) (string, error) {
	switch provider {
	case ProviderYoutube:
		return "https://youtube.com/watch?v=" + videoID, nil
	case ProviderVimeo:
		return "https://vimeo.com/" + videoID, nil
	}
	return "", fmt.Errorf("unsupported provider: %s", provider)
}

func parseURL(link string) (*url.URL, error) {
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		link = "https://" + link
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url %q: %w", link, err)
	}

	return parsed, nil
}

func parseYoutubeURL(parsed *url.URL) (Type, string, error) {
	path := parsed.EscapedPath()

	// https://www.youtube.com/playlist?list=PLCB9F975ECF01953C
	// https://www.youtube.com/watch?v=rbCbho7aLYw&list=PLMpEfaKcGjpWEgNtdnsvLX6LzQL0UC0EM
	if strings.HasPrefix(path, "/playlist") || strings.HasPrefix(path, "/watch") {
		id := parsed.Query().Get("list")
		if id == "" {
			return "", "", fmt.Errorf("invalid playlist link")
		}
		return TypePlaylist, id, nil
	}

	// https://www.youtube.com/channel/UC5XPnUk8Vvv_pWslhwom6Og
	if strings.HasPrefix(path, "/channel") {
		parts := strings.Split(path, "/")
		if len(parts) <= 2 || parts[2] == "" {
			return "", "", fmt.Errorf("invalid youtube channel link")
		}
		return TypeChannel, parts[2], nil
	}

	// https://www.youtube.com/user/fxigr1
	if strings.HasPrefix(path, "/user") {
		parts := strings.Split(path, "/")
		if len(parts) <= 2 || parts[2] == "" {
			return "", "", fmt.Errorf("invalid youtube user link")
		}
		return TypeUser, parts[2], nil
	}

	return "", "", fmt.Errorf("unsupported youtube link format")
}

func parseVimeoURL(parsed *url.URL) (Type, string, error) {
	parts := strings.Split(parsed.EscapedPath(), "/")
	if len(parts) <= 1 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid vimeo link path")
	}

	switch parts[1] {
	case "groups":
		if len(parts) <= 2 || parts[2] == "" {
			return "", "", fmt.Errorf("invalid vimeo group link")
		}
		return TypeGroup, parts[2], nil
	case "channels":
		if len(parts) <= 2 || parts[2] == "" {
			return "", "", fmt.Errorf("invalid vimeo channel link")
		}
		return TypeChannel, parts[2], nil
	default:
		return TypeUser, parts[1], nil
	}
}
