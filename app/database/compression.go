// Snapshot codec: the episode list is stored as a single compressed blob
// rather than row-per-episode, keeping the feed record a single
// read-modify-write unit.

package database

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"

	"github.com/podmirror/podmirror/app/model"
)

// encodeEpisodes serializes an ordered episode list to gzip-compressed JSON.
func encodeEpisodes(episodes []model.Episode) ([]byte, error) {
	data, err := json.Marshal(episodes)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize episodes: %w", err)
	}

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress episodes: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress episodes: %w", err)
	}

	return buf.Bytes(), nil
}

// decodeEpisodes deserializes a stored payload. An empty or missing payload
// yields an empty list, not an error.
func decodeEpisodes(data []byte) ([]model.Episode, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress episodes: %w", err)
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress episodes: %w", err)
	}

	var episodes []model.Episode
	if err := json.Unmarshal(raw, &episodes); err != nil {
		return nil, fmt.Errorf("failed to deserialize episodes: %w", err)
	}

	return episodes, nil
}
