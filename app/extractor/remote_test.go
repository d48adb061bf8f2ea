package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/podmirror/podmirror/app/sync"
)

func TestRemote_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/list" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("url"); got != "https://youtube.com/channel/UC123" {
			t.Errorf("Unexpected url parameter: %s", got)
		}
		if got := r.URL.Query().Get("start"); got != "1" {
			t.Errorf("Unexpected start parameter: %s", got)
		}
		if got := r.URL.Query().Get("count"); got != "50" {
			t.Errorf("Unexpected count parameter: %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"entries": [
			{"id": "v2", "title": "Second", "url": "https://youtube.com/watch?v=v2"},
			{"id": "v1", "title": "First", "url": "https://youtube.com/watch?v=v1"}
		]}`))
	}))
	defer server.Close()

	remote := NewRemote(server.URL, server.Client(), "podmirror/test")

	entries, err := remote.List(context.Background(), "https://youtube.com/channel/UC123", 1, 50)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "v2" || entries[0].Title != "Second" {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}
	if entries[1].URL != "https://youtube.com/watch?v=v1" {
		t.Errorf("Unexpected second entry URL: %s", entries[1].URL)
	}
}

func TestRemote_ListEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"entries": []}`))
	}))
	defer server.Close()

	remote := NewRemote(server.URL, server.Client(), "podmirror/test")

	entries, err := remote.List(context.Background(), "https://youtube.com/channel/UC123", 1, 50)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestRemote_Resolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/resolve" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("url"); got != "https://youtube.com/watch?v=v1" {
			t.Errorf("Unexpected url parameter: %s", got)
		}
		if got := r.URL.Query().Get("format"); got != "best[ext=mp4]" {
			t.Errorf("Unexpected format parameter: %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "v1",
			"title": "First",
			"description": "Description",
			"thumbnail": "https://example.com/v1.jpg",
			"duration": 125,
			"video_url": "https://youtube.com/watch?v=v1",
			"upload_date": "20240115",
			"size": 43750000
		}`))
	}))
	defer server.Close()

	remote := NewRemote(server.URL, server.Client(), "podmirror/test")

	entry := sync.Entry{ID: "v1", URL: "https://youtube.com/watch?v=v1"}
	resolved, err := remote.Resolve(context.Background(), entry, "best[ext=mp4]")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if resolved.ID != "v1" || resolved.Duration != 125 || resolved.Size != 43750000 {
		t.Errorf("Unexpected resolved item: %+v", resolved)
	}
	if resolved.UploadDate != "20240115" {
		t.Errorf("Unexpected upload date: %s", resolved.UploadDate)
	}
}

func TestRemote_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "extraction failed", http.StatusBadGateway)
	}))
	defer server.Close()

	remote := NewRemote(server.URL, server.Client(), "podmirror/test")

	if _, err := remote.List(context.Background(), "https://youtube.com/channel/UC123", 1, 50); err == nil {
		t.Error("Expected error for non-200 response")
	}
}
