package bookmarks

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bookmarks.json")
	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Logf("Close() failed: %v", err)
		}
	})

	return svc, path
}

// waitForEvent drains events until one of type want arrives.
func waitForEvent(t *testing.T, svc *Service, want EventType) Event {
	t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case event := <-svc.Events():
			if event.Type == want {
				return event
			}
		case <-timeout:
			t.Fatalf("timeout waiting for event %d", want)
		}
	}
}

func TestNew(t *testing.T) {
	svc, path := newTestService(t)

	if _, err := os.Stat(path); err != nil {
		t.Errorf("bookmarks file was not created: %v", err)
	}
	if svc.Count() != 0 {
		t.Errorf("Count() = %d, want 0", svc.Count())
	}
	if svc.Path() != path {
		t.Errorf("Path() = %s, want %s", svc.Path(), path)
	}

	waitForEvent(t, svc, EventLoaded)
}

func TestNew_EmptyPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("New(\"\") should fail")
	}
}

func TestNew_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := New(path); err == nil {
		t.Error("New() should fail on an invalid file")
	}
}

func TestAddRemove(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.Add(" promo ", "Spring promo"); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if !svc.Has("promo") {
		t.Error("Has(promo) = false after Add")
	}

	event := waitForEvent(t, svc, EventAdded)
	if event.Bookmark == nil || event.Bookmark.Alias != "promo" {
		t.Errorf("EventAdded bookmark = %+v", event.Bookmark)
	}

	if err := svc.Add("promo", ""); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate Add() error = %v, want ErrExists", err)
	}

	if err := svc.Remove("promo"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if svc.Has("promo") {
		t.Error("Has(promo) = true after Remove")
	}
	if err := svc.Remove("promo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove() error = %v, want ErrNotFound", err)
	}
	if err := svc.Add("  ", ""); err == nil {
		t.Error("Add of blank alias should fail")
	}
}

func TestToggle(t *testing.T) {
	svc, _ := newTestService(t)

	saved, err := svc.Toggle("abc")
	if err != nil || !saved {
		t.Fatalf("Toggle() = %v, %v; want true, nil", saved, err)
	}
	saved, err = svc.Toggle("abc")
	if err != nil || saved {
		t.Fatalf("Toggle() = %v, %v; want false, nil", saved, err)
	}
	if svc.Count() != 0 {
		t.Errorf("Count() = %d, want 0", svc.Count())
	}
}

func TestList_ReturnsCopy(t *testing.T) {
	svc, _ := newTestService(t)
	_ = svc.Add("a", "")
	_ = svc.Add("b", "")

	list := svc.List()
	if len(list) != 2 || list[0].Alias != "a" || list[1].Alias != "b" {
		t.Fatalf("List() = %+v", list)
	}

	list[0].Alias = "mutated"
	if svc.List()[0].Alias != "a" {
		t.Error("List() must return a copy")
	}
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.json")

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	_ = svc.Add("keep", "Label")
	_ = svc.Close()

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	list := reopened.List()
	if len(list) != 1 || list[0].Alias != "keep" || list[0].DisplayName() != "Label" {
		t.Errorf("reloaded bookmarks = %+v", list)
	}
}

func TestFileFormat(t *testing.T) {
	svc, path := newTestService(t)
	_ = svc.Add("promo", "")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("file is not valid JSON: %v", err)
	}
	if f.Version != 1 || len(f.Bookmarks) != 1 || f.Bookmarks[0].Alias != "promo" {
		t.Errorf("file = %+v", f)
	}
	if f.Bookmarks[0].AddedAt.IsZero() {
		t.Error("addedAt should be set")
	}
}

func TestWatchFileChange(t *testing.T) {
	svc, path := newTestService(t)
	waitForEvent(t, svc, EventLoaded)

	content := `{"bookmarks":[{"alias":"external","label":"From editor"},{"alias":"external"},{"alias":" "}]}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	waitForEvent(t, svc, EventChanged)

	list := svc.List()
	if len(list) != 1 || list[0].Alias != "external" {
		t.Errorf("List() after external edit = %+v", list)
	}
}

func TestWatchFileChange_Invalid(t *testing.T) {
	svc, path := newTestService(t)
	_ = svc.Add("kept", "")

	if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	waitForEvent(t, svc, EventError)

	if !svc.Has("kept") {
		t.Error("invalid file must not replace bookmarks in memory")
	}
}

func TestParseFile(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    int
		wantErr bool
	}{
		{"Empty", "", 0, false},
		{"Whitespace", "  \n", 0, false},
		{"NoBookmarks", `{}`, 0, false},
		{"Dedup", `{"bookmarks":[{"alias":"a"},{"alias":"a"},{"alias":"b"}]}`, 2, false},
		{"Invalid", `[`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFile([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSendEvent_Full(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 0; i < 150; i++ {
		svc.sendEvent(Event{Type: EventChanged})
	}
	if len(svc.eventChan) != cap(svc.eventChan) {
		t.Errorf("channel len = %d, want %d", len(svc.eventChan), cap(svc.eventChan))
	}
}

func TestClose_Twice(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
}
