package storage

import (
	"path/filepath"
	"testing"
)

func TestStorePutGet(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"), "things")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	type thing struct {
		Name string
	}

	if err := s.Put("things", "a", thing{Name: "alpha"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got thing
	ok, err := s.Get("things", "a", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || got.Name != "alpha" {
		t.Errorf("Get = %+v, ok=%v, want alpha/true", got, ok)
	}

	var missing thing
	ok, err = s.Get("things", "missing", &missing)
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if ok {
		t.Error("Get missing key should return ok=false")
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s, err := Open(path, "things")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Put("things", "a", "value"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(path, "things")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	var got string
	ok, err := s2.Get("things", "a", &got)
	if err != nil || !ok || got != "value" {
		t.Errorf("after reopen: got=%q ok=%v err=%v, want value/true/nil", got, ok, err)
	}
}
