package loader

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json")
	if err := os.WriteFile(path, []byte(`{"model":"gpt","output":"héllo"}`), 0644); err != nil {
		t.Fatal(err)
	}

	rec, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if rec["model"] != "gpt" {
		t.Errorf("expected model gpt, got %v", rec["model"])
	}
	if rec["output"] != "héllo" {
		t.Errorf("expected output héllo, got %v", rec["output"])
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist in chain, got %v", err)
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	if _, err := Decode([]byte("not json at all")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Decode([]byte(`{"model":`)); err == nil {
		t.Error("expected parse error for truncated object")
	}
}

func TestDecodeNonObject(t *testing.T) {
	for _, in := range []string{`[1,2]`, `"text"`, `42`, `null`} {
		_, err := Decode([]byte(in))
		if !errors.Is(err, ErrNotObject) {
			t.Errorf("%s: expected ErrNotObject, got %v", in, err)
		}
	}
}

func TestDecodeKeepsNumberLiterals(t *testing.T) {
	rec, err := Decode([]byte(`{"timestamp": 1713456789012345678, "model": 1.0}`))
	if err != nil {
		t.Fatal(err)
	}
	ts, ok := rec["timestamp"].(json.Number)
	if !ok || ts.String() != "1713456789012345678" {
		t.Errorf("expected exact integer literal, got %#v", rec["timestamp"])
	}
	m, ok := rec["model"].(json.Number)
	if !ok || m.String() != "1.0" {
		t.Errorf("expected float literal 1.0, got %#v", rec["model"])
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	_, err := Decode([]byte("{\"output\":\"ab\xff\xfe\"}"))
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestDecodeTrailingData(t *testing.T) {
	if _, err := Decode([]byte(`{"model":"a"} {"model":"b"}`)); err == nil {
		t.Error("expected error for trailing data")
	}
	if _, err := Decode([]byte("{\"model\":\"a\"}\n\n")); err != nil {
		t.Errorf("trailing whitespace should be accepted, got %v", err)
	}
}
