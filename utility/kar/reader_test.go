// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devblok/korugl/utility/kar"
)

func writeArchive(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "opentest.kar")
	data := buildArchive(t, map[string]string{
		"test/test1.txt": "this is a test",
		"test/test2.txt": "this is another test",
	})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenFile(t *testing.T) {
	ar, err := kar.OpenFile(writeArchive(t))
	if err != nil {
		t.Fatal(err)
	}
	defer ar.Close()

	for name, expected := range map[string]string{
		"test/test1.txt": "this is a test",
		"test/test2.txt": "this is another test",
	} {
		f, err := ar.ReadAll(name)
		if err != nil {
			t.Fatal(err)
		}
		if string(f) != expected {
			t.Errorf("%s: result is not expected value", name)
		}
	}
}

func TestOpenFileMissing(t *testing.T) {
	if _, err := kar.OpenFile(filepath.Join(t.TempDir(), "missing.kar")); err == nil {
		t.Error("opened a missing file")
	}
}

func TestOpenFromOS(t *testing.T) {
	r, err := os.Open(writeArchive(t))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ar, err := kar.Open(r)
	if err != nil {
		t.Fatal(err)
	}
	f, err := ar.Open("test/test1.txt")
	if err != nil {
		t.Fatal(err)
	}
	if f.Name() != "test/test1.txt" {
		t.Errorf("incorrect name: %s", f.Name())
	}
}
