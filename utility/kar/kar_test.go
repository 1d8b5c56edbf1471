// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/devblok/korugl/utility/kar"
)

var (
	testString1 = "idunvovkjnreovmegihjbrqlkmfrjnb"
	testString2 = "idunvovkjnreovmsdvwrvnervnreegihjbrqlkmfrjnb"
)

func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	builder, err := kar.NewBuilder(kar.Header{
		Author:      "devblok",
		DateCreated: time.Now().Unix(),
		Version:     1,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer builder.Close()

	for name, contents := range files {
		if err := builder.Add(name, strings.NewReader(contents)); err != nil {
			t.Fatal(err)
		}
	}

	buf := bytes.NewBuffer([]byte{})
	written, err := builder.WriteTo(buf)
	if err != nil {
		t.Fatal(err)
	}
	if written != int64(buf.Len()) {
		t.Fatalf("reported %d bytes written, buffer holds %d", written, buf.Len())
	}
	return buf.Bytes()
}

func TestCreateAndRead(t *testing.T) {
	data := buildArchive(t, map[string]string{"test": testString1, "test2": testString2})

	ar, err := kar.Open(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	f, err := ar.Open("test2")
	if err != nil {
		t.Fatal(err)
	}
	if f.Size() != int64(len(testString2)) {
		t.Errorf("incorrect size: %d", f.Size())
	}

	result := bytes.NewBuffer([]byte{})
	if _, err := result.ReadFrom(f); err != nil {
		t.Fatal(err)
	}
	if result.String() != testString2 {
		t.Error("test string does not match up")
	}
}

func TestCreateAndReadAll(t *testing.T) {
	data := buildArchive(t, map[string]string{"test": testString1, "test2": testString2, "empty": ""})

	ar, err := kar.Open(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	for name, expected := range map[string]string{"test": testString1, "test2": testString2, "empty": ""} {
		f, err := ar.ReadAll(name)
		if err != nil {
			t.Fatal(err)
		}
		if string(f) != expected {
			t.Errorf("%s: test string does not match up", name)
		}
	}

	if names := ar.Names(); strings.Join(names, ",") != "empty,test,test2" {
		t.Errorf("incorrect names: %v", names)
	}
	if ar.Header().Author != "devblok" {
		t.Errorf("incorrect author: %s", ar.Header().Author)
	}
}

func TestMissingFile(t *testing.T) {
	ar, err := kar.Open(bytes.NewReader(buildArchive(t, map[string]string{"test": testString1})))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ar.ReadAll("nothing"); !errors.Is(err, kar.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNotAnArchive(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("PK\x03\x04 not it"), []byte("KAR\x00\x05")} {
		if _, err := kar.Open(bytes.NewReader(data)); !errors.Is(err, kar.ErrFileFormat) {
			t.Errorf("expected ErrFileFormat for %q, got %v", data, err)
		}
	}
}
