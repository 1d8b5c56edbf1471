// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"golang.org/x/exp/mmap"
)

// File is an Archive read from a memory mapped file
type File struct {
	*Archive

	mapped *mmap.ReaderAt
}

// OpenFile memory maps the archive at path and opens it
func OpenFile(path string) (*File, error) {
	mapped, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	ar, err := Open(mapped)
	if err != nil {
		mapped.Close()
		return nil, err
	}
	return &File{
		Archive: ar,
		mapped:  mapped,
	}, nil
}

// Close unmaps the file. Readers opened from it must not be used after.
func (f *File) Close() error {
	return f.mapped.Close()
}
