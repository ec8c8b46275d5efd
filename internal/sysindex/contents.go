// Package sysindex maps file paths to the Debian packages that install
// them, using the Contents-<arch>.gz indices published by Debian mirrors.
package sysindex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ErrMissingHeader is returned when a Contents file expected to carry a
// "FILE LOCATION" table header has none.
var ErrMissingHeader = errors.New("invalid Contents file without FILE/LOCATION header")

// Index maps a key (a path without leading slash, or a package name) to
// its values in order of appearance.
type Index map[string][]string

// Merge appends the values of other to idx.
func (idx Index) Merge(other Index) {
	for k, v := range other {
		idx[k] = append(idx[k], v...)
	}
}

// ParseContents reads a gzip-compressed Contents file and returns the
// packages of each path and the paths of each package.
//
// Each line holds a path, whitespace and a comma-separated list of
// qualified package names ([[area/]section/]name); only the bare name is
// kept. With hasHeader, lines are skipped until the "FILE LOCATION"
// header row as Ubuntu mirrors publish them.
func ParseContents(r io.Reader, hasHeader bool) (byPath, byPackage Index, err error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("opening contents stream: %w", err)
	}
	defer func() { _ = zr.Close() }()

	byPath = make(Index)
	byPackage = make(Index)
	inTable := !hasHeader

	sc := bufio.NewScanner(zr)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		path, packages := splitLine(sc.Text())
		if !inTable {
			if path == "FILE" && packages == "LOCATION" {
				inTable = true
			}
			continue
		}
		if path == "" || packages == "" {
			continue
		}
		for _, qualified := range strings.Split(packages, ",") {
			name := qualified
			if i := strings.LastIndex(qualified, "/"); i >= 0 {
				name = qualified[i+1:]
			}
			byPath[path] = append(byPath[path], name)
			byPackage[name] = append(byPackage[name], path)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading contents: %w", err)
	}
	if !inTable {
		return nil, nil, ErrMissingHeader
	}
	return byPath, byPackage, nil
}

// splitLine splits a Contents line at its last space. Paths may contain
// spaces; package lists never do.
func splitLine(line string) (path, packages string) {
	line = strings.TrimSpace(line)
	i := strings.LastIndex(line, " ")
	if i < 0 {
		return "", line
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
}

// ParseContentsFile is ParseContents over a file on disk and only returns
// the packages of each path.
func ParseContentsFile(path string, hasHeader bool) (Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	byPath, _, err := ParseContents(f, hasHeader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return byPath, nil
}
