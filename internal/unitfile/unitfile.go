// Package unitfile reads systemd-style "[Section]\nKey=Value" unit files,
// the on-disk format every CFTI unit (.jig, .logger, .interface, .trigger,
// .test, .scenario) is written in (cfti::unitfile::UnitFile, originally a
// thin wrapper around the systemd_parser crate). Here the equivalent
// wrapper sits on top of github.com/coreos/go-systemd/v22/unit, a
// dependency the teacher already carries for socket activation and that we
// repurpose here for its unit-file grammar instead.
package unitfile

import (
	"fmt"
	"os"

	"github.com/coreos/go-systemd/v22/unit"
)

// UnitFile is a parsed unit file, grouped by section then by key. Unlike a
// plain map, insertion order within a key's value list is preserved, which
// matters for keys that legitimately repeat (e.g. a test's [Exec] ordering).
type UnitFile struct {
	path     string
	sections map[string][]unit.UnitOption
}

// Read loads and parses path. Distinguishes between the file simply not
// existing (*NotFoundError), an I/O failure reading it (*ReadError), and a
// malformed body (*ParseError) — spec.md's three-valued loader result treats
// the first as "skip silently" and the latter two as "skip with a warning".
func Read(path string) (*UnitFile, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	opts, err := unit.Deserialize(f)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	uf := &UnitFile{path: path, sections: map[string][]unit.UnitOption{}}
	for _, opt := range opts {
		uf.sections[opt.Section] = append(uf.sections[opt.Section], *opt)
	}
	return uf, nil
}

// Path returns the file this UnitFile was parsed from.
func (u *UnitFile) Path() string { return u.path }

// HasSection reports whether section appears at all, even empty.
func (u *UnitFile) HasSection(section string) bool {
	_, ok := u.sections[section]
	return ok
}

// Get returns the first value for key within section, and whether it was present.
func (u *UnitFile) Get(section, key string) (string, bool) {
	for _, opt := range u.sections[section] {
		if opt.Name == key {
			return opt.Value, true
		}
	}
	return "", false
}

// GetAll returns every value for key within section, in file order. Used for
// repeatable keys such as a test's [Exec] argument list (spec.md §3's
// ExtraArgs supplement).
func (u *UnitFile) GetAll(section, key string) []string {
	var vals []string
	for _, opt := range u.sections[section] {
		if opt.Name == key {
			vals = append(vals, opt.Value)
		}
	}
	return vals
}

// Keys returns the distinct keys present in section, in file order.
func (u *UnitFile) Keys(section string) []string {
	seen := map[string]bool{}
	var keys []string
	for _, opt := range u.sections[section] {
		if !seen[opt.Name] {
			seen[opt.Name] = true
			keys = append(keys, opt.Name)
		}
	}
	return keys
}

// NotFoundError means the path does not exist at all.
type NotFoundError struct{ Path string }

func (e *NotFoundError) Error() string { return fmt.Sprintf("unit file not found: %s", e.Path) }

// ReadError means the path exists but could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("could not read unit file %s: %v", e.Path, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// ParseError means the file was read but its contents are not valid
// systemd-unit grammar.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("could not parse unit file %s: %v", e.Path, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }
