package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ClassEntry is one row of the lipid class key file.
type ClassEntry struct {
	Key      string
	Class    string
	Subclass string
	Fields   map[string]string
}

// ClassLookup maps a row's Class value to its class and subclass names.
type ClassLookup struct {
	entries map[string]ClassEntry
}

// NewClassLookup creates an empty lookup
func NewClassLookup() *ClassLookup {
	return &ClassLookup{
		entries: make(map[string]ClassEntry),
	}
}

// LoadClassLookup reads a class key file from disk.
func LoadClassLookup(path string) (*ClassLookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class lookup: %w", err)
	}
	defer f.Close()

	lookup := NewClassLookup()
	if err := lookup.LoadFromCSV(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lookup, nil
}

// LoadFromCSV loads entries from a comma-delimited file whose header names
// (lower-cased on load) include key, class and subclass.
func (l *ClassLookup) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	var cols []string
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		line = strings.TrimRight(line, ",")
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if cols == nil {
			cols = make([]string, len(parts))
			for i, p := range parts {
				cols[i] = strings.ToLower(strings.TrimSpace(p))
			}
			if !contains(cols, "key") || !contains(cols, "class") || !contains(cols, "subclass") {
				return fmt.Errorf("line %d: header must contain key, class and subclass columns", lineNum)
			}
			continue
		}

		fields := make(map[string]string, len(cols))
		for i, col := range cols {
			if i < len(parts) {
				fields[col] = strings.TrimSpace(parts[i])
			} else {
				fields[col] = ""
			}
		}
		l.Add(ClassEntry{
			Key:      fields["key"],
			Class:    fields["class"],
			Subclass: fields["subclass"],
			Fields:   fields,
		})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// Add adds or replaces an entry
func (l *ClassLookup) Add(e ClassEntry) {
	l.entries[e.Key] = e
}

// Get returns the entry for a class key.
func (l *ClassLookup) Get(key string) (ClassEntry, bool) {
	e, ok := l.entries[key]
	return e, ok
}

// Resolve is Get with ErrMissingLookupKey for unknown keys.
func (l *ClassLookup) Resolve(key string) (ClassEntry, error) {
	e, ok := l.entries[key]
	if !ok {
		return ClassEntry{}, fmt.Errorf("%q: %w", key, ErrMissingLookupKey)
	}
	return e, nil
}

// Len returns the number of entries.
func (l *ClassLookup) Len() int {
	return len(l.entries)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
