// Package textrec reads and rewrites line-oriented key=value record files.
// A file is a sequence of records separated by blank lines; each record is
// a run of lines, typically "key=value" but free-form metadata lines are
// tolerated and preserved by rewrites.
package textrec

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const filePerm = 0o644

// Line is one raw file line. Key and Value are populated only when the
// line splits as key=value; Raw always holds the original text.
type Line struct {
	Raw   string
	Key   string
	Value string
}

// Record is one blank-line-delimited block of lines.
type Record struct {
	Lines []Line
}

// Get returns the value of the first line with the given key.
func (r Record) Get(key string) (string, bool) {
	for _, line := range r.Lines {
		if line.Key == key {
			return line.Value, true
		}
	}
	return "", false
}

// File is the parsed image of one record file.
type File struct {
	Records []Record
}

// Parse reads records from r until EOF.
func Parse(r io.Reader) (*File, error) {
	scanner := bufio.NewScanner(r)
	var (
		file    File
		current *Record
	)
	for scanner.Scan() {
		raw := scanner.Text()
		if strings.TrimSpace(raw) == "" {
			current = nil
			continue
		}
		if current == nil {
			file.Records = append(file.Records, Record{})
			current = &file.Records[len(file.Records)-1]
		}
		line := Line{Raw: raw}
		if key, value, ok := strings.Cut(raw, "="); ok {
			line.Key = strings.TrimSpace(key)
			line.Value = strings.TrimSpace(value)
		}
		current.Lines = append(current.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning records: %w", err)
	}
	return &file, nil
}

// Load parses the record file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// RewriteValues replaces the value of targetKey inside record blocks whose
// most recent idKey line matches an entry in values. Every other line,
// including free-form metadata, passes through byte for byte. The result
// replaces path atomically via a temp file and rename.
func RewriteValues(path, idKey, targetKey string, values map[int]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	lines := strings.Split(string(data), "\n")
	tracked := false
	var trackedID int

	for i, raw := range lines {
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		switch key {
		case idKey:
			id, convErr := strconv.Atoi(strings.TrimSpace(value))
			if convErr != nil {
				tracked = false
				continue
			}
			_, tracked = values[id]
			trackedID = id
		case targetKey:
			if tracked {
				lines[i] = fmt.Sprintf("%s=%s", targetKey, values[trackedID])
			}
		}
	}

	return WriteFileAtomic(path, []byte(strings.Join(lines, "\n")), filePerm)
}

// WriteFileAtomic writes data to path through a temp file in the same
// directory followed by a rename, so an interrupted write never leaves a
// half-written file at path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// AppendFile opens path in append mode, writes data and closes within the
// call. The file is created when absent.
func AppendFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
