package storage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
)

// File a data file found under the data directory.
type File struct {
	Name string
	// Path is relative to the data directory.
	Path string
	Size int64
}

func dataFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".parquet", ".json":
		return true
	}
	return false
}

// ListFiles walks dir for data files. A missing dir yields no files.
func ListFiles(dir string) ([]File, error) {
	if dir == "" {
		return nil, nil
	}
	var files []File
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !dataFile(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, File{Name: d.Name(), Path: filepath.ToSlash(rel), Size: info.Size()})
		return nil
	})
	return files, err
}

// Resolve maps a path relative to dir onto a regular file inside dir.
// Paths cannot climb out of dir.
func Resolve(dir, name string) (string, bool) {
	if dir == "" || name == "" {
		return "", false
	}
	path := filepath.Join(dir, filepath.Clean("/"+filepath.FromSlash(name)))
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

// ReadFile loads a csv file or a json file holding an array or one object
// per line. csv values stay strings.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(f)
	case ".json":
		return readJSON(f)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
}

func readCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, err
	}
	t := &Table{Columns: header}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = nil
			}
		}
		t.Rows = append(t.Rows, row)
	}
}

func readJSON(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := sonic.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("invalid json file: %w", err)
		}
	} else {
		sc := bufio.NewScanner(bytes.NewReader(data))
		sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
		for sc.Scan() {
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}
			var row map[string]any
			if err := sonic.Unmarshal(line, &row); err != nil {
				return nil, fmt.Errorf("invalid json line %d: %w", len(rows)+1, err)
			}
			rows = append(rows, row)
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]struct{})
	var columns []string
	for _, row := range rows {
		for k := range row {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)
	return &Table{Columns: columns, Rows: rows}, nil
}
