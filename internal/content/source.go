// Package content turns narrative records into streamable fragments.
package content

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record is one raw narrative entry. A focal word may be marked with braces,
// e.g. "The {cat} sat", and Variants holds alternates keyed by kind.
type Record struct {
	Text       string            `yaml:"text"`
	Variants   map[string]string `yaml:"variants,omitempty"`
	Checkpoint bool              `yaml:"checkpoint,omitempty"`
}

// Source yields ordered records. The position in the slice is the record index.
type Source interface {
	Records() ([]Record, error)
}

// Records is an in-memory Source.
type Records []Record

// Records implements Source.
func (r Records) Records() ([]Record, error) {
	return r, nil
}

// Document is the YAML story file layout.
type Document struct {
	Title     string   `yaml:"title"`
	Fragments []Record `yaml:"fragments"`
}

// YAMLSource reads a YAML story file.
type YAMLSource struct {
	Path string
}

// Records implements Source.
func (s YAMLSource) Records() ([]Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}
	return doc.Fragments, nil
}

// TextSource reads plain text with one fragment per line. A blank line ends a
// paragraph, and a line starting with "#" marks the next fragment as a checkpoint.
type TextSource struct {
	Path string
}

// Records implements Source.
func (s TextSource) Records() ([]Record, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open content: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only content.
			_ = cerr
		}
	}()

	var records []Record
	checkpoint := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			if n := len(records); n > 0 && !strings.HasSuffix(records[n-1].Text, "\n") {
				records[n-1].Text += "\n"
			}
		case strings.HasPrefix(line, "#"):
			checkpoint = true
		default:
			records = append(records, Record{Text: line, Checkpoint: checkpoint})
			checkpoint = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	return records, nil
}

// SourceFor picks a Source by file extension.
func SourceFor(path string) Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAMLSource{Path: path}
	default:
		return TextSource{Path: path}
	}
}
