package split

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FormatLine renders a record as "video:i1,i2,...,ik".
func FormatLine(r Record) string {
	var b strings.Builder
	b.WriteString(r.Video)
	b.WriteByte(':')
	for i, id := range r.Label {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// ParseLine parses a "video:i1,...,ik" line.
func ParseLine(line string) (Record, error) {
	idx := strings.LastIndexByte(line, ':')
	if idx <= 0 {
		return Record{}, fmt.Errorf("expected video:labels, got %q", line)
	}
	rec := Record{Video: line[:idx]}
	body := line[idx+1:]
	if body == "" {
		return Record{}, fmt.Errorf("%s: empty label", rec.Video)
	}
	for _, field := range strings.Split(body, ",") {
		id, err := strconv.Atoi(field)
		if err != nil || id < 0 {
			return Record{}, fmt.Errorf("%s: invalid label index %q", rec.Video, field)
		}
		rec.Label = append(rec.Label, id)
	}
	return rec, nil
}

// Write writes one line per record.
func Write(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := bw.WriteString(FormatLine(r) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read parses every non-empty line of r.
func Read(r io.Reader) ([]Record, error) {
	var records []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		rec, err := ParseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// ReadFile parses a split or label list file.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// FileName returns the output file name of a split.
func FileName(n Name) string {
	return string(n) + ".txt"
}

// WriteDir writes one file per split into dir, creating dir if needed.
// Returns the written paths in Names order.
func WriteDir(dir string, res *Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	paths := make([]string, 0, len(Names))
	for _, n := range Names {
		path := filepath.Join(dir, FileName(n))
		if err := writeFile(path, res.Get(n)); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
