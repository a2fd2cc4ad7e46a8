package sourcemap

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/sourcemap.v1/base64vlq"
)

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// NoIndex marks an absent source or name index on a Mapping.
const NoIndex = -1

// Mapping relates one generated position to an original position.
// Lines are 1-based and columns 0-based on both sides.
type Mapping struct {
	GeneratedLine   int
	GeneratedColumn int

	// Source indexes Map.Sources; NoIndex when the generated position has
	// no original counterpart. The original fields are zero in that case.
	Source         int
	OriginalLine   int
	OriginalColumn int

	// Name indexes Map.Names; NoIndex when absent.
	Name int
}

// HasOriginal reports whether the record points into an original source.
func (m Mapping) HasOriginal() bool {
	return m.Source != NoIndex
}

// Table is an ordered list of mapping records, sorted by generated position.
type Table []Mapping

// Shift returns a copy of t with every generated line moved by delta.
// Generated columns and all original-side fields are left untouched.
func Shift(t Table, delta int) Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i, rec := range t {
		rec.GeneratedLine += delta
		out[i] = rec
	}
	return out
}

// DecodeError reports a malformed mappings field.
type DecodeError struct {
	Segment int
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid source map mappings at segment %d: %s", e.Segment, e.Message)
}

// Decode parses a v3 "mappings" string.
func Decode(mappings string) (Table, error) {
	var (
		t       Table
		line    = 1
		source  int
		origLn  int
		origCol int
		name    int
	)

	for _, group := range strings.Split(mappings, ";") {
		genCol := 0
		if group != "" {
			for _, seg := range strings.Split(group, ",") {
				if seg == "" {
					continue
				}
				fields, err := decodeSegment(seg)
				if err != nil {
					return nil, &DecodeError{Segment: len(t), Message: err.Error()}
				}

				genCol += fields[0]
				rec := Mapping{
					GeneratedLine:   line,
					GeneratedColumn: genCol,
					Source:          NoIndex,
					Name:            NoIndex,
				}

				switch len(fields) {
				case 1:
				case 4, 5:
					source += fields[1]
					origLn += fields[2]
					origCol += fields[3]
					rec.Source = source
					rec.OriginalLine = origLn + 1
					rec.OriginalColumn = origCol
					if len(fields) == 5 {
						name += fields[4]
						rec.Name = name
					}
					if source < 0 || (len(fields) == 5 && name < 0) {
						return nil, &DecodeError{Segment: len(t), Message: "negative index"}
					}
				default:
					return nil, &DecodeError{Segment: len(t), Message: fmt.Sprintf("segment has %d fields", len(fields))}
				}

				if rec.GeneratedColumn < 0 || rec.OriginalColumn < 0 || rec.OriginalLine < 0 {
					return nil, &DecodeError{Segment: len(t), Message: "negative position"}
				}
				t = append(t, rec)
			}
		}
		line++
	}

	return t, nil
}

// decodeSegment reads all values of one comma-separated segment.
// base64vlq reads unknown characters as zero, so they are rejected first.
func decodeSegment(seg string) ([]int, error) {
	if i := strings.IndexFunc(seg, func(r rune) bool { return !strings.ContainsRune(base64Digits, r) }); i >= 0 {
		return nil, fmt.Errorf("invalid base64 digit %q", seg[i])
	}

	r := strings.NewReader(seg)
	dec := base64vlq.NewDecoder(r)
	fields := make([]int, 0, 5)
	for r.Len() > 0 {
		v, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return nil, errors.New("truncated VLQ value")
		}
		if err != nil {
			return nil, err
		}
		fields = append(fields, v)
	}
	return fields, nil
}

// Encode renders t as a v3 "mappings" string. Records must be ordered by
// generated position and every generated line must be at least 1.
func Encode(t Table) (string, error) {
	var (
		b       strings.Builder
		line    = 1
		genCol  int
		source  int
		origLn  int
		origCol int
		name    int
		first   = true
	)
	enc := base64vlq.NewEncoder(&b)

	for i, rec := range t {
		if rec.GeneratedLine < 1 {
			return "", fmt.Errorf("mapping %d: generated line %d is before the first line", i, rec.GeneratedLine)
		}
		if rec.GeneratedLine < line {
			return "", fmt.Errorf("mapping %d: generated line %d is out of order", i, rec.GeneratedLine)
		}

		for line < rec.GeneratedLine {
			b.WriteByte(';')
			line++
			genCol = 0
			first = true
		}
		if rec.GeneratedColumn < genCol {
			return "", fmt.Errorf("mapping %d: generated column %d is out of order", i, rec.GeneratedColumn)
		}
		if !first {
			b.WriteByte(',')
		}
		first = false

		// strings.Builder never fails a write.
		_ = enc.Encode(rec.GeneratedColumn - genCol)
		genCol = rec.GeneratedColumn

		if !rec.HasOriginal() {
			continue
		}
		_ = enc.Encode(rec.Source - source)
		source = rec.Source
		_ = enc.Encode(rec.OriginalLine - 1 - origLn)
		origLn = rec.OriginalLine - 1
		_ = enc.Encode(rec.OriginalColumn - origCol)
		origCol = rec.OriginalColumn

		if rec.Name != NoIndex {
			_ = enc.Encode(rec.Name - name)
			name = rec.Name
		}
	}

	return b.String(), nil
}
