package fetcher

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-ingest/internal/model"
)

// Entry is one parsed record with its 1-based source line.
type Entry struct {
	Line   int
	Record model.RawRecord
}

// LineError records a line that could not be parsed even after repair.
type LineError struct {
	Line int
	Err  error
}

// ParseResult is the outcome of ParseNDJSON.
type ParseResult struct {
	Entries []Entry
	// Skipped counts non-blank lines that do not start with '{' or '['.
	Skipped int
	Errors  []LineError
}

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_$][A-Za-z0-9_$-]*)\s*:`)
)

// ParseNDJSON splits body into lines and decodes each independently. A line
// holding a JSON array contributes each of its object elements.
func ParseNDJSON(body []byte) ParseResult {
	var res ParseResult
	for i, raw := range strings.Split(string(body), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if line[0] != '{' && line[0] != '[' {
			res.Skipped++
			continue
		}

		lineNo := i + 1
		records, err := decodeLine(line)
		if err != nil {
			res.Errors = append(res.Errors, LineError{Line: lineNo, Err: err})
			continue
		}
		for _, r := range records {
			res.Entries = append(res.Entries, Entry{Line: lineNo, Record: r})
		}
	}
	return res
}

func decodeLine(line string) ([]model.RawRecord, error) {
	v, err := decodeStrict(line)
	if err != nil {
		repaired := repairJSON(line)
		var rerr error
		if v, rerr = decodeStrict(repaired); rerr != nil {
			return nil, eris.Wrap(err, "ndjson: decode line")
		}
	}

	switch t := v.(type) {
	case map[string]any:
		return []model.RawRecord{t}, nil
	case []any:
		var out []model.RawRecord
		for _, el := range t {
			if m, ok := el.(map[string]any); ok {
				out = append(out, m)
			}
		}
		if len(out) == 0 {
			return nil, eris.New("ndjson: array holds no objects")
		}
		return out, nil
	default:
		return nil, eris.Errorf("ndjson: unexpected value %T", v)
	}
}

func decodeStrict(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, eris.New("trailing data after value")
	}
	return v, nil
}

// repairJSON fixes the two most common export defects: trailing commas and
// unquoted object keys.
func repairJSON(s string) string {
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	return bareKeyRe.ReplaceAllString(s, `$1"$2":`)
}
