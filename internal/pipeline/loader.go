package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"

	"github.com/perturbia/perturbia/internal/model"
)

// LoadResult carries the usable statements of an input file together with
// the indices of records that had to be skipped
type LoadResult struct {
	Inputs    []model.StatementInput
	Malformed []int // Indices of skipped records, in input order
	Total     int   // Records seen, valid or not
}

// Load reads statement records from path. The file holds either a JSON
// array of {"statement": ...} objects or one such object per line; the
// first non-space byte decides which.
func Load(path string, stripHTML bool) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	return Parse(data, stripHTML)
}

// Parse decodes input bytes into statement records. A record that is not an
// object, lacks a "statement" key, or carries a non-string value is counted
// and skipped; the batch never fails on one bad record.
func Parse(data []byte, stripHTML bool) (*LoadResult, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return &LoadResult{}, nil
	}
	if trimmed[0] == '[' {
		return parseArray(trimmed, stripHTML)
	}
	return parseLines(data, stripHTML)
}

func parseArray(data []byte, stripHTML bool) (*LoadResult, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, "parse input array")
	}

	out := &LoadResult{}
	for _, raw := range records {
		out.add(raw, stripHTML)
	}
	return out, nil
}

func parseLines(data []byte, stripHTML bool) (*LoadResult, error) {
	out := &LoadResult{}
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		out.add(line, stripHTML)
	}
	return out, nil
}

// add decodes one raw record into the result, tracking malformed indices
func (r *LoadResult) add(raw []byte, stripHTML bool) {
	index := r.Total
	r.Total++

	statement, ok := decodeStatement(raw)
	if !ok {
		r.Malformed = append(r.Malformed, index)
		return
	}
	if stripHTML {
		statement = StripHTML(statement)
	}
	r.Inputs = append(r.Inputs, model.StatementInput{Statement: statement})
}

// decodeStatement accepts only an object whose "statement" key holds a
// string. An empty string is valid; the engine passes it through.
func decodeStatement(raw []byte) (string, bool) {
	var record map[string]json.RawMessage
	if err := json.Unmarshal(raw, &record); err != nil {
		return "", false
	}
	value, ok := record["statement"]
	if !ok {
		return "", false
	}
	var statement string
	if err := json.Unmarshal(value, &statement); err != nil {
		return "", false
	}
	return statement, true
}

// StripHTML extracts the visible text of a statement carrying markup,
// dropping script, style and similar non-content subtrees. Statements
// without any tags come back unchanged.
func StripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if buf.Len() > 0 {
					buf.WriteByte(' ')
				}
				buf.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return buf.String()
}
