package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/purchase-orders/internal/dataset"
)

// ErrStructure marks a fragment that is not a vertical-bar table. It triggers the
// next strategy rather than failing the page on its own.
var ErrStructure = errors.New("not a delimited table")

var ruleCell = regexp.MustCompile(`^-+$`)

const (
	delimiter        = '|'
	escapedDelimiter = `\|`
)

// TabularStrategy parses vertical-bar tables. The first non-blank line is the header
// and must be delimited; undelimited lines after it are ignored.
type TabularStrategy struct{}

func (TabularStrategy) Name() string { return "tabular" }

func (TabularStrategy) Parse(text string) (*dataset.Table, error) {
	lines := splitLines(text)

	header := -1
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			header = i
			break
		}
	}
	if header < 0 || !hasDelimiter(lines[header]) {
		return nil, fmt.Errorf("%w: first line has no %q delimiter", ErrStructure, delimiter)
	}

	columns := headerNames(splitCells(lines[header]))
	t := dataset.NewTable(columns...)
	for n, l := range lines[header+1:] {
		if !hasDelimiter(l) {
			continue
		}
		cells := splitCells(l)
		if len(cells) != len(columns) {
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				ErrStructure, header+n+2, len(cells), len(columns))
		}
		if isRuleRow(cells) {
			continue
		}
		row := make(dataset.Row, len(columns))
		for i, c := range columns {
			if v := strings.TrimSpace(cells[i]); v != "" {
				row[c] = dataset.Text(v)
			} else {
				row[c] = dataset.Null()
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// splitLines splits like a line reader: a single trailing newline does not yield an
// empty last line, and carriage returns are dropped.
func splitLines(text string) []string {
	text = strings.TrimSuffix(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func hasDelimiter(line string) bool {
	return strings.Count(line, string(delimiter)) > strings.Count(line, escapedDelimiter)
}

// splitCells splits on unescaped bars and unescapes the rest.
func splitCells(line string) []string {
	var (
		cells []string
		cur   strings.Builder
	)
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '\\' && i+1 < len(line) && line[i+1] == delimiter:
			cur.WriteByte(delimiter)
			i++
		case line[i] == delimiter:
			cells = append(cells, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(line[i])
		}
	}
	return append(cells, cur.String())
}

// headerNames trims names and trailing rule dashes; blank names get a positional
// "Unnamed: <i>" name, which the merger later drops as an artifact.
func headerNames(cells []string) []string {
	out := make([]string, len(cells))
	seen := make(map[string]int, len(cells))
	for i, c := range cells {
		name := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(c), "-"))
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n := seen[name]; n > 0 {
			name = name + "." + strconv.Itoa(n)
		}
		seen[name]++
		out[i] = name
	}
	return out
}

// isRuleRow reports whether the first non-blank cell is a run of dashes.
func isRuleRow(cells []string) bool {
	for _, c := range cells {
		if c = strings.TrimSpace(c); c != "" {
			return ruleCell.MatchString(c)
		}
	}
	return false
}
