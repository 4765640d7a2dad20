// Package merge stitches the pages of one document into a single ordered dataset.
package merge

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/joseph-ayodele/purchase-orders/constants"
	"github.com/joseph-ayodele/purchase-orders/internal/common"
	"github.com/joseph-ayodele/purchase-orders/internal/dataset"
	"github.com/joseph-ayodele/purchase-orders/internal/extract"
)

// Config controls header propagation and which columns count as artifacts.
type Config struct {
	HeaderPolicy constants.HeaderPolicy
	// ArtifactColumns are dropped after propagation. A trailing '*' matches by prefix.
	ArtifactColumns []string
}

// DefaultConfig mirrors common.DefaultConfig().Pipeline.
func DefaultConfig() Config {
	return Config{
		HeaderPolicy:    constants.HeaderPolicyFirstRow,
		ArtifactColumns: append([]string(nil), constants.DefaultArtifactColumns...),
	}
}

// Merger is stateless apart from its configuration.
type Merger struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.HeaderPolicy.Valid() {
		cfg.HeaderPolicy = constants.HeaderPolicyFirstRow
	}
	return &Merger{cfg: cfg, logger: logger}
}

// Merge combines page results, given in page order, into one dataset. It returns an
// error wrapping common.ErrDocumentEmpty when no row survives.
func (m *Merger) Merge(ctx context.Context, pages []extract.PageResult) (*dataset.Table, error) {
	logger := common.LoggerFromContext(ctx, m.logger)

	t := concat(pages)
	if t.Len() == 0 {
		logger.Warn("merge.empty", "pages", len(pages), "stage", "concat")
		return nil, emptyDocument("every page is empty or malformed")
	}
	total := t.Len()

	ruleRows := dropRuleRows(t)
	if t.Len() == 0 {
		logger.Warn("merge.empty", "pages", len(pages), "stage", "rule_rows")
		return nil, emptyDocument("only separator rows found")
	}

	badLines := sortByLine(t)
	m.propagateHeader(t)
	dropped := t.DropColumns(m.isArtifact)
	incomplete := dropIncomplete(t)
	if t.Len() == 0 {
		logger.Warn("merge.empty", "pages", len(pages), "stage", "completeness")
		return nil, emptyDocument("no row has a style code or line number")
	}
	reorder(t)

	logger.Info("merge.ok",
		"pages", len(pages),
		"rows_in", total,
		"rows_out", t.Len(),
		"rule_rows", ruleRows,
		"incomplete_rows", incomplete,
		"bad_line_numbers", badLines,
		"dropped_columns", dropped,
	)
	return t, nil
}

func emptyDocument(msg string) error {
	return common.NewAppError("DOCUMENT_EMPTY", msg, common.ErrDocumentEmpty)
}

// concat appends every page's rows in order, tagging each row with its page source.
func concat(pages []extract.PageResult) *dataset.Table {
	t := dataset.NewTable()
	for _, p := range pages {
		if p.Table == nil {
			continue
		}
		for _, c := range p.Table.Columns {
			t.AddColumn(c)
		}
		source := p.Source
		if source == "" {
			source = fmt.Sprintf("page_%d", p.Page)
		}
		for _, r := range p.Table.Rows {
			row := r.Clone()
			row[constants.ColSourceFile] = dataset.Text(source)
			t.Rows = append(t.Rows, row)
		}
	}
	if t.Len() > 0 {
		t.AddColumn(constants.ColSourceFile)
	}
	return t
}

func dropRuleRows(t *dataset.Table) int {
	kept := t.Rows[:0]
	for _, r := range t.Rows {
		if !r.ContainsText(constants.RuleArtifact) {
			kept = append(kept, r)
		}
	}
	n := len(t.Rows) - len(kept)
	t.Rows = kept
	return n
}

// sortByLine coerces Line to a number and stable-sorts ascending with nulls last.
// It returns how many Line cells could not be coerced.
func sortByLine(t *dataset.Table) int {
	t.AddColumn(constants.ColLine)
	bad := 0
	for _, r := range t.Rows {
		v, ok := r.Get(constants.ColLine).ToNumber()
		if !ok {
			bad++
		}
		r[constants.ColLine] = v
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, aok := t.Rows[i].Get(constants.ColLine).Decimal()
		b, bok := t.Rows[j].Get(constants.ColLine).Decimal()
		switch {
		case aok && bok:
			return a.LessThan(b)
		default:
			return aok && !bok
		}
	})
	return bad
}

// propagateHeader broadcasts the document-level fields to every row.
func (m *Merger) propagateHeader(t *dataset.Table) {
	for _, col := range constants.DocumentColumns {
		t.AddColumn(col)
		v := t.Rows[0].Get(col)
		if m.cfg.HeaderPolicy == constants.HeaderPolicyFirstNonBlank {
			for _, r := range t.Rows {
				if c := r.Get(col); !c.IsBlank() {
					v = c
					break
				}
			}
		}
		for _, r := range t.Rows {
			r[col] = v
		}
	}
}

func (m *Merger) isArtifact(col string) bool {
	for _, pattern := range m.cfg.ArtifactColumns {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(col, prefix) {
				return true
			}
			continue
		}
		if col == pattern {
			return true
		}
	}
	return false
}

// dropIncomplete removes rows that have neither a style code nor a line number.
func dropIncomplete(t *dataset.Table) int {
	kept := t.Rows[:0]
	for _, r := range t.Rows {
		if r.Get(constants.ColStyleCode).IsBlank() && r.Get(constants.ColLine).IsNull() {
			continue
		}
		kept = append(kept, r)
	}
	n := len(t.Rows) - len(kept)
	t.Rows = kept
	return n
}

// reorder puts canonical columns first, adding missing ones as null, then the rest.
func reorder(t *dataset.Table) {
	cols := make([]string, 0, len(constants.CanonicalColumns)+len(t.Columns))
	cols = append(cols, constants.CanonicalColumns...)
	for _, c := range t.Columns {
		if !constants.IsCanonicalColumn(c) {
			cols = append(cols, c)
		}
	}
	for _, r := range t.Rows {
		for _, c := range constants.CanonicalColumns {
			if _, ok := r[c]; !ok {
				r[c] = dataset.Null()
			}
		}
	}
	t.Columns = cols
}
