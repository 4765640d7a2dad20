package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/purchase-orders/internal/dataset"
)

// StructuredStrategy decodes a JSON array of records framed by exactly one
// extraneous line before and after it (a code fence, usually).
type StructuredStrategy struct{}

func (StructuredStrategy) Name() string { return "structured" }

func (StructuredStrategy) Parse(text string) (*dataset.Table, error) {
	lines := splitLines(text)
	if len(lines) < 3 {
		return nil, errors.New("structured body needs a wrapper line on each side")
	}
	body := []byte(strings.Join(lines[1:len(lines)-1], "\n"))
	if err := validateRecords(body); err != nil {
		return nil, err
	}
	records, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}

	t := dataset.NewTable()
	for _, rec := range records {
		for _, k := range rec.keys {
			t.AddColumn(k)
		}
	}
	for _, rec := range records {
		row := make(dataset.Row, len(t.Columns))
		for _, c := range t.Columns {
			row[c] = dataset.Null()
		}
		for i, k := range rec.keys {
			row[k] = rec.values[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

type orderedRecord struct {
	keys   []string
	values []dataset.Value
}

// decodeRecords walks the token stream so that key order survives decoding.
func decodeRecords(body []byte) ([]orderedRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	var out []orderedRecord
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		var rec orderedRecord
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("decode key: %w", err)
			}
			key, ok := tok.(string)
			if !ok {
				return nil, fmt.Errorf("decode key: unexpected %v", tok)
			}
			var raw any
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
			v, err := scalarValue(raw)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
			rec.keys = append(rec.keys, key)
			rec.values = append(rec.values, v)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return out, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("expected %q: %w", want, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func scalarValue(raw any) (dataset.Value, error) {
	switch v := raw.(type) {
	case nil:
		return dataset.Null(), nil
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return dataset.Text(s), nil
		}
		return dataset.Null(), nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return dataset.Null(), err
		}
		return dataset.Number(d), nil
	case bool:
		return dataset.Text(strconv.FormatBool(v)), nil
	}
	return dataset.Null(), fmt.Errorf("unsupported value %T", raw)
}
