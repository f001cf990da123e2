package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Table — упорядоченный набор строк и список колонок, которые в нем реально есть.
// Таблицы неизменяемы после создания и пересобираются на каждый рендер.
type Table[R any] struct {
	Columns []string `json:"columns"`
	Rows    []R      `json:"rows"`
}

// NewTable собирает таблицу; nil-строки заменяются пустым слайсом, чтобы в JSON был [].
func NewTable[R any](columns []string, rows []R) Table[R] {
	if rows == nil {
		rows = []R{}
	}
	return Table[R]{Columns: slices.Clone(columns), Rows: rows}
}

func (t Table[R]) Len() int { return len(t.Rows) }

// MissingColumns возвращает обязательные колонки, которых нет в таблице.
func (t Table[R]) MissingColumns(required ...string) []string {
	var missing []string
	for _, c := range required {
		if !slices.Contains(t.Columns, c) {
			missing = append(missing, c)
		}
	}
	return missing
}

func (t Table[R]) HasColumns(required ...string) bool {
	return len(t.MissingColumns(required...)) == 0
}

// DecodeTable читает таблицу, присланную клиентом: {"columns": [...], "rows": [{...}]}.
// Если columns не указаны, список колонок выводится из ключей строк в порядке первого появления.
func DecodeTable[R any](r io.Reader) (Table[R], error) {
	var raw struct {
		Columns []string          `json:"columns"`
		Rows    []json.RawMessage `json:"rows"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Table[R]{}, fmt.Errorf("decode table: %w", err)
	}

	rows := make([]R, 0, len(raw.Rows))
	seen := raw.Columns
	for i, msg := range raw.Rows {
		var row R
		if err := json.Unmarshal(msg, &row); err != nil {
			return Table[R]{}, fmt.Errorf("decode table row %d: %w", i, err)
		}
		rows = append(rows, row)

		if raw.Columns != nil {
			continue
		}
		keys, err := objectKeys(msg)
		if err != nil {
			return Table[R]{}, fmt.Errorf("decode table row %d: %w", i, err)
		}
		for _, k := range keys {
			if !slices.Contains(seen, k) {
				seen = append(seen, k)
			}
		}
	}

	return NewTable(seen, rows), nil
}

// objectKeys возвращает ключи JSON-объекта в порядке следования.
// map тут не подходит: порядок колонок важен для детерминированного вывода.
func objectKeys(msg json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("row is not a JSON object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("unexpected token in row object")
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
