package sink

import (
	"context"
	"reflect"
	"sync"

	"github.com/albapepper/scoracle-ingest/internal/provider"
)

// Memory keeps rows in process. It backs dry runs and tests.
type Memory struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]interface{}
	writes int
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]map[string]map[string]interface{})}
}

// Write implements Sink.
func (m *Memory) Write(_ context.Context, row provider.Row) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++

	tbl, ok := m.tables[row.Table.Name]
	if !ok {
		tbl = make(map[string]map[string]interface{})
		m.tables[row.Table.Name] = tbl
	}
	key := row.Key()
	existing, exists := tbl[key]
	switch {
	case exists && row.Table.Policy == provider.IgnoreDuplicates:
		return Skipped, nil
	case exists && reflect.DeepEqual(existing, row.Values):
		return Skipped, nil
	}

	tbl[key] = copyValues(row.Values)
	return Accepted, nil
}

func copyValues(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Close implements Sink.
func (m *Memory) Close() {}

// Rows returns a copy of the rows stored for a table.
func (m *Memory) Rows(table string) []map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]interface{}, 0, len(m.tables[table]))
	for _, r := range m.tables[table] {
		out = append(out, copyValues(r))
	}
	return out
}

// Get returns a copy of the row stored under a rendered key ("game_id=401").
func (m *Memory) Get(table, key string) (map[string]interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.tables[table][key]
	if !ok {
		return nil, false
	}
	return copyValues(r), true
}

// Writes returns the number of Write calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
