package api

import (
	"context"
	"sync"
)

// mockTable is an in-memory sheet that records every replace.
type mockTable struct {
	mu           sync.Mutex
	Records      []map[string]string
	ReadErr      error
	WriteErr     error
	ReplaceCalls [][][]string
}

func (m *mockTable) ReadAllRows(ctx context.Context) ([]map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	out := make([]map[string]string, len(m.Records))
	for i, rec := range m.Records {
		cp := make(map[string]string, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		out[i] = cp
	}
	return out, nil
}

func (m *mockTable) ReplaceAll(ctx context.Context, header []string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceCalls = append(m.ReplaceCalls, append([][]string{header}, rows...))
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Records = make([]map[string]string, len(rows))
	for i, row := range rows {
		rec := make(map[string]string, len(header))
		for j, col := range header {
			if j < len(row) {
				rec[col] = row[j]
			}
		}
		m.Records[i] = rec
	}
	return nil
}
