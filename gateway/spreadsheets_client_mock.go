package gateway

import (
	"context"
	"sync"
)

type SpreadsheetsMock struct {
	lock sync.Mutex
	Rows map[string][][]string
}

func (s *SpreadsheetsMock) AppendRow(ctx context.Context, sheetName string, row []string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.Rows == nil {
		s.Rows = make(map[string][][]string)
	}

	s.Rows[sheetName] = append(s.Rows[sheetName], row)

	return nil
}

func (s *SpreadsheetsMock) RowsOf(sheetName string) [][]string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return append([][]string(nil), s.Rows[sheetName]...)
}
