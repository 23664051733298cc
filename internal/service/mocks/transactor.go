package mocks

import "context"

// MockTransactor runs the unit of work inline against the mocked
// repositories. Err, when set, is returned without calling fn.
type MockTransactor struct {
	Err  error
	Runs int
}

func (m *MockTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Runs++
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx)
}
