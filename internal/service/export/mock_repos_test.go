package export

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/deviation"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/employee"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/export"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/timecode"
)

type mockDeviationRepo struct {
	mu        sync.Mutex
	items     map[int64]deviation.Deviation
	listErr   error
	markErr   error
	markedIDs []int64
}

func newMockDeviationRepo(devs ...deviation.Deviation) *mockDeviationRepo {
	r := &mockDeviationRepo{items: make(map[int64]deviation.Deviation)}
	for _, d := range devs {
		r.items[d.ID] = d
	}
	return r
}

func (r *mockDeviationRepo) Create(_ context.Context, d deviation.Deviation) (deviation.Deviation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = int64(len(r.items) + 1)
	r.items[d.ID] = d
	return d, nil
}

func (r *mockDeviationRepo) GetByID(_ context.Context, id int64) (deviation.Deviation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[id]
	if !ok {
		return deviation.Deviation{}, deviation.ErrDeviationNotFound
	}
	return d, nil
}

func (r *mockDeviationRepo) List(context.Context, deviation.DeviationFilter) ([]deviation.Deviation, int64, error) {
	return nil, 0, errors.New("not used")
}

func (r *mockDeviationRepo) ListForPeriod(_ context.Context, from, to time.Time, includeExported bool) ([]deviation.Deviation, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []deviation.Deviation
	for _, d := range r.items {
		if !includeExported && d.IsExported() {
			continue
		}
		if d.Date != nil && (d.Date.Before(from) || d.Date.After(to)) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockDeviationRepo) Update(_ context.Context, d deviation.Deviation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[d.ID] = d
	return nil
}

func (r *mockDeviationRepo) Decide(_ context.Context, d deviation.Deviation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[d.ID]
	if !ok || current.IsExported() || current.Status != deviation.StatusPending {
		return deviation.ErrDeviationNotPending
	}
	r.items[d.ID] = d
	return nil
}

func (r *mockDeviationRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *mockDeviationRepo) MarkExported(_ context.Context, ids []int64, batchID string, exportedAt time.Time) error {
	if r.markErr != nil {
		return r.markErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		d := r.items[id]
		d.ExportBatchID = &batchID
		d.ExportedAt = &exportedAt
		r.items[id] = d
	}
	r.markedIDs = append(r.markedIDs, ids...)
	return nil
}

type mockEmployeeRepo struct {
	items []employee.Employee
}

func (r *mockEmployeeRepo) GetByEmployeeID(_ context.Context, id string) (employee.Employee, error) {
	for _, e := range r.items {
		if e.EmployeeID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *mockEmployeeRepo) List(context.Context, employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	return r.items, int64(len(r.items)), nil
}

func (r *mockEmployeeRepo) ListAll(context.Context) ([]employee.Employee, error) {
	return r.items, nil
}

func (r *mockEmployeeRepo) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	r.items = append(r.items, e)
	return e, nil
}

func (r *mockEmployeeRepo) Update(context.Context, employee.UpdateEmployeeRequest) error {
	return nil
}

func (r *mockEmployeeRepo) ExistsByIDOrEmail(context.Context, string, *string) (bool, error) {
	return false, nil
}

type mockTimeCodeRepo struct {
	items []timecode.TimeCode
}

func (r *mockTimeCodeRepo) GetByCode(_ context.Context, code string) (timecode.TimeCode, error) {
	for _, tc := range r.items {
		if tc.Code == code {
			return tc, nil
		}
	}
	return timecode.TimeCode{}, timecode.ErrTimeCodeNotFound
}

func (r *mockTimeCodeRepo) List(context.Context) ([]timecode.TimeCode, error) {
	return r.items, nil
}

func (r *mockTimeCodeRepo) Create(_ context.Context, tc timecode.TimeCode) (timecode.TimeCode, error) {
	r.items = append(r.items, tc)
	return tc, nil
}

func (r *mockTimeCodeRepo) Update(context.Context, timecode.UpdateTimeCodeRequest) error {
	return nil
}

type mockBatchRepo struct {
	mu    sync.Mutex
	items []export.Batch
}

func (r *mockBatchRepo) Create(_ context.Context, b export.Batch) (export.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.CreatedAt = time.Date(2025, 7, 20, 10, 0, 0, 0, time.UTC)
	r.items = append(r.items, b)
	return b, nil
}

func (r *mockBatchRepo) GetByID(_ context.Context, id string) (export.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.items {
		if b.ID == id {
			return b, nil
		}
	}
	return export.Batch{}, export.ErrBatchNotFound
}

func (r *mockBatchRepo) List(_ context.Context, f export.BatchFilter) ([]export.Batch, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := (f.Page - 1) * f.Limit
	if start >= len(r.items) {
		return nil, int64(len(r.items)), nil
	}
	end := start + f.Limit
	if end > len(r.items) {
		end = len(r.items)
	}
	return r.items[start:end], int64(len(r.items)), nil
}

// mockTransactor runs fn directly; rollback is the fakes' own concern.
type mockTransactor struct {
	calls int
}

func (m *mockTransactor) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	m.calls++
	return fn(ctx)
}
