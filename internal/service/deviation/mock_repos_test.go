package deviation

import (
	"context"
	"sync"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/deviation"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/employee"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/timecode"
)

type mockDeviationRepo struct {
	mu    sync.Mutex
	items map[int64]deviation.Deviation
	seq   int64

	// afterGet runs after every GetByID, outside the lock.
	afterGet func()
}

func newMockDeviationRepo(devs ...deviation.Deviation) *mockDeviationRepo {
	r := &mockDeviationRepo{items: make(map[int64]deviation.Deviation)}
	for _, d := range devs {
		r.items[d.ID] = d
		if d.ID > r.seq {
			r.seq = d.ID
		}
	}
	return r
}

func (r *mockDeviationRepo) Create(_ context.Context, d deviation.Deviation) (deviation.Deviation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	d.ID = r.seq
	r.items[d.ID] = d
	return d, nil
}

func (r *mockDeviationRepo) GetByID(_ context.Context, id int64) (deviation.Deviation, error) {
	r.mu.Lock()
	d, ok := r.items[id]
	r.mu.Unlock()
	if r.afterGet != nil {
		r.afterGet()
	}
	if !ok {
		return deviation.Deviation{}, deviation.ErrDeviationNotFound
	}
	return d, nil
}

func (r *mockDeviationRepo) List(_ context.Context, f deviation.DeviationFilter) ([]deviation.Deviation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []deviation.Deviation
	for _, d := range r.items {
		if f.EmployeeID != nil && d.EmployeeID != *f.EmployeeID {
			continue
		}
		if f.Status != nil && string(d.Status) != *f.Status {
			continue
		}
		out = append(out, d)
	}
	return out, int64(len(out)), nil
}

func (r *mockDeviationRepo) ListForPeriod(_ context.Context, from, to time.Time, includeExported bool) ([]deviation.Deviation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []deviation.Deviation
	for _, d := range r.items {
		if d.Date == nil || d.Date.Before(from) || d.Date.After(to) {
			continue
		}
		if !includeExported && d.IsExported() {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *mockDeviationRepo) Update(_ context.Context, d deviation.Deviation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[d.ID]
	if !ok || current.IsExported() {
		return deviation.ErrDeviationNotFound
	}
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
	if _, ok := r.items[id]; !ok {
		return deviation.ErrDeviationNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *mockDeviationRepo) MarkExported(_ context.Context, ids []int64, batchID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		d := r.items[id]
		d.ExportBatchID = &batchID
		d.ExportedAt = &at
		r.items[id] = d
	}
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
	items map[string]timecode.TimeCode
}

func newMockTimeCodeRepo(codes ...timecode.TimeCode) *mockTimeCodeRepo {
	r := &mockTimeCodeRepo{items: make(map[string]timecode.TimeCode)}
	for _, tc := range codes {
		r.items[tc.Code] = tc
	}
	return r
}

func (r *mockTimeCodeRepo) GetByCode(_ context.Context, code string) (timecode.TimeCode, error) {
	tc, ok := r.items[code]
	if !ok {
		return timecode.TimeCode{}, timecode.ErrTimeCodeNotFound
	}
	return tc, nil
}

func (r *mockTimeCodeRepo) List(context.Context) ([]timecode.TimeCode, error) {
	out := make([]timecode.TimeCode, 0, len(r.items))
	for _, tc := range r.items {
		out = append(out, tc)
	}
	return out, nil
}

func (r *mockTimeCodeRepo) Create(_ context.Context, tc timecode.TimeCode) (timecode.TimeCode, error) {
	r.items[tc.Code] = tc
	return tc, nil
}

func (r *mockTimeCodeRepo) Update(context.Context, timecode.UpdateTimeCodeRequest) error {
	return nil
}
