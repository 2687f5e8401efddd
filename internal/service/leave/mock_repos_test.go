package leave

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/employee"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

type mockLeaveRequestRepo struct {
	mu    sync.Mutex
	items map[string]leave.LeaveRequest
	seq   int

	// afterGet runs after every GetByID, outside the lock.
	afterGet func()
}

func newMockLeaveRequestRepo(requests ...leave.LeaveRequest) *mockLeaveRequestRepo {
	r := &mockLeaveRequestRepo{items: make(map[string]leave.LeaveRequest)}
	for _, lr := range requests {
		r.items[lr.ID] = lr
	}
	return r
}

func (r *mockLeaveRequestRepo) Create(_ context.Context, lr leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	lr.ID = fmt.Sprintf("lr-%d", r.seq)
	r.items[lr.ID] = lr
	return lr, nil
}

func (r *mockLeaveRequestRepo) GetByID(_ context.Context, id string) (leave.LeaveRequest, error) {
	r.mu.Lock()
	lr, ok := r.items[id]
	r.mu.Unlock()
	if r.afterGet != nil {
		r.afterGet()
	}
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return lr, nil
}

func (r *mockLeaveRequestRepo) List(_ context.Context, f leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.LeaveRequest
	for _, lr := range r.items {
		if f.EmployeeID != nil && lr.EmployeeID != *f.EmployeeID {
			continue
		}
		out = append(out, lr)
	}
	return out, int64(len(out)), nil
}

func (r *mockLeaveRequestRepo) Update(_ context.Context, lr leave.LeaveRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[lr.ID]; !ok {
		return leave.ErrLeaveRequestNotFound
	}
	r.items[lr.ID] = lr
	return nil
}

func (r *mockLeaveRequestRepo) Decide(_ context.Context, lr leave.LeaveRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[lr.ID]
	if !ok || current.Status != leave.LeaveRequestStatusPending {
		return leave.ErrLeaveRequestAlreadyProcessed
	}
	r.items[lr.ID] = lr
	return nil
}

func (r *mockLeaveRequestRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *mockLeaveRequestRepo) CheckOverlapping(_ context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, lr := range r.items {
		if lr.EmployeeID != employeeID || lr.Status == leave.LeaveRequestStatusRejected {
			continue
		}
		if excludeID != nil && lr.ID == *excludeID {
			continue
		}
		if !lr.StartDate.After(end) && !lr.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

type balanceKey struct {
	employeeID string
	year       int
}

type mockBalanceRepo struct {
	mu    sync.Mutex
	items map[balanceKey]leave.VacationBalance
}

func newMockBalanceRepo(balances ...leave.VacationBalance) *mockBalanceRepo {
	r := &mockBalanceRepo{items: make(map[balanceKey]leave.VacationBalance)}
	for _, b := range balances {
		r.items[balanceKey{b.EmployeeID, b.Year}] = b
	}
	return r
}

func (r *mockBalanceRepo) Get(_ context.Context, employeeID string, year int) (leave.VacationBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[balanceKey{employeeID, year}]
	if !ok {
		return leave.VacationBalance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

func (r *mockBalanceRepo) Upsert(_ context.Context, b leave.VacationBalance) (leave.VacationBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey{b.EmployeeID, b.Year}
	if existing, ok := r.items[key]; ok {
		b.UsedDays = existing.UsedDays
	}
	r.items[key] = b
	return b, nil
}

func (r *mockBalanceRepo) Debit(_ context.Context, employeeID string, year int, days decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey{employeeID, year}
	b, ok := r.items[key]
	if !ok {
		return leave.ErrBalanceNotFound
	}
	if b.Remaining().LessThan(days) {
		return leave.ErrInsufficientBalance
	}
	b.UsedDays = b.UsedDays.Add(days)
	r.items[key] = b
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

type mockTransactor struct{}

func (mockTransactor) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}
