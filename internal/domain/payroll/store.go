package payroll

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// Store is the in-memory payroll roster plus the latest run per period.
type Store struct {
	mu        sync.RWMutex
	employees map[string]Employee
	runs      map[string]Run
	lastRun   string
}

func NewStore(seed []Employee) *Store {
	s := &Store{
		employees: make(map[string]Employee, len(seed)),
		runs:      map[string]Run{},
	}
	for _, e := range seed {
		if e.Status == "" {
			e.Status = StatusPending
		}
		s.employees[e.ID] = e
	}
	return s
}

// SeedEmployees returns the reference roster.
func SeedEmployees() []Employee {
	return []Employee{
		seedEmployee("emp_001", "John Doe", "john.doe@example.com", "Senior Developer", "Engineering", 120000, 5000),
		seedEmployee("emp_002", "Sarah Wilson", "sarah.wilson@example.com", "Product Manager", "Product", 150000, 3000),
		seedEmployee("emp_003", "Mike Johnson", "mike.johnson@example.com", "Sales Executive", "Sales", 80000, 2000),
		seedEmployee("emp_004", "Lisa Brown", "lisa.brown@example.com", "HR Specialist", "Human Resources", 95000, 1500),
		seedEmployee("emp_005", "David Chen", "david.chen@example.com", "Marketing Manager", "Marketing", 110000, 2500),
	}
}

func seedEmployee(id, name, email, position, department string, gross, other int64) Employee {
	return Employee{
		ID:              id,
		Name:            name,
		Email:           email,
		Position:        position,
		Department:      department,
		GrossSalary:     decimal.NewFromInt(gross),
		OtherDeductions: decimal.NewFromInt(other),
		Status:          StatusPending,
	}
}

// ListEmployees returns the roster ordered by id.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetEmployee(ctx context.Context, id string) (Employee, error) {
	if err := ctx.Err(); err != nil {
		return Employee{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return e, nil
}

func (s *Store) UpdatePay(ctx context.Context, id string, gross, other decimal.Decimal) (Employee, error) {
	if err := ctx.Err(); err != nil {
		return Employee{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	e.GrossSalary = gross
	e.OtherDeductions = other
	e.Status = StatusPending
	s.employees[id] = e
	return e, nil
}

// SetStatus updates every listed employee that exists and returns how many changed.
func (s *Store) SetStatus(ctx context.Context, ids []string, status string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	for _, id := range ids {
		e, ok := s.employees[id]
		if !ok {
			continue
		}
		e.Status = status
		s.employees[id] = e
		updated++
	}
	return updated, nil
}

// TransitionStatus moves the listed employees currently in status from to
// status to and returns how many moved.
func (s *Store) TransitionStatus(ctx context.Context, ids []string, from, to string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	moved := 0
	for _, id := range ids {
		e, ok := s.employees[id]
		if !ok || e.Status != from {
			continue
		}
		e.Status = to
		s.employees[id] = e
		moved++
	}
	return moved, nil
}

func (s *Store) SaveRun(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	run.Breakdowns = slices.Clone(run.Breakdowns)
	s.runs[run.Period] = run
	s.lastRun = run.Period
	return nil
}

func (s *Store) GetRun(ctx context.Context, period string) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[period]
	if !ok {
		return Run{}, ErrNoRunForPeriod
	}
	return run, nil
}

// LatestRun returns the most recently saved run of any period.
func (s *Store) LatestRun(ctx context.Context) (Run, bool, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastRun == "" {
		return Run{}, false, nil
	}
	return s.runs[s.lastRun], true, nil
}
