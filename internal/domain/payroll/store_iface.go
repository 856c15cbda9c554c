package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

type RosterStore interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
	GetEmployee(ctx context.Context, id string) (Employee, error)
	UpdatePay(ctx context.Context, id string, gross, other decimal.Decimal) (Employee, error)
	SetStatus(ctx context.Context, ids []string, status string) (int, error)
	TransitionStatus(ctx context.Context, ids []string, from, to string) (int, error)
}

type RunStore interface {
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, period string) (Run, error)
	LatestRun(ctx context.Context) (Run, bool, error)
}

type StoreAPI interface {
	RosterStore
	RunStore
}

var _ StoreAPI = (*Store)(nil)

// Mailer delivers plain-text messages.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}
