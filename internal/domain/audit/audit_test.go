package audit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordAndList(t *testing.T) {
	ctx := t.Context()
	svc := New(10)

	require.NoError(t, svc.Record(ctx, "u1", "payroll.run.calculate", "payroll_run", "r1", "req-1", "10.0.0.1", map[string]int{"employees": 5}))
	require.NoError(t, svc.Record(ctx, "u2", "payroll.employee.update", "employee", "emp_001", "req-2", "10.0.0.2", nil))
	require.NoError(t, svc.Record(ctx, "u1", "payroll.payslip.send", "employee", "emp_002", "req-3", "10.0.0.1", nil))

	all := svc.List(ctx, Filter{}, 10, 0)
	require.Len(t, all, 3)
	require.Equal(t, "payroll.payslip.send", all[0].Action)
	require.JSONEq(t, `{"employees":5}`, string(all[2].After))

	require.Equal(t, 2, svc.Count(ctx, Filter{ActorUser: "u1"}))
	require.Equal(t, 2, svc.Count(ctx, Filter{EntityType: "employee"}))

	page := svc.List(ctx, Filter{ActorUser: "u1"}, 1, 1)
	require.Len(t, page, 1)
	require.Equal(t, "r1", page[0].EntityID)
}

func TestRecordEvictsOldest(t *testing.T) {
	ctx := t.Context()
	svc := New(2)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, svc.Record(ctx, "u", "x", "t", id, "", "", nil))
	}
	events := svc.List(ctx, Filter{}, 10, 0)
	require.Len(t, events, 2)
	require.Equal(t, "c", events[0].EntityID)
	require.Equal(t, "b", events[1].EntityID)
}

func TestRecordRejectsUnmarshalablePayload(t *testing.T) {
	err := New(1).Record(t.Context(), "u", "x", "t", "id", "", "", map[string]any{"ch": make(chan int)})
	require.Error(t, err)
}
