package auth

import (
	"context"
	"slices"
)

const (
	PermPayrollRead  = "payroll.read"
	PermPayrollWrite = "payroll.write"
	PermPayrollRun   = "payroll.run"
	PermPayrollPay   = "payroll.pay"
	PermReportsRead  = "reports.read"
)

var DefaultPermissions = []string{
	PermPayrollRead,
	PermPayrollWrite,
	PermPayrollRun,
	PermPayrollPay,
	PermReportsRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermPayrollRead,
	},
	RoleManager: {
		PermPayrollRead,
		PermReportsRead,
	},
	RoleHR: {
		PermPayrollRead,
		PermPayrollWrite,
		PermPayrollRun,
		PermReportsRead,
	},
	// Payment confirmation is kept apart from running payroll.
	RoleSystemAdmin: {
		PermPayrollRead,
		PermPayrollPay,
		PermReportsRead,
	},
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return slices.Contains(RolePermissions[role], permission), nil
}

func KnownRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
