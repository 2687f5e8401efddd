package user

type Permission string

const (
	// Deviations
	PermissionDeviationViewOwn Permission = "deviation.view_own"
	PermissionDeviationCreate  Permission = "deviation.create"
	PermissionDeviationViewAll Permission = "deviation.view_all"
	PermissionDeviationApprove Permission = "deviation.approve"

	// Leave
	PermissionLeaveViewOwn Permission = "leave.view_own"
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveViewAll Permission = "leave.view_all"
	PermissionLeaveApprove Permission = "leave.approve"

	// Master data
	PermissionEmployeeViewAll Permission = "employee.view_all"
	PermissionEmployeeManage  Permission = "employee.manage"
	PermissionTimeCodeManage  Permission = "timecode.manage"

	// Payroll export
	PermissionExportValidate Permission = "export.validate"
	PermissionExportRun      Permission = "export.run"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionDeviationViewOwn,
		PermissionDeviationCreate,
		PermissionDeviationViewAll,
		PermissionDeviationApprove,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionEmployeeViewAll,
		PermissionEmployeeManage,
		PermissionTimeCodeManage,
		PermissionExportValidate,
		PermissionExportRun,
	},
	RolePayroll: {
		// Payroll staff review everything and run the export, but do not approve
		PermissionDeviationViewOwn,
		PermissionDeviationCreate,
		PermissionDeviationViewAll,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionEmployeeViewAll,
		PermissionEmployeeManage,
		PermissionTimeCodeManage,
		PermissionExportValidate,
		PermissionExportRun,
	},
	RoleManager: {
		PermissionDeviationViewOwn,
		PermissionDeviationCreate,
		PermissionDeviationViewAll,
		PermissionDeviationApprove,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionEmployeeViewAll,
		PermissionExportValidate,
	},
	RoleEmployee: {
		PermissionDeviationViewOwn,
		PermissionDeviationCreate,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
