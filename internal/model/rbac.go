package model

type Permission string

const (
	PermUserManage           Permission = "user:manage"
	PermGroupManage          Permission = "group:manage"
	PermResidentWrite        Permission = "resident:write"
	PermResidentDelete       Permission = "resident:delete"
	PermMedicationWrite      Permission = "medication:write"
	PermMedicationAdminister Permission = "medication:administer"
	PermMedicalHistoryWrite  Permission = "medical_history:write"
	PermCarePlanWrite        Permission = "care_plan:write"
	PermWellnessWrite        Permission = "wellness:write"
	PermIncidentFormManage   Permission = "incident_form:manage"
	PermIncidentReview       Permission = "incident_report:review"
	PermActivityWrite        Permission = "activity:write"
	PermAuditRead            Permission = "audit:read"
	PermExport               Permission = "report:export"
)

var rolePermissions = map[string][]Permission{
	RoleAdmin: {
		PermUserManage, PermGroupManage, PermResidentWrite, PermResidentDelete,
		PermMedicationWrite, PermMedicationAdminister, PermMedicalHistoryWrite,
		PermCarePlanWrite, PermWellnessWrite, PermIncidentFormManage, PermIncidentReview,
		PermActivityWrite, PermAuditRead, PermExport,
	},
	RoleNurse: {
		PermResidentWrite, PermMedicationWrite, PermMedicationAdminister,
		PermMedicalHistoryWrite, PermCarePlanWrite, PermWellnessWrite,
		PermIncidentReview, PermActivityWrite, PermExport,
	},
	RoleCaregiver: {
		PermWellnessWrite, PermActivityWrite,
	},
	RoleStaff: {
		PermActivityWrite,
	},
}

// HasPermission reports whether role grants perm.
func HasPermission(role string, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

func PermissionsFor(role string) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}
