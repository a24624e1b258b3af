package domain

// The role/field permission matrix. Evaluated once per request, it depends on
// nothing beyond the role and whether the defect is closed. A closed defect is
// frozen: the editable set is empty for every role.

// editableByRole lists the fields each role may touch on an open defect.
// Status is listed for engineer and manager; the transition validator applies
// the per-edge role gating on top of this.
var editableByRole = map[Role][]Field{
	RoleEngineer:   {FieldDescription, FieldStatus},
	RoleManager:    {FieldDescription, FieldPriority, FieldAssignee, FieldDueDate, FieldStatus},
	RoleSupervisor: {},
}

// CanEditField reports whether role may write field f given the defect's
// closed state.
func CanEditField(role Role, f Field, defectClosed bool) bool {
	if defectClosed {
		return false
	}
	for _, allowed := range editableByRole[role] {
		if allowed == f {
			return true
		}
	}
	return false
}

// EditableFields returns the fields role may write, in canonical order.
// Closed defects return an empty set.
func EditableFields(role Role, defectClosed bool) []Field {
	if defectClosed {
		return nil
	}
	fields := editableByRole[role]
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// CanAddComment reports whether role may comment on an open defect.
// Supervisors never comment; nobody comments on a closed defect.
func CanAddComment(role Role, defectClosed bool) bool {
	if defectClosed {
		return false
	}
	return role == RoleEngineer || role == RoleManager
}

// CanDeleteComment implements the comment deletion contract: managers delete
// any comment, engineers only their own, supervisors none, and closed defects
// are append-only.
func CanDeleteComment(role Role, actorID, authorID int64, defectClosed bool) bool {
	if defectClosed {
		return false
	}
	switch role {
	case RoleManager:
		return true
	case RoleEngineer:
		return actorID == authorID
	}
	return false
}

// CanAddAttachment reports whether role may attach files to an open defect.
func CanAddAttachment(role Role, defectClosed bool) bool {
	if defectClosed {
		return false
	}
	return role == RoleEngineer || role == RoleManager
}

// CanDeleteAttachment reports whether role may remove attachments.
// Manager only, and never once the defect is closed.
func CanDeleteAttachment(role Role, defectClosed bool) bool {
	return !defectClosed && role == RoleManager
}

// imageContentTypes is the allow-list for defect attachments. Anything else
// fails before a single byte reaches the file store.
var imageContentTypes = map[string]struct{}{
	"image/jpeg":    {},
	"image/png":     {},
	"image/gif":     {},
	"image/webp":    {},
	"image/bmp":     {},
	"image/svg+xml": {},
}

// IsImageContentType reports whether ct is an accepted attachment type.
func IsImageContentType(ct string) bool {
	_, ok := imageContentTypes[ct]
	return ok
}
