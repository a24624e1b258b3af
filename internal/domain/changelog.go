package domain

import "time"

// ChangeType classifies a change-log entry.
type ChangeType string

// Change types. create entries carry only NewValue; delete entries are
// terminal for the referenced record.
const (
	ChangeCreate       ChangeType = "create"
	ChangeUpdate       ChangeType = "update"
	ChangeDelete       ChangeType = "delete"
	ChangeStatusChange ChangeType = "status_change"
)

// Log-only field names. Comment and attachment activity shares the defect's
// change log but is not a mutable defect field.
const (
	LogFieldComment    = "comment"
	LogFieldAttachment = "attachment"
	LogFieldDefect     = "defect"
)

// ChangeLogEntry is one append-only audit row: a single field's old/new value
// for one mutation. Entries are never updated or deleted except by cascading
// defect deletion.
type ChangeLogEntry struct {
	ID         int64
	DefectID   int64
	ActorID    int64
	FieldName  string
	OldValue   *string
	NewValue   *string
	ChangeType ChangeType
	CreatedAt  time.Time
}

// CreationEntries produces the create-type entries for a new defect, one per
// populated tracked field. Seeding the log this way keeps the replay invariant
// honest: the log alone reconstructs the defect without peeking at the row.
func CreationEntries(d DefectSnapshot, actorID int64) []ChangeLogEntry {
	entries := []ChangeLogEntry{
		{DefectID: d.ID, ActorID: actorID, FieldName: string(FieldDescription), NewValue: encodeString(d.Description), ChangeType: ChangeCreate},
		{DefectID: d.ID, ActorID: actorID, FieldName: string(FieldPriority), NewValue: encodeInt64(d.PriorityID), ChangeType: ChangeCreate},
		{DefectID: d.ID, ActorID: actorID, FieldName: string(FieldStatus), NewValue: encodeStatus(d.Status), ChangeType: ChangeCreate},
	}
	if d.AssigneeID != nil {
		entries = append(entries, ChangeLogEntry{
			DefectID: d.ID, ActorID: actorID, FieldName: string(FieldAssignee),
			NewValue: encodeNullableID(d.AssigneeID), ChangeType: ChangeCreate,
		})
	}
	if d.DueDate != nil {
		entries = append(entries, ChangeLogEntry{
			DefectID: d.ID, ActorID: actorID, FieldName: string(FieldDueDate),
			NewValue: encodeNullableDate(d.DueDate), ChangeType: ChangeCreate,
		})
	}
	return entries
}

// Replay folds a defect's change-log entries, in creation order, into the
// field values they produce. Only tracked defect fields participate; comment
// and attachment entries are activity records, not state.
func Replay(entries []ChangeLogEntry) map[Field]*string {
	state := make(map[Field]*string)
	for _, e := range entries {
		switch e.ChangeType {
		case ChangeCreate, ChangeUpdate, ChangeStatusChange:
		default:
			continue
		}
		switch Field(e.FieldName) {
		case FieldDescription, FieldPriority, FieldAssignee, FieldDueDate, FieldStatus:
			state[Field(e.FieldName)] = e.NewValue
		}
	}
	return state
}
