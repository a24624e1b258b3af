package domain

import "fmt"

// The actions-feed formatter. Change-log rows store raw values: status by
// internal name, priority and assignee as numeric IDs in text form. The
// formatter resolves them to display names through a Resolver and never
// fails on a missing lookup; deleted users and priorities degrade to a
// placeholder. The field name decides which lookup table applies; value
// shape is never inspected.

// Resolver resolves raw change-log values to display names. A false return
// means the lookup target no longer exists.
type Resolver interface {
	StatusDisplay(name string) (string, bool)
	PriorityDisplay(id string) (string, bool)
	UserDisplay(id string) (string, bool)
}

// Placeholders for unresolvable lookups and absent values.
const (
	UnknownUser  = "Неизвестный пользователь"
	UnknownValue = "неизвестно"
	NoAssignee   = "не назначен"
)

// statusSpoken remaps internal status names to the grammatical form the
// action sentence needs. Stored display names are feminine («Новая» attaches
// to «запись»), the feed speaks about the defect itself.
var statusSpoken = map[string]string{
	string(StatusNew):       "Новый",
	string(StatusClosed):    "Закрыт",
	string(StatusCancelled): "Отменен",
}

// FormatEntry renders one change-log entry as a Russian action phrase for the
// actions feed, e.g. `изменил статус с "Новый" на "В работе"`.
func FormatEntry(e ChangeLogEntry, r Resolver) string {
	switch e.ChangeType {
	case ChangeCreate:
		// Comment and attachment additions share the create type with
		// defect creation; the field name disambiguates.
		switch e.FieldName {
		case LogFieldComment:
			return "добавил комментарий"
		case LogFieldAttachment:
			return "добавил файл к дефекту"
		}
		return "создал дефект"
	case ChangeDelete:
		switch e.FieldName {
		case LogFieldComment:
			return "удалил комментарий"
		case LogFieldAttachment:
			return "удалил файл"
		default:
			return "удалил дефект"
		}
	case ChangeStatusChange:
		return fmt.Sprintf("изменил статус с %q на %q",
			statusName(e.OldValue, r), statusName(e.NewValue, r))
	}

	switch Field(e.FieldName) {
	case FieldStatus:
		return fmt.Sprintf("изменил статус с %q на %q",
			statusName(e.OldValue, r), statusName(e.NewValue, r))
	case FieldPriority:
		return fmt.Sprintf("изменил приоритет с %q на %q",
			priorityName(e.OldValue, r), priorityName(e.NewValue, r))
	case FieldAssignee:
		return fmt.Sprintf("изменил исполнителя с %q на %q",
			assigneeName(e.OldValue, r), assigneeName(e.NewValue, r))
	case FieldDescription:
		return "обновил описание дефекта"
	case FieldDueDate:
		return "изменил срок устранения"
	}

	switch e.FieldName {
	case LogFieldAttachment:
		return "добавил файл к дефекту"
	case LogFieldComment:
		return "добавил комментарий"
	}

	return "изменил поле " + e.FieldName
}

func statusName(raw *string, r Resolver) string {
	if raw == nil {
		return UnknownValue
	}
	if spoken, ok := statusSpoken[*raw]; ok {
		return spoken
	}
	if display, ok := r.StatusDisplay(*raw); ok {
		return display
	}
	return UnknownValue
}

func priorityName(raw *string, r Resolver) string {
	if raw == nil {
		return UnknownValue
	}
	if display, ok := r.PriorityDisplay(*raw); ok {
		return display
	}
	return UnknownValue
}

func assigneeName(raw *string, r Resolver) string {
	if raw == nil {
		return NoAssignee
	}
	if display, ok := r.UserDisplay(*raw); ok {
		return display
	}
	return UnknownUser
}
