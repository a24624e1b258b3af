package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	statuses   map[string]string
	priorities map[string]string
	users      map[string]string
}

func (r fakeResolver) StatusDisplay(name string) (string, bool) {
	v, ok := r.statuses[name]
	return v, ok
}

func (r fakeResolver) PriorityDisplay(id string) (string, bool) {
	v, ok := r.priorities[id]
	return v, ok
}

func (r fakeResolver) UserDisplay(id string) (string, bool) {
	v, ok := r.users[id]
	return v, ok
}

func testResolver() fakeResolver {
	return fakeResolver{
		statuses: map[string]string{
			"new":         "Новая",
			"in_progress": "В работе",
			"review":      "На проверке",
			"closed":      "Закрыта",
			"cancelled":   "Отменена",
		},
		priorities: map[string]string{
			"2": "Средний",
			"4": "Критический",
		},
		users: map[string]string{
			"7":  "Иван Петров",
			"11": "Анна Сидорова",
		},
	}
}

func str(s string) *string { return &s }

func TestFormatEntryStatusRemap(t *testing.T) {
	r := testResolver()

	tests := []struct {
		name string
		old  string
		new  string
		want string
	}{
		// new, closed and cancelled are remapped to the spoken form; the
		// stored display names stay feminine for the board columns.
		{"start work", "new", "in_progress", `изменил статус с "Новый" на "В работе"`},
		{"close", "review", "closed", `изменил статус с "На проверке" на "Закрыт"`},
		{"cancel", "new", "cancelled", `изменил статус с "Новый" на "Отменен"`},
		{"to review", "in_progress", "review", `изменил статус с "В работе" на "На проверке"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ChangeLogEntry{
				FieldName:  string(FieldStatus),
				OldValue:   str(tt.old),
				NewValue:   str(tt.new),
				ChangeType: ChangeStatusChange,
			}
			require.Equal(t, tt.want, FormatEntry(e, r))
		})
	}
}

func TestFormatEntryFieldPhrases(t *testing.T) {
	r := testResolver()

	tests := []struct {
		name  string
		entry ChangeLogEntry
		want  string
	}{
		{
			"created",
			ChangeLogEntry{FieldName: string(FieldDescription), NewValue: str("x"), ChangeType: ChangeCreate},
			"создал дефект",
		},
		{
			"priority resolved by id",
			ChangeLogEntry{FieldName: string(FieldPriority), OldValue: str("2"), NewValue: str("4"), ChangeType: ChangeUpdate},
			`изменил приоритет с "Средний" на "Критический"`,
		},
		{
			"assignee resolved by id",
			ChangeLogEntry{FieldName: string(FieldAssignee), OldValue: str("7"), NewValue: str("11"), ChangeType: ChangeUpdate},
			`изменил исполнителя с "Иван Петров" на "Анна Сидорова"`,
		},
		{
			"assignee cleared",
			ChangeLogEntry{FieldName: string(FieldAssignee), OldValue: str("7"), ChangeType: ChangeUpdate},
			`изменил исполнителя с "Иван Петров" на "не назначен"`,
		},
		{
			"deleted user degrades to placeholder",
			ChangeLogEntry{FieldName: string(FieldAssignee), OldValue: str("404"), NewValue: str("7"), ChangeType: ChangeUpdate},
			`изменил исполнителя с "Неизвестный пользователь" на "Иван Петров"`,
		},
		{
			"deleted priority degrades to placeholder",
			ChangeLogEntry{FieldName: string(FieldPriority), OldValue: str("99"), NewValue: str("4"), ChangeType: ChangeUpdate},
			`изменил приоритет с "неизвестно" на "Критический"`,
		},
		{
			"description update",
			ChangeLogEntry{FieldName: string(FieldDescription), OldValue: str("a"), NewValue: str("b"), ChangeType: ChangeUpdate},
			"обновил описание дефекта",
		},
		{
			"due date update",
			ChangeLogEntry{FieldName: string(FieldDueDate), OldValue: str("2026-09-15"), NewValue: str("2026-10-01"), ChangeType: ChangeUpdate},
			"изменил срок устранения",
		},
		{
			"comment added",
			ChangeLogEntry{FieldName: LogFieldComment, NewValue: str("текст"), ChangeType: ChangeCreate},
			"добавил комментарий",
		},
		{
			"comment deleted",
			ChangeLogEntry{FieldName: LogFieldComment, OldValue: str("5"), ChangeType: ChangeDelete},
			"удалил комментарий",
		},
		{
			"attachment added",
			ChangeLogEntry{FieldName: LogFieldAttachment, NewValue: str("фото.png"), ChangeType: ChangeCreate},
			"добавил файл к дефекту",
		},
		{
			"attachment deleted",
			ChangeLogEntry{FieldName: LogFieldAttachment, OldValue: str("9"), ChangeType: ChangeDelete},
			"удалил файл",
		},
		{
			"defect deleted",
			ChangeLogEntry{FieldName: LogFieldDefect, ChangeType: ChangeDelete},
			"удалил дефект",
		},
		{
			"unknown field falls back to the raw name",
			ChangeLogEntry{FieldName: "severity", OldValue: str("1"), NewValue: str("2"), ChangeType: ChangeUpdate},
			"изменил поле severity",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FormatEntry(tt.entry, r))
		})
	}
}
