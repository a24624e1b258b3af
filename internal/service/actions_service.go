package service

import (
	"context"
	"time"

	"defectdesk.io/desk/internal/domain"
	"defectdesk.io/desk/internal/repository"
)

// ActionsService renders a project's recent change-log activity as the
// Russian-language actions feed.
type ActionsService struct {
	store *repository.Store
}

// NewActionsService creates an ActionsService.
func NewActionsService(store *repository.Store) *ActionsService {
	return &ActionsService{store: store}
}

// Action is one rendered feed item.
type Action struct {
	ID          int64     `json:"id"`
	DefectID    int64     `json:"defect_id"`
	DefectTitle string    `json:"defect_title"`
	ActorName   string    `json:"actor_name"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// mapResolver adapts the preloaded display maps to the formatter's Resolver.
type mapResolver struct {
	maps repository.DisplayMaps
}

func (r mapResolver) StatusDisplay(name string) (string, bool) {
	v, ok := r.maps.Statuses[name]
	return v, ok
}

func (r mapResolver) PriorityDisplay(id string) (string, bool) {
	v, ok := r.maps.Priorities[id]
	return v, ok
}

func (r mapResolver) UserDisplay(id string) (string, bool) {
	v, ok := r.maps.Users[id]
	return v, ok
}

// ProjectFeed returns the newest actions for a project. Lookups are loaded
// once per call; rows referencing deleted users or priorities degrade to
// placeholders rather than failing the feed.
func (s *ActionsService) ProjectFeed(ctx context.Context, actorID, projectID int64, limit int) ([]Action, error) {
	if _, err := s.store.GetUserRoleInProject(ctx, actorID, projectID); err != nil {
		return nil, err
	}

	rows, err := s.store.ListProjectActions(ctx, projectID, limit)
	if err != nil {
		return nil, err
	}
	maps, err := s.store.LoadDisplayMaps(ctx, projectID)
	if err != nil {
		return nil, err
	}
	resolver := mapResolver{maps: maps}

	out := make([]Action, 0, len(rows))
	for _, row := range rows {
		actor := domain.UnknownUser
		if row.ActorName != nil && *row.ActorName != "" {
			actor = *row.ActorName
		}
		out = append(out, Action{
			ID:          row.Entry.ID,
			DefectID:    row.DefectID,
			DefectTitle: row.DefectTitle,
			ActorName:   actor,
			Text:        domain.FormatEntry(row.Entry, resolver),
			CreatedAt:   row.Entry.CreatedAt,
		})
	}
	return out, nil
}
