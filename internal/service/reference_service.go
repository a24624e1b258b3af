package service

import (
	"context"

	"defectdesk.io/desk/internal/repository"
)

// ReferenceService exposes the seeded reference data and the caller's
// project list.
type ReferenceService struct {
	store *repository.Store
}

// NewReferenceService creates a ReferenceService.
func NewReferenceService(store *repository.Store) *ReferenceService {
	return &ReferenceService{store: store}
}

// Statuses returns the defect status reference data in board order.
func (s *ReferenceService) Statuses(ctx context.Context) ([]repository.StatusRef, error) {
	return s.store.ListStatuses(ctx)
}

// Priorities returns the priority reference data by ascending urgency.
func (s *ReferenceService) Priorities(ctx context.Context) ([]repository.PriorityRef, error) {
	return s.store.ListPriorities(ctx)
}

// Projects returns the projects where the caller holds any role.
func (s *ReferenceService) Projects(ctx context.Context, userID int64) ([]repository.Project, error) {
	return s.store.ListUserProjects(ctx, userID)
}
