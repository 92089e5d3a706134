package services

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/workboard-api/internal/access"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/repository"
	"gorm.io/gorm"
)

// Metric compares this month's count with last month's.
type Metric struct {
	Count      int64
	Difference int64
}

// Analytics summarizes the tasks created this month.
type Analytics struct {
	Total      Metric
	Assigned   Metric
	Completed  Metric
	Incomplete Metric
	Overdue    Metric
}

// AnalyticsService computes monthly task statistics.
type AnalyticsService struct {
	store *repository.Store
	now   func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(store *repository.Store) *AnalyticsService {
	return &AnalyticsService{store: store, now: time.Now}
}

// Workspace returns statistics for the whole workspace.
func (s *AnalyticsService) Workspace(ctx context.Context, ac *access.Context) (*Analytics, error) {
	return s.compute(ctx, ac, nil)
}

// Project returns statistics for one project of the workspace.
func (s *AnalyticsService) Project(ctx context.Context, ac *access.Context, projectID string) (*Analytics, error) {
	if _, err := s.store.Projects.FindByID(ctx, ac.WorkspaceID, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, apierrors.StoreFailure("find project", err)
	}
	return s.compute(ctx, ac, &projectID)
}

func (s *AnalyticsService) compute(ctx context.Context, ac *access.Context, projectID *string) (*Analytics, error) {
	now := s.now().UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := thisMonth.AddDate(0, 1, 0)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	done := models.TaskStatusDone
	base := repository.TaskCountFilter{WorkspaceID: ac.WorkspaceID, ProjectID: projectID}

	assigned := base
	assigned.AssigneeID = &ac.Member.ID
	completed := base
	completed.Status = &done
	incomplete := base
	incomplete.ExcludeStatus = &done
	overdue := incomplete
	overdue.DueBefore = &now

	var result Analytics
	metrics := []struct {
		target *Metric
		filter repository.TaskCountFilter
	}{
		{&result.Total, base},
		{&result.Assigned, assigned},
		{&result.Completed, completed},
		{&result.Incomplete, incomplete},
		{&result.Overdue, overdue},
	}

	for _, m := range metrics {
		current, err := s.count(ctx, m.filter, thisMonth, nextMonth)
		if err != nil {
			return nil, err
		}
		previous, err := s.count(ctx, m.filter, lastMonth, thisMonth)
		if err != nil {
			return nil, err
		}
		*m.target = Metric{Count: current, Difference: current - previous}
	}
	return &result, nil
}

func (s *AnalyticsService) count(ctx context.Context, filter repository.TaskCountFilter, from, to time.Time) (int64, error) {
	filter.CreatedFrom = from
	filter.CreatedTo = to
	n, err := s.store.Tasks.Count(ctx, filter)
	if err != nil {
		return 0, apierrors.StoreFailure("count tasks", err)
	}
	return n, nil
}
