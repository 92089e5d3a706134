package dto

import "github.com/yukikurage/workboard-api/internal/services"

// AnalyticsDTO holds this month's task counts and the change from last month
type AnalyticsDTO struct {
	TaskCount                int64 `json:"taskCount"`
	TaskDifference           int64 `json:"taskDifference"`
	AssignedTaskCount        int64 `json:"assignedTaskCount"`
	AssignedTaskDifference   int64 `json:"assignedTaskDifference"`
	CompletedTaskCount       int64 `json:"completedTaskCount"`
	CompletedTaskDifference  int64 `json:"completedTaskDifference"`
	IncompleteTaskCount      int64 `json:"incompleteTaskCount"`
	IncompleteTaskDifference int64 `json:"incompleteTaskDifference"`
	OverdueTaskCount         int64 `json:"overdueTaskCount"`
	OverdueTaskDifference    int64 `json:"overdueTaskDifference"`
}

// ToAnalyticsDTO flattens service analytics
func ToAnalyticsDTO(a services.Analytics) AnalyticsDTO {
	return AnalyticsDTO{
		TaskCount:                a.Total.Count,
		TaskDifference:           a.Total.Difference,
		AssignedTaskCount:        a.Assigned.Count,
		AssignedTaskDifference:   a.Assigned.Difference,
		CompletedTaskCount:       a.Completed.Count,
		CompletedTaskDifference:  a.Completed.Difference,
		IncompleteTaskCount:      a.Incomplete.Count,
		IncompleteTaskDifference: a.Incomplete.Difference,
		OverdueTaskCount:         a.Overdue.Count,
		OverdueTaskDifference:    a.Overdue.Difference,
	}
}
