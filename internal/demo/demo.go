// Package demo generates the sample datasets served by the demo server:
// a user directory and a task list. Generation is deterministic so URLs
// shared between runs land on the same rows.
package demo

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/vango-dev/gridkit/pkg/datasource"
	"github.com/vango-dev/gridkit/pkg/gridstate"
)

// User enumerations.
var (
	UserStatuses = []string{"active", "inactive", "invited", "suspended"}
	UserRoles    = []string{"superadmin", "admin", "manager", "cashier"}
)

// Task enumerations.
var (
	TaskStatuses   = []string{"todo", "in progress", "done", "backlog", "canceled"}
	TaskLabels     = []string{"bug", "feature", "documentation"}
	TaskPriorities = []string{"low", "medium", "high"}
)

var firstNames = []string{
	"Alice", "Bob", "Carmen", "Diego", "Elena", "Felix", "Grace", "Hugo",
	"Iris", "Jonas", "Kira", "Leo", "Mara", "Nora", "Omar", "Priya",
	"Quinn", "Rosa", "Sven", "Tara",
}

var lastNames = []string{
	"Andersen", "Brown", "Castillo", "Dupont", "Evans", "Fischer",
	"Garcia", "Hansen", "Ivanov", "Jensen", "Kim", "Larsen", "Mori",
	"Nguyen", "Okafor", "Petrov", "Quist", "Rossi", "Schmidt", "Tanaka",
}

var taskVerbs = []string{
	"Fix", "Implement", "Refactor", "Document", "Investigate", "Remove",
	"Optimize", "Migrate", "Review", "Update",
}

var taskObjects = []string{
	"login flow", "billing export", "search index", "session cleanup",
	"audit log", "cache invalidation", "CSV import", "rate limiter",
	"webhook retries", "dashboard charts", "user invitations",
	"permission checks",
}

// Users generates n user rows.
func Users(n int) []datasource.Row {
	rng := rand.New(rand.NewSource(1))
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	rows := make([]datasource.Row, 0, n)
	for i := 0; i < n; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		username := fmt.Sprintf("%s.%s%d", strings.ToLower(first), strings.ToLower(last), i+1)

		rows = append(rows, datasource.Row{
			"id":        i + 1,
			"username":  username,
			"firstName": first,
			"lastName":  last,
			"email":     username + "@example.com",
			"status":    UserStatuses[rng.Intn(len(UserStatuses))],
			"role":      UserRoles[rng.Intn(len(UserRoles))],
			"createdAt": base.AddDate(0, 0, rng.Intn(365)),
		})
	}
	return rows
}

// Tasks generates n task rows.
func Tasks(n int) []datasource.Row {
	rng := rand.New(rand.NewSource(2))
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	rows := make([]datasource.Row, 0, n)
	for i := 0; i < n; i++ {
		title := fmt.Sprintf("%s %s",
			taskVerbs[rng.Intn(len(taskVerbs))],
			taskObjects[rng.Intn(len(taskObjects))])

		rows = append(rows, datasource.Row{
			"id":        fmt.Sprintf("TASK-%04d", i+1),
			"title":     title,
			"status":    TaskStatuses[rng.Intn(len(TaskStatuses))],
			"label":     TaskLabels[rng.Intn(len(TaskLabels))],
			"priority":  TaskPriorities[rng.Intn(len(TaskPriorities))],
			"createdAt": base.AddDate(0, 0, rng.Intn(180)),
		})
	}
	return rows
}

// UsersGrid is the URL state configuration for the user directory.
func UsersGrid() gridstate.Config {
	return gridstate.Config{
		Filters: []gridstate.FilterField{
			{ColumnID: "username", Kind: gridstate.FilterString},
			{ColumnID: "status", Kind: gridstate.FilterArray},
			{ColumnID: "role", Kind: gridstate.FilterArray},
		},
		GlobalFilter: true,
	}
}

// TasksGrid is the URL state configuration for the task list.
func TasksGrid() gridstate.Config {
	return gridstate.Config{
		Filters: []gridstate.FilterField{
			{ColumnID: "title", Kind: gridstate.FilterString},
			{ColumnID: "status", Kind: gridstate.FilterArray},
			{ColumnID: "label", Kind: gridstate.FilterArray},
			{ColumnID: "priority", Kind: gridstate.FilterArray},
		},
		GlobalFilter: true,
	}
}

// SearchFields returns the columns the global filter searches for a
// dataset.
func SearchFields(dataset string) []string {
	if dataset == "users" {
		return []string{"username", "firstName", "lastName", "email"}
	}
	return []string{"id", "title"}
}
