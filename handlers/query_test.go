package handlers

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"task-manager/models"
)

func TestParseTaskQuery(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name  string
		query string
		want  models.TaskQuery
	}{
		{"empty", "", models.TaskQuery{}},
		{"completed true", "completed=true", models.TaskQuery{Completed: &yes}},
		{"completed other", "completed=TRUE", models.TaskQuery{Completed: &no}},
		{"completed empty", "completed=", models.TaskQuery{Completed: &no}},
		{"sort desc", "sortBy=createdAt_desc", models.TaskQuery{SortBy: "createdAt", SortDesc: true}},
		{"sort asc", "sortBy=updatedAt_asc", models.TaskQuery{SortBy: "updatedAt"}},
		{"sort no direction", "sortBy=description", models.TaskQuery{SortBy: "description"}},
		{"sort splits on last underscore", "sortBy=created_at_desc", models.TaskQuery{SortBy: "created_at", SortDesc: true}},
		{"paging", "limit=10&skip=20", models.TaskQuery{Limit: 10, Skip: 20}},
		{"bad paging", "limit=ten&skip=-1", models.TaskQuery{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, parseTaskQuery(values))
		})
	}
}
