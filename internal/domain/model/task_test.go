package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_AssigneesPreferArray(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 1,
		"assignee": {"id": 9, "firstName": "Old", "lastName": "Owner"},
		"assignees": [
			{"id": 2, "firstName": "Ana", "lastName": "Ruiz"},
			{"id": 3, "firstName": "Luis", "lastName": "Paz"}
		]
	}`), &task))

	display := task.AssigneeDisplay()
	assert.Equal(t, "Ana Ruiz", display.Text)
	assert.True(t, display.HasMultiple)
	assert.Equal(t, 2, display.Total)
	assert.Equal(t, "2", string(task.AssigneeID()))
	assert.True(t, task.IsAssignedTo("3"))
	assert.False(t, task.IsAssignedTo("9"))
}

func TestTask_LegacyAssignee(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "assignee": {"id": 9, "firstName": "Old", "lastName": "Owner"}}`), &task))

	assert.Equal(t, "Old Owner", task.AssigneeDisplay().Text)
	assert.Len(t, task.AllAssignees(), 1)
	assert.True(t, task.IsAssignedTo("9"))
}

func TestTask_EmptyArrayHidesLegacyInAllButNotPrimary(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "assignee": {"id": 9, "firstName": "Old", "lastName": "Owner"}, "assignees": []}`), &task))

	assert.Empty(t, task.AllAssignees())
	require.NotNil(t, task.PrimaryAssignee())
	assert.Equal(t, "9", string(task.PrimaryAssignee().ID))
}

func TestTask_Unassigned(t *testing.T) {
	task := Task{ID: "1"}
	display := task.AssigneeDisplay()
	assert.Equal(t, UnassignedText, display.Text)
	assert.Zero(t, display.Total)
	assert.Empty(t, task.AssigneeID())
	assert.NotNil(t, task.AllAssignees())
}

func TestCalendarFilter_Normalize(t *testing.T) {
	f := CalendarFilter{ShowTasks: true}.Normalize()
	assert.Equal(t, StatusAll, f.TaskStatus)
	assert.True(t, f.MatchesTask(TaskStatusDone))

	f.TaskStatus = string(TaskStatusPending)
	assert.False(t, f.MatchesTask(TaskStatusDone))
	assert.True(t, f.MatchesProject(ProjectStatusPaused))
}
