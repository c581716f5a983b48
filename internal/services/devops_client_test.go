package services

import (
	"reflect"
	"testing"

	"worklog-reconciler/internal/common"
)

func TestNewDevOpsClientRejectsBatchSize(t *testing.T) {
	for _, batchSize := range []int{0, -10} {
		cfg := &common.DevOpsConfig{
			Organization: "contoso",
			Project:      "Platform",
			PAT:          "token",
			BaseURL:      "https://dev.azure.com",
			BatchSize:    batchSize,
		}
		if _, err := NewDevOpsClient(cfg); err == nil {
			t.Errorf("NewDevOpsClient accepted batch_size %d", batchSize)
		}
	}
}

func TestToWorkItem(t *testing.T) {
	fields := map[string]interface{}{
		"System.Title":        "Fix login timeout",
		"System.State":        "Active",
		"System.WorkItemType": "Bug",
		"System.Description":  "<div>Users are logged out <b>after 5 minutes</b></div>",
		"System.AssignedTo": map[string]interface{}{
			"displayName": "Alex Doe",
			"uniqueName":  "alex@contoso.com",
		},
		"System.AreaPath":      `Contoso\Platform\Identity`,
		"System.IterationPath": `Contoso\Release 4\Sprint 12`,
		"System.Tags":          "security; regression ; ",
	}

	item := toWorkItem(12345, fields)

	if item.ID != 12345 || item.Title != "Fix login timeout" || item.Type != "Bug" {
		t.Fatalf("item = %+v, want mapped core fields", item)
	}
	if item.Description != "Users are logged out after 5 minutes" {
		t.Errorf("description = %q, want HTML stripped", item.Description)
	}
	if item.AssignedTo != "Alex Doe" {
		t.Errorf("assigned to = %q, want display name", item.AssignedTo)
	}
	if !reflect.DeepEqual(item.Tags, []string{"security", "regression"}) {
		t.Errorf("tags = %v, want trimmed non-empty tags", item.Tags)
	}
	if item.Iteration() != "Sprint 12" {
		t.Errorf("iteration = %q, want Sprint 12", item.Iteration())
	}
	if item.Area() != `Platform\Identity` {
		t.Errorf("area = %q, want project segment removed", item.Area())
	}
}

func TestToWorkItemMissingFields(t *testing.T) {
	item := toWorkItem(22222, map[string]interface{}{
		"System.Title": "Bare minimum",
	})

	if item.ID != 22222 || item.Title != "Bare minimum" {
		t.Fatalf("item = %+v", item)
	}
	if item.AssignedTo != "" || len(item.Tags) != 0 {
		t.Errorf("optional fields not empty: %+v", item)
	}
}

func TestToWorkItemAssigneeFallback(t *testing.T) {
	item := toWorkItem(33333, map[string]interface{}{
		"System.AssignedTo": map[string]interface{}{
			"uniqueName": "blair@contoso.com",
		},
	})

	if item.AssignedTo != "blair@contoso.com" {
		t.Errorf("assigned to = %q, want unique name fallback", item.AssignedTo)
	}
}
