package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"worklog-reconciler/internal/common"
	"worklog-reconciler/internal/interfaces"
	"worklog-reconciler/internal/models"
)

// workItemBatchRequest is the body of the workitemsbatch endpoint.
type workItemBatchRequest struct {
	IDs         []int    `json:"ids"`
	Fields      []string `json:"fields"`
	ErrorPolicy string   `json:"errorPolicy"`
}

type workItemBatchResponse struct {
	Count int `json:"count"`
	Value []struct {
		ID     int                    `json:"id"`
		Fields map[string]interface{} `json:"fields"`
	} `json:"value"`
}

var workItemFields = []string{
	"System.Id",
	"System.Title",
	"System.State",
	"System.WorkItemType",
	"System.Description",
	"System.AssignedTo",
	"System.AreaPath",
	"System.IterationPath",
	"System.Tags",
}

type devopsClient struct {
	client    *resty.Client
	project   string
	version   string
	batchSize int
}

// NewDevOpsClient builds the work item catalog over the Azure DevOps
// REST API.
func NewDevOpsClient(config *common.DevOpsConfig) (interfaces.WorkItemCatalog, error) {
	if config.Organization == "" {
		return nil, common.NewConfigurationError("devops_org", "devops organization is required")
	}
	if config.PAT == "" {
		return nil, common.NewConfigurationError("devops_pat", "devops pat is required")
	}
	if config.BatchSize <= 0 {
		return nil, common.NewConfigurationError("devops_batch_size",
			fmt.Sprintf("devops batch_size must be positive, got %d", config.BatchSize))
	}

	// PAT goes in as Basic auth with an empty username
	encoded := base64.StdEncoding.EncodeToString([]byte(":" + config.PAT))

	client := resty.New().
		SetBaseURL(fmt.Sprintf("%s/%s", strings.TrimRight(config.BaseURL, "/"), config.Organization)).
		SetTimeout(time.Duration(config.Timeout)*time.Second).
		SetRetryCount(config.MaxRetries).
		SetHeader("Authorization", "Basic "+encoded).
		SetHeader("Content-Type", "application/json")

	return &devopsClient{
		client:    client,
		project:   config.Project,
		version:   config.APIVersion,
		batchSize: config.BatchSize,
	}, nil
}

// GetWorkItems resolves ids in batches. IDs unknown to the tracker are
// absent from the result; the error policy "omit" keeps a batch with
// deleted items from failing outright.
func (dc *devopsClient) GetWorkItems(ctx context.Context, ids []int) (map[int]*models.WorkItem, error) {
	items := make(map[int]*models.WorkItem, len(ids))

	for start := 0; start < len(ids); start += dc.batchSize {
		end := start + dc.batchSize
		if end > len(ids) {
			end = len(ids)
		}

		batch, err := dc.fetchBatch(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		for id, item := range batch {
			items[id] = item
		}
	}

	return items, nil
}

func (dc *devopsClient) fetchBatch(ctx context.Context, ids []int) (map[int]*models.WorkItem, error) {
	var response workItemBatchResponse

	resp, err := dc.client.R().
		SetContext(ctx).
		SetQueryParam("api-version", dc.version).
		SetBody(workItemBatchRequest{IDs: ids, Fields: workItemFields, ErrorPolicy: "omit"}).
		SetResult(&response).
		Post(fmt.Sprintf("/%s/_apis/wit/workitemsbatch", dc.project))
	if err != nil {
		return nil, common.WrapError(err, common.ErrorTypeDevOps, "batch_fetch", "failed to fetch work item batch")
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, common.NewDevOpsError("batch_status",
			fmt.Sprintf("Azure DevOps returned status %d: %s", resp.StatusCode(), resp.String()))
	}

	items := make(map[int]*models.WorkItem, len(response.Value))
	for _, raw := range response.Value {
		item := toWorkItem(raw.ID, raw.Fields)
		if item.ID > 0 {
			items[item.ID] = item
		}
	}
	return items, nil
}

func toWorkItem(id int, fields map[string]interface{}) *models.WorkItem {
	item := &models.WorkItem{
		ID:            id,
		Title:         fieldString(fields, "System.Title"),
		State:         fieldString(fields, "System.State"),
		Type:          fieldString(fields, "System.WorkItemType"),
		Description:   common.StripHTML(fieldString(fields, "System.Description")),
		AreaPath:      fieldString(fields, "System.AreaPath"),
		IterationPath: fieldString(fields, "System.IterationPath"),
	}

	// AssignedTo is an identity object, not a plain string
	if assignee, ok := fields["System.AssignedTo"].(map[string]interface{}); ok {
		if name, ok := assignee["displayName"].(string); ok && name != "" {
			item.AssignedTo = name
		} else if name, ok := assignee["uniqueName"].(string); ok {
			item.AssignedTo = name
		}
	} else {
		item.AssignedTo = fieldString(fields, "System.AssignedTo")
	}

	// Tags arrive as a single semicolon-separated string
	if tags := fieldString(fields, "System.Tags"); tags != "" {
		for _, tag := range strings.Split(tags, ";") {
			if tag = strings.TrimSpace(tag); tag != "" {
				item.Tags = append(item.Tags, tag)
			}
		}
	}

	return item
}

func fieldString(fields map[string]interface{}, key string) string {
	if value, ok := fields[key].(string); ok {
		return value
	}
	return ""
}
