package services

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"worklog-reconciler/internal/common"
	"worklog-reconciler/internal/interfaces"
	"worklog-reconciler/internal/models"
)

// clockifyTimeEntry mirrors the Clockify REST shape.
type clockifyTimeEntry struct {
	ID           string `json:"id"`
	Description  string `json:"description"`
	UserID       string `json:"userId"`
	Billable     bool   `json:"billable"`
	ProjectID    string `json:"projectId"`
	TimeInterval struct {
		Start    time.Time `json:"start"`
		End      time.Time `json:"end"`
		Duration string    `json:"duration"`
	} `json:"timeInterval"`
	Project *struct {
		Name string `json:"name"`
	} `json:"project,omitempty"`
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags,omitempty"`
}

type clockifyUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

type clockifyClient struct {
	client      *resty.Client
	workspaceID string
	pageSize    int
}

// NewClockifyClient builds the time entry source over the Clockify REST
// API.
func NewClockifyClient(config *common.ClockifyConfig) (interfaces.TimeEntrySource, error) {
	if config.APIKey == "" {
		return nil, common.NewConfigurationError("clockify_api_key", "clockify api_key is required")
	}
	if config.WorkspaceID == "" {
		return nil, common.NewConfigurationError("clockify_workspace", "clockify workspace_id is required")
	}
	if config.PageSize <= 0 {
		return nil, common.NewConfigurationError("clockify_page_size",
			fmt.Sprintf("clockify page_size must be positive, got %d", config.PageSize))
	}

	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(time.Duration(config.Timeout)*time.Second).
		SetRetryCount(config.MaxRetries).
		SetHeader("X-Api-Key", config.APIKey).
		SetHeader("Content-Type", "application/json")

	return &clockifyClient{
		client:      client,
		workspaceID: config.WorkspaceID,
		pageSize:    config.PageSize,
	}, nil
}

// GetUsers returns all users in the workspace.
func (cc *clockifyClient) GetUsers(ctx context.Context) ([]models.UserData, error) {
	var raw []clockifyUser

	resp, err := cc.client.R().
		SetContext(ctx).
		SetResult(&raw).
		Get(fmt.Sprintf("/workspaces/%s/users", cc.workspaceID))
	if err != nil {
		return nil, common.WrapError(err, common.ErrorTypeClockify, "users_fetch", "failed to fetch workspace users")
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, common.NewClockifyError("users_status", fmt.Sprintf("Clockify returned status %d: %s", resp.StatusCode(), resp.String()))
	}

	users := make([]models.UserData, 0, len(raw))
	for _, u := range raw {
		users = append(users, models.UserData{ID: u.ID, Name: u.Name, Email: u.Email, Status: u.Status})
	}
	return users, nil
}

// GetTimeEntries fetches the entries for every requested user within
// [from, to], paging until the API returns a short page. When userIDs
// is empty the whole workspace is fetched.
func (cc *clockifyClient) GetTimeEntries(ctx context.Context, from, to time.Time, userIDs []string) ([]models.TimeEntry, error) {
	all, err := cc.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(all))
	for _, u := range all {
		names[u.ID] = u.Name
	}

	users := userIDs
	if len(users) == 0 {
		for _, u := range all {
			users = append(users, u.ID)
		}
	}

	var entries []models.TimeEntry
	for _, userID := range users {
		userEntries, err := cc.userTimeEntries(ctx, userID, from, to)
		if err != nil {
			return nil, err
		}
		for i := range userEntries {
			userEntries[i].UserName = names[userEntries[i].UserID]
		}
		entries = append(entries, userEntries...)
	}
	return entries, nil
}

func (cc *clockifyClient) userTimeEntries(ctx context.Context, userID string, from, to time.Time) ([]models.TimeEntry, error) {
	var entries []models.TimeEntry

	for page := 1; ; page++ {
		var raw []clockifyTimeEntry

		resp, err := cc.client.R().
			SetContext(ctx).
			SetQueryParam("start", from.UTC().Format("2006-01-02T15:04:05Z")).
			SetQueryParam("end", to.UTC().Format("2006-01-02T15:04:05Z")).
			SetQueryParam("hydrated", "true").
			SetQueryParam("page", strconv.Itoa(page)).
			SetQueryParam("page-size", strconv.Itoa(cc.pageSize)).
			SetResult(&raw).
			Get(fmt.Sprintf("/workspaces/%s/user/%s/time-entries", cc.workspaceID, userID))
		if err != nil {
			return nil, common.WrapError(err, common.ErrorTypeClockify, "entries_fetch", "failed to fetch time entries").
				WithContext("user_id", userID)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, common.NewClockifyError("entries_status",
				fmt.Sprintf("Clockify returned status %d: %s", resp.StatusCode(), resp.String())).
				WithContext("user_id", userID)
		}

		for _, item := range raw {
			entries = append(entries, toTimeEntry(item))
		}

		if len(raw) < cc.pageSize {
			break
		}
	}

	return entries, nil
}

func toTimeEntry(raw clockifyTimeEntry) models.TimeEntry {
	entry := models.TimeEntry{
		ID:          raw.ID,
		UserID:      raw.UserID,
		Description: raw.Description,
		Start:       raw.TimeInterval.Start,
		End:         raw.TimeInterval.End,
		Hours:       parseISODuration(raw.TimeInterval.Duration).Hours(),
		Billable:    raw.Billable,
		ProjectID:   raw.ProjectID,
	}
	if raw.Project != nil {
		entry.ProjectName = raw.Project.Name
	}
	for _, tag := range raw.Tags {
		entry.Tags = append(entry.Tags, tag.Name)
	}
	return entry
}

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?$`)

// parseISODuration parses the Clockify ISO 8601 duration form, e.g.
// "PT8H30M". Unparseable input yields zero rather than an error: a
// running entry has no duration yet.
func parseISODuration(s string) time.Duration {
	match := isoDurationRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if match == nil {
		return 0
	}

	var total float64
	if match[1] != "" {
		hours, _ := strconv.Atoi(match[1])
		total += float64(hours) * 3600
	}
	if match[2] != "" {
		minutes, _ := strconv.Atoi(match[2])
		total += float64(minutes) * 60
	}
	if match[3] != "" {
		seconds, _ := strconv.ParseFloat(match[3], 64)
		total += seconds
	}

	return time.Duration(total * float64(time.Second))
}
