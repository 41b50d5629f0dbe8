// Package taskapiclient is the only HTTP caller of the Task API, used by
// the Recurring Generator to materialize child task instances (spec §4.2
// step 4: "request the Task API to create a child task"). Keeping store
// writes behind this HTTP boundary preserves spec §3's rule that the Task
// API is the tasks table's sole owner.
package taskapiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// defaultTimeout matches spec §5's "HTTP invoke of Task API ≤ 10s" deadline.
const defaultTimeout = 10 * time.Second

// Client calls the Task API's minimal CRUD surface.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client against baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: defaultTimeout}}
}

// CreateChildRequest is the body sent to POST /api/v1/tasks when
// materializing a recurring instance.
type CreateChildRequest struct {
	Title                 string     `json:"title"`
	Description           *string    `json:"description,omitempty"`
	DueDate               *time.Time `json:"due_date,omitempty"`
	ReminderOffset        *string    `json:"reminder_offset,omitempty"`
	ParentRecurringTaskID uuid.UUID  `json:"parent_recurring_task_id"`
	OccurrenceDate        time.Time  `json:"occurrence_date"`
}

// CreatedTask is the subset of the Task API's response the generator
// needs back.
type CreatedTask struct {
	ID uuid.UUID `json:"id"`
}

// CreateChildTask materializes one recurring instance for ownerID. A 4xx
// response is a permanent failure (spec §7): the caller should log and
// skip this template, not retry. A network error or 5xx is transient.
func (c *Client) CreateChildTask(ctx context.Context, ownerID uuid.UUID, req CreateChildRequest) (*CreatedTask, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("taskapiclient: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/tasks", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("taskapiclient: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-User-ID", ownerID.String())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, fmt.Errorf("%w: status %d", ErrPermanent, resp.StatusCode)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrTransient, resp.StatusCode)
	}

	var created CreatedTask
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("taskapiclient: decode response: %w", err)
	}
	return &created, nil
}
