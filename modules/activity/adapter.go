package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ActivityPort defines the interface for reading the activity feed.
type ActivityPort interface {
	ListActivity(ctx context.Context, userID string) (*ListActivityResponse, error)
}

type activityAdapter struct {
	container mono.ServiceContainer
}

// NewActivityAdapter creates a new adapter for the activity services.
func NewActivityAdapter(container mono.ServiceContainer) ActivityPort {
	if container == nil {
		panic("activity adapter requires non-nil ServiceContainer")
	}
	return &activityAdapter{container: container}
}

// ListActivity returns a user's recent activity via the list-activity service.
func (a *activityAdapter) ListActivity(ctx context.Context, userID string) (*ListActivityResponse, error) {
	req := ListActivityRequest{UserID: userID}
	var resp ListActivityResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-activity", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list-activity service call failed: %w", err)
	}
	return &resp, nil
}
