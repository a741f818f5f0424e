package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"bizflow/internal/models"
)

func (c *Client) Kinds(ctx context.Context) ([]models.Kind, error) {
	return list[models.Kind](ctx, c, "/vocabulary", nil)
}

func (c *Client) Vocabulary(ctx context.Context, kind models.Kind) ([]VocabularyEntry, error) {
	return list[VocabularyEntry](ctx, c, "/vocabulary/"+seg(string(kind)), nil)
}

func (c *Client) Actions(ctx context.Context, kind models.Kind, status models.Status) (*ActionSet, error) {
	return one[ActionSet](ctx, c, "/vocabulary/"+seg(string(kind))+"/"+seg(string(status))+"/actions")
}

func (c *Client) ListRecords(ctx context.Context, kind models.Kind, q RecordQuery) ([]models.Record, error) {
	params := url.Values{}
	if q.Status != "" {
		params.Set("status", string(q.Status))
	}
	if q.Cursor != "" {
		params.Set("cursor", q.Cursor)
	}
	if q.Limit > 0 {
		params.Set("limit", limitParam(q.Limit))
	}
	return list[models.Record](ctx, c, "/records/"+seg(string(kind)), params)
}

func (c *Client) GetRecord(ctx context.Context, kind models.Kind, id string) (*models.Record, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return one[models.Record](ctx, c, recordPath(kind, id))
}

func (c *Client) CreateRecord(ctx context.Context, kind models.Kind, title string, status models.Status) (*models.Record, error) {
	body := struct {
		Title  string        `json:"title"`
		Status models.Status `json:"status,omitempty"`
	}{title, status}
	var rec models.Record
	if err := c.send(ctx, http.MethodPost, "/records/"+seg(string(kind)), body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) DeleteRecord(ctx context.Context, kind models.Kind, id string) error {
	if err := requireID(id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return c.send(ctx, http.MethodDelete, recordPath(kind, id), nil, nil)
}

// Transition requests a status change. A second call for the same record
// while the first is running fails with ErrInFlight.
func (c *Client) Transition(ctx context.Context, kind models.Kind, id string, req models.TransitionRequest) (*TransitionResult, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("transition: %w", err)
	}
	var res TransitionResult
	if err := c.send(ctx, http.MethodPost, TransitionPath(kind, id), req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) History(ctx context.Context, kind models.Kind, id string) ([]models.Transition, error) {
	return list[models.Transition](ctx, c, TransitionPath(kind, id), nil)
}

// TransitionPath is the guard key path used by Transition.
func TransitionPath(kind models.Kind, id string) string {
	return recordPath(kind, id) + "/transitions"
}

func recordPath(kind models.Kind, id string) string {
	return "/records/" + seg(string(kind)) + "/" + seg(id)
}

type Dashboard struct {
	Record     *models.Record
	Activities []models.Activity
}

// LoadDashboard fetches a record and its activity feed concurrently.
func (c *Client) LoadDashboard(ctx context.Context, kind models.Kind, id string) (*Dashboard, error) {
	g, gctx := errgroup.WithContext(ctx)
	d := &Dashboard{}
	g.Go(func() error {
		rec, err := c.GetRecord(gctx, kind, id)
		if err != nil {
			return fmt.Errorf("load record: %w", err)
		}
		d.Record = rec
		return nil
	})
	g.Go(func() error {
		acts, err := c.ListActivities(gctx, string(kind), id)
		if err != nil {
			return fmt.Errorf("load activities: %w", err)
		}
		d.Activities = acts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
