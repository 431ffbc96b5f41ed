// Package appsscript adapts the Apps Script gateway to the store
// interface: each operation maps to one remote action and the envelope
// data is decoded into typed records.
package appsscript

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/core"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/gateway"
)

// Remote action names understood by the Apps Script deployment.
const (
	actionGetExpenses    = "getExpenses"
	actionGetCategories  = "getCategories"
	actionGetStats       = "getStats"
	actionAddExpense     = "addExpense"
	actionEditExpense    = "editExpense"
	actionDeleteExpense  = "deleteExpense"
	actionAddCategory    = "addCategory"
	actionEditCategory   = "editCategory"
	actionDeleteCategory = "deleteCategory"
)

type Client struct {
	gw *gateway.Client
}

func New(gw *gateway.Client) *Client {
	return &Client{gw: gw}
}

func (c *Client) GetExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	res := c.gw.Fetch(ctx, actionGetExpenses, nil)
	if err := res.Err(actionGetExpenses); err != nil {
		return nil, err
	}
	var out []core.ExpenseRecord
	if err := decodeData(res.Data, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", actionGetExpenses, err)
	}
	return out, nil
}

func (c *Client) GetCategories(ctx context.Context) ([]core.CategoryRecord, error) {
	res := c.gw.Fetch(ctx, actionGetCategories, nil)
	if err := res.Err(actionGetCategories); err != nil {
		return nil, err
	}
	var out []core.CategoryRecord
	if err := decodeData(res.Data, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", actionGetCategories, err)
	}
	return out, nil
}

func (c *Client) GetStats(ctx context.Context) (core.Stats, error) {
	res := c.gw.Fetch(ctx, actionGetStats, nil)
	if err := res.Err(actionGetStats); err != nil {
		return core.Stats{}, err
	}
	stats := core.Stats{ByCategory: map[string]float64{}}
	if err := decodeData(res.Data, &stats); err != nil {
		return core.Stats{}, fmt.Errorf("%s: %w", actionGetStats, err)
	}
	if stats.ByCategory == nil {
		stats.ByCategory = map[string]float64{}
	}
	return stats, nil
}

func (c *Client) AddExpense(ctx context.Context, rec core.ExpenseRecord) error {
	payload, err := toPayload(rec)
	if err != nil {
		return err
	}
	delete(payload, "id") // assigned by the store
	return c.gw.Mutate(ctx, actionAddExpense, payload).Err(actionAddExpense)
}

func (c *Client) EditExpense(ctx context.Context, rec core.ExpenseRecord) error {
	payload, err := toPayload(rec)
	if err != nil {
		return err
	}
	return c.gw.Mutate(ctx, actionEditExpense, payload).Err(actionEditExpense)
}

func (c *Client) DeleteExpense(ctx context.Context, id core.ID, email string) error {
	payload := map[string]any{"id": id.String(), "email": email}
	return c.gw.Mutate(ctx, actionDeleteExpense, payload).Err(actionDeleteExpense)
}

func (c *Client) AddCategory(ctx context.Context, rec core.CategoryRecord) error {
	payload, err := toPayload(rec)
	if err != nil {
		return err
	}
	delete(payload, "id")
	return c.gw.Mutate(ctx, actionAddCategory, payload).Err(actionAddCategory)
}

func (c *Client) EditCategory(ctx context.Context, rec core.CategoryRecord) error {
	payload, err := toPayload(rec)
	if err != nil {
		return err
	}
	return c.gw.Mutate(ctx, actionEditCategory, payload).Err(actionEditCategory)
}

func (c *Client) DeleteCategory(ctx context.Context, id core.ID) error {
	payload := map[string]any{"id": id.String()}
	return c.gw.Mutate(ctx, actionDeleteCategory, payload).Err(actionDeleteCategory)
}

// decodeData decodes the envelope data into v. A missing or null data
// field leaves v at its zero value: the remote store omits data on some
// success responses and the views treat that as an empty result.
func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// toPayload flattens a record into the key set the remote store expects,
// reusing the wire tags on the record types.
func toPayload(rec any) (map[string]any, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return out, nil
}
