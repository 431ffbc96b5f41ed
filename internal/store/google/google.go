// Package google implements the store directly on the Google Sheets API,
// reading and writing the same spreadsheet the Apps Script deployment
// fronts. Useful when the web app layer is unavailable or for bulk
// back-office work.
//
// Sheet layout:
//
//	Expenses!A:J   id, expense_date, expense_time, category, amount,
//	               location, description, created_by, email, platform
//	Categories!A:D id, category_name, description, status
//
// Row 1 of each sheet is the header.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	defaultExpensesSheet   = "Expenses"
	defaultCategoriesSheet = "Categories"
)

// Config carries the spreadsheet coordinates and service account
// credentials. Exactly one of CredentialsJSON or CredentialsFile must be
// set.
type Config struct {
	SpreadsheetID   string
	ExpensesSheet   string
	CategoriesSheet string
	CredentialsFile string
	CredentialsJSON string
}

type Client struct {
	svc             *gsheet.Service
	spreadsheetID   string
	expensesSheet   string
	categoriesSheet string
}

// New creates a Sheets-backed store from service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	var credentials []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentials = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		raw, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentials = raw
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	expenses := strings.TrimSpace(cfg.ExpensesSheet)
	if expenses == "" {
		expenses = defaultExpensesSheet
	}
	categories := strings.TrimSpace(cfg.CategoriesSheet)
	if categories == "" {
		categories = defaultCategoriesSheet
	}

	return &Client{
		svc:             svc,
		spreadsheetID:   cfg.SpreadsheetID,
		expensesSheet:   expenses,
		categoriesSheet: categories,
	}, nil
}

func (c *Client) GetExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	rows, err := c.readRows(ctx, c.expensesSheet, "A2:J")
	if err != nil {
		return nil, err
	}
	var out []core.ExpenseRecord
	for _, row := range rows {
		cols := toStrings(row)
		rec := core.ExpenseRecord{
			ID:          core.ID(colAt(cols, 0)),
			ExpenseDate: colAt(cols, 1),
			ExpenseTime: colAt(cols, 2),
			Category:    colAt(cols, 3),
			Amount:      core.Amount(core.CoerceAmount(colAt(cols, 4))),
			Location:    colAt(cols, 5),
			Description: colAt(cols, 6),
			CreatedBy:   colAt(cols, 7),
			Email:       colAt(cols, 8),
			Platform:    colAt(cols, 9),
		}
		if rec.ID == "" && rec.ExpenseDate == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Client) GetCategories(ctx context.Context) ([]core.CategoryRecord, error) {
	rows, err := c.readRows(ctx, c.categoriesSheet, "A2:D")
	if err != nil {
		return nil, err
	}
	var out []core.CategoryRecord
	for _, row := range rows {
		cols := toStrings(row)
		rec := core.CategoryRecord{
			ID:           core.ID(colAt(cols, 0)),
			CategoryName: colAt(cols, 1),
			Description:  colAt(cols, 2),
			Status:       colAt(cols, 3),
		}
		if rec.ID == "" && rec.CategoryName == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetStats aggregates the whole expenses sheet, mirroring what the Apps
// Script getStats action computes server-side.
func (c *Client) GetStats(ctx context.Context) (core.Stats, error) {
	records, err := c.GetExpenses(ctx)
	if err != nil {
		return core.Stats{}, err
	}
	return core.Summarize(records), nil
}

func (c *Client) AddExpense(ctx context.Context, rec core.ExpenseRecord) error {
	rec.ID = core.ID(strconv.FormatInt(time.Now().UnixMilli(), 10))
	row := expenseRow(rec)

	vr := &gsheet.ValueRange{Values: [][]any{row}}
	rng := fmt.Sprintf("%s!A:J", c.expensesSheet)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append expense to %s: %w", c.expensesSheet, err)
	}
	return nil
}

func (c *Client) EditExpense(ctx context.Context, rec core.ExpenseRecord) error {
	rowNum, err := c.findRowByID(ctx, c.expensesSheet, rec.ID)
	if err != nil {
		return err
	}
	vr := &gsheet.ValueRange{Values: [][]any{expenseRow(rec)}}
	rng := fmt.Sprintf("%s!A%d:J%d", c.expensesSheet, rowNum, rowNum)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update expense row %d: %w", rowNum, err)
	}
	return nil
}

func (c *Client) DeleteExpense(ctx context.Context, id core.ID, _ string) error {
	return c.deleteRowByID(ctx, c.expensesSheet, id)
}

func (c *Client) AddCategory(ctx context.Context, rec core.CategoryRecord) error {
	rec.ID = core.ID(strconv.FormatInt(time.Now().UnixMilli(), 10))
	if rec.Status == "" {
		rec.Status = "active"
	}
	vr := &gsheet.ValueRange{Values: [][]any{categoryRow(rec)}}
	rng := fmt.Sprintf("%s!A:D", c.categoriesSheet)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append category to %s: %w", c.categoriesSheet, err)
	}
	return nil
}

func (c *Client) EditCategory(ctx context.Context, rec core.CategoryRecord) error {
	rowNum, err := c.findRowByID(ctx, c.categoriesSheet, rec.ID)
	if err != nil {
		return err
	}
	vr := &gsheet.ValueRange{Values: [][]any{categoryRow(rec)}}
	rng := fmt.Sprintf("%s!A%d:D%d", c.categoriesSheet, rowNum, rowNum)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update category row %d: %w", rowNum, err)
	}
	return nil
}

func (c *Client) DeleteCategory(ctx context.Context, id core.ID) error {
	return c.deleteRowByID(ctx, c.categoriesSheet, id)
}

func (c *Client) readRows(ctx context.Context, sheet, span string) ([][]any, error) {
	rng := fmt.Sprintf("%s!%s", sheet, span)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// findRowByID scans column A for the record id and returns the 1-based
// sheet row number.
func (c *Client) findRowByID(ctx context.Context, sheet string, id core.ID) (int, error) {
	rows, err := c.readRows(ctx, sheet, "A2:A")
	if err != nil {
		return 0, err
	}
	for i, row := range rows {
		if len(row) > 0 && strings.TrimSpace(fmt.Sprint(row[0])) == id.String() {
			return i + 2, nil
		}
	}
	return 0, fmt.Errorf("record %s not found in %s", id, sheet)
}

func (c *Client) deleteRowByID(ctx context.Context, sheet string, id core.ID) error {
	rowNum, err := c.findRowByID(ctx, sheet, id)
	if err != nil {
		return err
	}
	sheetID, err := c.sheetID(ctx, sheet)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowNum - 1),
					EndIndex:   int64(rowNum),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d from %s: %w", rowNum, sheet, err)
	}
	return nil
}

func (c *Client) sheetID(ctx context.Context, sheet string) (int64, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == sheet {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", sheet)
}

func expenseRow(rec core.ExpenseRecord) []any {
	return []any{
		rec.ID.String(), rec.ExpenseDate, rec.ExpenseTime, rec.Category,
		rec.Amount.Value(), rec.Location, rec.Description,
		rec.CreatedBy, rec.Email, rec.Platform,
	}
}

func categoryRow(rec core.CategoryRecord) []any {
	return []any{rec.ID.String(), rec.CategoryName, rec.Description, rec.Status}
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func colAt(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return cols[idx]
}
