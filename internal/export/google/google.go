package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"timerito/internal/core"
	"timerito/internal/store"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads and writes the timesheet spreadsheet. Each task occupies
// one row with columns ID, Name, Description, Minutes, Date.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	// numeric sheet ID resolved lazily, needed for row deletion
	gid       int64
	gidLoaded bool
}

// Ensure interface conformance
var (
	_ store.TaskWriter  = (*Client)(nil)
	_ store.TaskUpdater = (*Client)(nil)
	_ store.TaskDeleter = (*Client)(nil)
	_ store.TaskClearer = (*Client)(nil)
	_ store.TaskLister  = (*Client)(nil)
)

// New creates a Sheets client from service account credentials JSON.
func New(ctx context.Context, spreadsheetID, sheetName string, credentialsJSON []byte) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Timesheet"
	}
	if len(credentialsJSON) == 0 {
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus GOOGLE_CREDENTIALS_JSON,
// GOOGLE_CREDENTIALS_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Timesheet").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))

	creds, err := credentialsFromEnv()
	if err != nil {
		return nil, err
	}
	return New(ctx, spreadsheetID, sheetName, creds)
}

func credentialsFromEnv() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_JSON")); inline != "" {
		return []byte(inline), nil
	}
	file := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	creds, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	return creds, nil
}

// Append implements store.TaskWriter. An ID is assigned when the task
// has none.
func (c *Client) Append(ctx context.Context, t core.Task) (core.Task, error) {
	if c.svc == nil {
		return core.Task{}, errors.New("sheets service not initialized")
	}
	if t.Date.IsZero() {
		t.Date = core.Today()
	}
	if err := t.Validate(); err != nil {
		return core.Task{}, fmt.Errorf("validation failed: %w", err)
	}
	if t.ID == "" {
		t.ID = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}

	vr := &gsheet.ValueRange{Values: [][]any{taskRow(t)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.dataRange(), vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return core.Task{}, fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}
	return t, nil
}

// Update implements store.TaskUpdater.
func (c *Client) Update(ctx context.Context, id string, fields core.Task) (core.Task, error) {
	if c.svc == nil {
		return core.Task{}, errors.New("sheets service not initialized")
	}

	existing, rowNum, err := c.findRow(ctx, id)
	if err != nil {
		return core.Task{}, err
	}

	updated := existing
	updated.Name = fields.Name
	updated.Description = fields.Description
	updated.TimeSpent = fields.TimeSpent
	if err := updated.Validate(); err != nil {
		return core.Task{}, fmt.Errorf("validation failed: %w", err)
	}

	rng := fmt.Sprintf("%s!A%d:E%d", c.sheetName, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{taskRow(updated)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return core.Task{}, fmt.Errorf("update row %d in sheet %s: %w", rowNum, c.sheetName, err)
	}
	return updated, nil
}

// Delete implements store.TaskDeleter.
func (c *Client) Delete(ctx context.Context, id string) (core.Task, error) {
	if c.svc == nil {
		return core.Task{}, errors.New("sheets service not initialized")
	}

	removed, rowNum, err := c.findRow(ctx, id)
	if err != nil {
		return core.Task{}, err
	}
	if err := c.deleteRow(ctx, rowNum); err != nil {
		return core.Task{}, err
	}
	return removed, nil
}

// Clear implements store.TaskClearer. The header row survives.
func (c *Client) Clear(ctx context.Context) (int, error) {
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}

	tasks, err := c.ListTasks(ctx)
	if err != nil {
		return 0, err
	}

	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, c.dataRange(), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}
	return len(tasks), nil
}

// ListTasks implements store.TaskLister. Rows that do not parse as
// tasks are skipped, the list is best-effort.
func (c *Client) ListTasks(ctx context.Context) ([]core.Task, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.dataRange()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", c.sheetName, err)
	}

	tasks := make([]core.Task, 0, len(resp.Values))
	for _, row := range resp.Values {
		t, ok := parseTaskRow(toStrings(row))
		if !ok {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// UpsertTask writes a task by ID, updating the existing row when there
// is one and appending otherwise. Used by the sync worker so replayed
// messages stay idempotent.
func (c *Client) UpsertTask(ctx context.Context, t core.Task) error {
	_, rowNum, err := c.findRow(ctx, t.ID)
	if errors.Is(err, core.ErrTaskNotFound) {
		_, err := c.Append(ctx, t)
		return err
	}
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A%d:E%d", c.sheetName, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{taskRow(t)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update row %d in sheet %s: %w", rowNum, c.sheetName, err)
	}
	return nil
}

// RemoveTask deletes the row for the given ID. A missing row is not an
// error, deletes must be replayable.
func (c *Client) RemoveTask(ctx context.Context, id string) error {
	_, rowNum, err := c.findRow(ctx, id)
	if errors.Is(err, core.ErrTaskNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return c.deleteRow(ctx, rowNum)
}

func (c *Client) dataRange() string {
	return fmt.Sprintf("%s!A2:E", c.sheetName)
}

// findRow returns the parsed task and its 1-based row number.
func (c *Client) findRow(ctx context.Context, id string) (core.Task, int, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.dataRange()).Context(ctx).Do()
	if err != nil {
		return core.Task{}, 0, fmt.Errorf("read sheet %s: %w", c.sheetName, err)
	}
	for i, row := range resp.Values {
		t, ok := parseTaskRow(toStrings(row))
		if !ok {
			continue
		}
		if t.ID == id {
			// data range starts at row 2
			return t, i + 2, nil
		}
	}
	return core.Task{}, 0, core.ErrTaskNotFound
}

func (c *Client) deleteRow(ctx context.Context, rowNum int) error {
	gid, err := c.sheetID(ctx)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    gid,
					Dimension:  "ROWS",
					StartIndex: int64(rowNum - 1),
					EndIndex:   int64(rowNum),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d in sheet %s: %w", rowNum, c.sheetName, err)
	}
	return nil
}

// sheetID resolves the numeric grid ID for the configured sheet name.
func (c *Client) sheetID(ctx context.Context) (int64, error) {
	if c.gidLoaded {
		return c.gid, nil
	}
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.sheetName {
			c.gid = sh.Properties.SheetId
			c.gidLoaded = true
			return c.gid, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.sheetName)
}
