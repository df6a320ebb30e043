package sheets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	defaultMaxRetries = 15
	defaultMaxBackoff = 60 * time.Second
)

// Client reads and replaces the contents of one tab of a spreadsheet.
type Client struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string

	maxRetries int
	backoff    func(attempt int) time.Duration
}

// NewClient authenticates with a service account key file. Extra options
// are passed to the Sheets service, which is how tests point it elsewhere.
func NewClient(ctx context.Context, credentialsFile, spreadsheetID, sheetName string, opts ...option.ClientOption) (*Client, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet ID is required")
	}
	if credentialsFile != "" {
		opts = append([]option.ClientOption{option.WithCredentialsFile(credentialsFile)}, opts...)
	}
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}
	return &Client{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		maxRetries:    defaultMaxRetries,
		backoff:       exponentialBackoff,
	}, nil
}

func exponentialBackoff(attempt int) time.Duration {
	backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	if backoff > defaultMaxBackoff {
		backoff = defaultMaxBackoff
	}
	return backoff
}

// retryable reports whether a call is worth repeating. A 403 is retried
// only when it is a quota error; any other 403 is a permissions problem.
func retryable(err error) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}
	switch gErr.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return true
	case http.StatusForbidden:
		for _, item := range gErr.Errors {
			if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
				return true
			}
		}
	}
	return false
}

// withRetry runs call until it succeeds, fails with a non-retryable error,
// runs out of attempts or ctx is done.
func (s *Client) withRetry(ctx context.Context, op string, call func() error) error {
	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err = call()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return fmt.Errorf("%s: %w", op, err)
		}
		if attempt == s.maxRetries-1 {
			break
		}
		backoff := s.backoff(attempt)
		log.WithError(err).Warnf("Rate limited by Google Sheets API during %s, retrying in %v...", op, backoff)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("%s failed after %d retries: %w", op, s.maxRetries, err)
}

// ReadAllRows returns every data row of the tab keyed by the header row.
func (s *Client) ReadAllRows(ctx context.Context) ([]map[string]string, error) {
	var resp *sheets.ValueRange
	err := s.withRetry(ctx, "read rows", func() error {
		var err error
		resp, err = s.service.Spreadsheets.Values.Get(s.spreadsheetID, a1Sheet(s.sheetName)).
			ValueRenderOption("FORMATTED_VALUE").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return RecordsFromGrid(resp.Values), nil
}

// ReplaceAll clears the tab and writes header and rows starting at A1. The
// values are written RAW so "TRUE" stays a string and nothing is parsed as
// a formula. If the write fails after the clear, the tab is left empty.
func (s *Client) ReplaceAll(ctx context.Context, header []string, rows [][]string) error {
	err := s.withRetry(ctx, "clear sheet", func() error {
		_, err := s.service.Spreadsheets.Values.Clear(
			s.spreadsheetID,
			a1Sheet(s.sheetName),
			&sheets.ClearValuesRequest{},
		).Context(ctx).Do()
		return err
	})
	if err != nil {
		return err
	}
	return s.withRetry(ctx, "write rows", func() error {
		_, err := s.service.Spreadsheets.Values.Update(
			s.spreadsheetID,
			a1Sheet(s.sheetName)+"!A1",
			&sheets.ValueRange{Values: ToGrid(header, rows)},
		).ValueInputOption("RAW").Context(ctx).Do()
		return err
	})
}

// EnsureSheetExists adds the tab to the spreadsheet if it is missing.
func (s *Client) EnsureSheetExists(ctx context.Context) error {
	// 1. Get spreadsheet metadata
	ss, err := s.service.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	// 2. Check if sheet exists
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.sheetName {
			return nil
		}
	}
	// 3. Add the sheet if not found
	log.WithField("sheet", s.sheetName).Info("Creating missing sheet")
	addSheetReq := &sheets.Request{
		AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{
				Title: s.sheetName,
			},
		},
	}
	_, err = s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{addSheetReq},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheet %q: %w", s.sheetName, err)
	}
	return nil
}
