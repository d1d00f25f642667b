package gcpapi

import (
	"context"

	"google.golang.org/api/sheets/v4"

	"github.com/simple-dev-tools/gfluent/gftypes"
)

// SheetsClient wraps the Sheets v4 service as a range-reading executor.
type SheetsClient struct {
	svc *sheets.Service
}

// NewSheetsClient creates a Google Sheets executor.
func NewSheetsClient(ctx context.Context, cfg *gftypes.ClientConfig) (*SheetsClient, error) {
	svc, err := sheets.NewService(ctx, cfg.GoogleOptions()...)
	if err != nil {
		return nil, err
	}
	return &SheetsClient{svc: svc}, nil
}

// ReadRange returns the cell values of an A1 range, one slice per row.
func (s *SheetsClient) ReadRange(ctx context.Context, spreadsheetID, rangeSpec string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, rangeSpec).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}
