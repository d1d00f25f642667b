package gfluent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"google.golang.org/api/sheets/v4"

	gferrors "github.com/simple-dev-tools/gfluent/errors"
	"github.com/simple-dev-tools/gfluent/gftypes"
	"github.com/simple-dev-tools/gfluent/internal/gcpapi"
	"github.com/simple-dev-tools/gfluent/internal/validation"
)

// Sheet is a fluent Google Sheets client. It reads a worksheet range and
// loads it into a BigQuery table through a BQ builder. The header row
// supplies the column names; each following row becomes one record.
//
// Example:
//
//	sheet, err := gfluent.NewSheet(ctx, "/path/to/service-account.json")
//	if err != nil {
//	    return err
//	}
//
//	rows, err := sheet.SheetID("1xg-kyQ...").
//	    Worksheet("inventory!A1:F").
//	    BQ(bq.Table("stock.items")).
//	    Load(ctx)
type Sheet struct {
	api    SheetsAPI
	logger *slog.Logger

	sheetID   string
	rangeSpec string
	bq        *BQ

	err error
}

// NewSheet creates a fluent Sheets client authenticated with the given
// service account JSON key file. The read-only spreadsheets scope is
// requested unless overridden with WithScopes.
func NewSheet(ctx context.Context, credentialsFile string, opts ...gftypes.Option) (*Sheet, error) {
	if credentialsFile == "" {
		return nil, gferrors.NewError("sheet", gferrors.ErrInvalidOption).
			WithMessage("credentials file must not be empty")
	}

	cfg := newClientConfig(opts...)
	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = credentialsFile
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{sheets.SpreadsheetsReadonlyScope}
	}

	api, err := gcpapi.NewSheetsClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newSheet(api, cfg), nil
}

// NewSheetWithClient creates a fluent Sheets client with an injected
// executor. This is primarily used for testing with mocked executors.
func NewSheetWithClient(api SheetsAPI, opts ...gftypes.Option) *Sheet {
	return newSheet(api, newClientConfig(opts...))
}

func newSheet(api SheetsAPI, cfg *gftypes.ClientConfig) *Sheet {
	return &Sheet{
		api:    api,
		logger: cfg.Logger,
	}
}

func (s *Sheet) fail(err error) *Sheet {
	if s.err == nil {
		s.err = err
	}
	return s
}

// Err returns the first violation recorded by a setter, if any.
func (s *Sheet) Err() error {
	return s.err
}

// SheetID sets the spreadsheet UID.
func (s *Sheet) SheetID(id string) *Sheet {
	if id == "" {
		return s.fail(gferrors.NewError("sheet_id", gferrors.ErrInvalidOption).
			WithMessage("sheet id must not be empty"))
	}
	s.sheetID = id
	return s
}

// Worksheet sets the tab name and A1 cell range to read, e.g.
// "inventory!A1:F". SheetID must be called first.
func (s *Sheet) Worksheet(rangeSpec string) *Sheet {
	if s.sheetID == "" {
		return s.fail(gferrors.NewError("worksheet", gferrors.ErrIncompleteConfig).
			WithMessage("SheetID must be called before Worksheet"))
	}
	if rangeSpec == "" {
		return s.fail(gferrors.NewError("worksheet", gferrors.ErrInvalidOption).
			WithMessage("worksheet range must not be empty"))
	}
	s.rangeSpec = rangeSpec
	return s
}

// BQ sets the destination BigQuery builder. Its Table must be configured
// before Load.
func (s *Sheet) BQ(bq *BQ) *Sheet {
	if bq == nil {
		return s.fail(gferrors.NewError("bq", gferrors.ErrInvalidOption).
			WithMessage("bq builder must not be nil"))
	}
	s.bq = bq
	return s
}

// Load reads the configured range and loads it into the destination table
// as one newline-delimited JSON load job. The schema autodetects unless the
// BQ builder carries one. It returns the number of rows loaded.
func (s *Sheet) Load(ctx context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.rangeSpec == "" || s.bq == nil {
		return 0, gferrors.NewError("load", gferrors.ErrIncompleteConfig).
			WithMessage("Worksheet and BQ must be called before Load")
	}
	if err := s.bq.Err(); err != nil {
		return 0, err
	}
	if s.bq.table == nil {
		return 0, gferrors.NewError("load", gferrors.ErrIncompleteConfig).
			WithMessage("destination table must be set on the BigQuery builder")
	}

	values, err := s.api.ReadRange(ctx, s.sheetID, s.rangeSpec)
	if err != nil {
		return 0, err
	}

	payload, err := recordsFromSheet(values)
	if err != nil {
		return 0, err
	}

	rows, err := s.bq.api.LoadReader(ctx, payload, gftypes.LoadJobSpec{
		Target:     *s.bq.table,
		Format:     gftypes.FormatJSON,
		Schema:     s.bq.schema,
		WriteMode:  s.bq.mode,
		CreateMode: s.bq.createMode,
		Location:   s.bq.location,
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("sheet loaded",
		"sheet", s.sheetID,
		"range", s.rangeSpec,
		"table", s.bq.table.FullyQualified(),
		"rows", rows)
	return rows, nil
}

// recordsFromSheet turns sheet values into a newline-delimited JSON stream.
// The first row is the header; columns beyond the header width are dropped
// and missing trailing cells are simply absent from the record.
func recordsFromSheet(values [][]interface{}) (*bytes.Buffer, error) {
	if len(values) == 0 {
		return nil, gferrors.NewError("load", gferrors.ErrEmptySheet)
	}

	header := make([]string, 0, len(values[0]))
	for _, cell := range values[0] {
		name, ok := cell.(string)
		if !ok {
			name = fmt.Sprint(cell)
		}
		header = append(header, name)
	}
	if err := validation.ValidateColumnNames(header); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	for _, row := range values[1:] {
		record := make(map[string]interface{}, len(header))
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			record[header[i]] = cell
		}
		if err := enc.Encode(record); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
