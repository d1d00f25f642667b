// Package testutil provides test mocks for the gfluent executors.
// This package is internal and should only be used for testing within the
// gfluent module.
package testutil

import (
	"context"
	"io"

	"google.golang.org/api/iterator"

	"github.com/simple-dev-tools/gfluent/gftypes"
)

// MockBigQuery is a mock implementation of the BigQueryAPI interface for
// testing. Each operation can be customized through its function field;
// unset operations return zero values.
type MockBigQuery struct {
	QueryFunc         func(context.Context, gftypes.QueryJobSpec) (gftypes.RowIterator, error)
	QueryToTableFunc  func(context.Context, gftypes.QueryJobSpec) (int64, error)
	LoadURIFunc       func(context.Context, gftypes.LoadJobSpec) (int64, error)
	LoadReaderFunc    func(context.Context, io.Reader, gftypes.LoadJobSpec) (int64, error)
	ExecFunc          func(context.Context, string, string) error
	TableExistsFunc   func(context.Context, gftypes.TableRef) (bool, error)
	DeleteTableFunc   func(context.Context, gftypes.TableRef) error
	CreateDatasetFunc func(context.Context, string, string) error
	DeleteDatasetFunc func(context.Context, string) error
	CloseFunc         func() error
}

// Query mocks the query operation.
func (m *MockBigQuery) Query(ctx context.Context, spec gftypes.QueryJobSpec) (gftypes.RowIterator, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, spec)
	}
	return &SliceRowIterator{}, nil
}

// QueryToTable mocks the query-to-table operation.
func (m *MockBigQuery) QueryToTable(ctx context.Context, spec gftypes.QueryJobSpec) (int64, error) {
	if m.QueryToTableFunc != nil {
		return m.QueryToTableFunc(ctx, spec)
	}
	return 0, nil
}

// LoadURI mocks the GCS load job.
func (m *MockBigQuery) LoadURI(ctx context.Context, spec gftypes.LoadJobSpec) (int64, error) {
	if m.LoadURIFunc != nil {
		return m.LoadURIFunc(ctx, spec)
	}
	return 0, nil
}

// LoadReader mocks the reader load job.
func (m *MockBigQuery) LoadReader(ctx context.Context, r io.Reader, spec gftypes.LoadJobSpec) (int64, error) {
	if m.LoadReaderFunc != nil {
		return m.LoadReaderFunc(ctx, r, spec)
	}
	return 0, nil
}

// Exec mocks statement execution.
func (m *MockBigQuery) Exec(ctx context.Context, stmt, location string) error {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, stmt, location)
	}
	return nil
}

// TableExists mocks the existence check.
func (m *MockBigQuery) TableExists(ctx context.Context, ref gftypes.TableRef) (bool, error) {
	if m.TableExistsFunc != nil {
		return m.TableExistsFunc(ctx, ref)
	}
	return false, nil
}

// DeleteTable mocks the table drop.
func (m *MockBigQuery) DeleteTable(ctx context.Context, ref gftypes.TableRef) error {
	if m.DeleteTableFunc != nil {
		return m.DeleteTableFunc(ctx, ref)
	}
	return nil
}

// CreateDataset mocks dataset creation.
func (m *MockBigQuery) CreateDataset(ctx context.Context, dataset, location string) error {
	if m.CreateDatasetFunc != nil {
		return m.CreateDatasetFunc(ctx, dataset, location)
	}
	return nil
}

// DeleteDataset mocks dataset deletion.
func (m *MockBigQuery) DeleteDataset(ctx context.Context, dataset string) error {
	if m.DeleteDatasetFunc != nil {
		return m.DeleteDatasetFunc(ctx, dataset)
	}
	return nil
}

// Close mocks the client close.
func (m *MockBigQuery) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// MockStorage is a mock implementation of the StorageAPI interface.
type MockStorage struct {
	UploadFunc    func(ctx context.Context, bucket, key, contentType string, r io.Reader) error
	ListFunc      func(ctx context.Context, bucket, prefix, delimiter string) ([]string, error)
	NewReaderFunc func(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	DeleteFunc    func(ctx context.Context, bucket, key string) error
	CloseFunc     func() error
}

// Upload mocks the object upload.
func (m *MockStorage) Upload(ctx context.Context, bucket, key, contentType string, r io.Reader) error {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, bucket, key, contentType, r)
	}
	return nil
}

// List mocks the object listing.
func (m *MockStorage) List(ctx context.Context, bucket, prefix, delimiter string) ([]string, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, bucket, prefix, delimiter)
	}
	return nil, nil
}

// NewReader mocks opening an object for reading.
func (m *MockStorage) NewReader(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if m.NewReaderFunc != nil {
		return m.NewReaderFunc(ctx, bucket, key)
	}
	return io.NopCloser(&io.LimitedReader{}), nil
}

// Delete mocks the object deletion.
func (m *MockStorage) Delete(ctx context.Context, bucket, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, bucket, key)
	}
	return nil
}

// Close mocks the client close.
func (m *MockStorage) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// MockSheets is a mock implementation of the SheetsAPI interface.
type MockSheets struct {
	ReadRangeFunc func(ctx context.Context, spreadsheetID, rangeSpec string) ([][]interface{}, error)
}

// ReadRange mocks the range read.
func (m *MockSheets) ReadRange(ctx context.Context, spreadsheetID, rangeSpec string) ([][]interface{}, error) {
	if m.ReadRangeFunc != nil {
		return m.ReadRangeFunc(ctx, spreadsheetID, rangeSpec)
	}
	return nil, nil
}

// SliceRowIterator is a RowIterator over an in-memory row slice. Next fills
// dst, which must be a *[]interface{}, and returns iterator.Done after the
// last row, matching the SDK iterator contract.
type SliceRowIterator struct {
	Rows [][]interface{}
	pos  int
}

// Next copies the next row into dst.
func (it *SliceRowIterator) Next(dst interface{}) error {
	if it.pos >= len(it.Rows) {
		return iterator.Done
	}
	out, ok := dst.(*[]interface{})
	if !ok {
		return iterator.Done
	}
	*out = it.Rows[it.pos]
	it.pos++
	return nil
}
