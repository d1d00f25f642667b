// Package gcpapi adapts the Google Cloud SDK clients to the executor
// interfaces consumed by the fluent builders. All job submission, polling,
// authentication and retry behavior lives in the SDKs; this package only
// translates assembled job specs into SDK calls.
package gcpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"

	"github.com/simple-dev-tools/gfluent/gftypes"
)

// BigQueryClient wraps *bigquery.Client as a query/load job executor.
type BigQueryClient struct {
	client *bigquery.Client
	logger *slog.Logger
}

// NewBigQueryClient creates a BigQuery executor for the given project.
func NewBigQueryClient(ctx context.Context, projectID string, cfg *gftypes.ClientConfig) (*BigQueryClient, error) {
	client, err := bigquery.NewClient(ctx, projectID, cfg.GoogleOptions()...)
	if err != nil {
		return nil, err
	}
	return &BigQueryClient{
		client: client,
		logger: cfg.Logger,
	}, nil
}

// Query runs a query job and returns the result rows.
func (b *BigQueryClient) Query(ctx context.Context, spec gftypes.QueryJobSpec) (gftypes.RowIterator, error) {
	q := b.client.Query(spec.SQL)
	q.Location = spec.Location

	it, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// QueryToTable runs a query job writing to spec.Target and returns the
// number of rows in the result.
func (b *BigQueryClient) QueryToTable(ctx context.Context, spec gftypes.QueryJobSpec) (int64, error) {
	q := b.client.Query(spec.SQL)
	q.Location = spec.Location
	q.Dst = b.client.Dataset(spec.Target.Dataset).Table(spec.Target.Table)
	q.WriteDisposition = spec.WriteMode.Disposition()
	q.CreateDisposition = spec.CreateMode.Disposition()

	it, err := q.Read(ctx)
	if err != nil {
		return 0, err
	}

	b.logger.Info("query job finished",
		"table", spec.Target.FullyQualified(),
		"rows", it.TotalRows)
	return int64(it.TotalRows), nil
}

// LoadURI runs a load job from a gs:// URI and returns the destination
// table's row count once the job completes.
func (b *BigQueryClient) LoadURI(ctx context.Context, spec gftypes.LoadJobSpec) (int64, error) {
	gcsRef := bigquery.NewGCSReference(spec.SourceURI)
	gcsRef.SourceFormat = spec.Format.DataFormat()
	if spec.Autodetect() {
		gcsRef.AutoDetect = true
	} else {
		gcsRef.Schema = spec.Schema
	}

	table := b.client.Dataset(spec.Target.Dataset).Table(spec.Target.Table)
	loader := table.LoaderFrom(gcsRef)
	loader.Location = spec.Location
	loader.WriteDisposition = spec.WriteMode.Disposition()
	loader.CreateDisposition = spec.CreateMode.Disposition()

	if err := runJob(ctx, loader); err != nil {
		return 0, err
	}

	md, err := table.Metadata(ctx)
	if err != nil {
		return 0, err
	}

	b.logger.Info("load job finished",
		"table", spec.Target.FullyQualified(),
		"source", spec.SourceURI,
		"rows", md.NumRows)
	return int64(md.NumRows), nil
}

// LoadReader runs a load job streaming data from r and returns the number
// of rows written by the job.
func (b *BigQueryClient) LoadReader(ctx context.Context, r io.Reader, spec gftypes.LoadJobSpec) (int64, error) {
	source := bigquery.NewReaderSource(r)
	source.SourceFormat = spec.Format.DataFormat()
	if spec.Autodetect() {
		source.AutoDetect = true
	} else {
		source.Schema = spec.Schema
	}

	table := b.client.Dataset(spec.Target.Dataset).Table(spec.Target.Table)
	loader := table.LoaderFrom(source)
	loader.Location = spec.Location
	loader.WriteDisposition = spec.WriteMode.Disposition()
	loader.CreateDisposition = spec.CreateMode.Disposition()

	job, err := loader.Run(ctx)
	if err != nil {
		return 0, err
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return 0, err
	}
	if err := status.Err(); err != nil {
		return 0, err
	}

	rows := loadOutputRows(status)

	b.logger.Info("load job finished",
		"table", spec.Target.FullyQualified(),
		"rows", rows)
	return rows, nil
}

// Exec runs a DDL/DML statement at the given location and discards the
// result.
func (b *BigQueryClient) Exec(ctx context.Context, stmt, location string) error {
	q := b.client.Query(stmt)
	q.Location = location
	return runJob(ctx, q)
}

// TableExists reports whether the table exists.
func (b *BigQueryClient) TableExists(ctx context.Context, ref gftypes.TableRef) (bool, error) {
	_, err := b.client.Dataset(ref.Dataset).Table(ref.Table).Metadata(ctx)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteTable drops the table. A missing table is not an error.
func (b *BigQueryClient) DeleteTable(ctx context.Context, ref gftypes.TableRef) error {
	b.logger.Warn("deleting table", "table", ref.FullyQualified())

	err := b.client.Dataset(ref.Dataset).Table(ref.Table).Delete(ctx)
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// CreateDataset creates a dataset in the given location.
func (b *BigQueryClient) CreateDataset(ctx context.Context, dataset, location string) error {
	err := b.client.Dataset(dataset).Create(ctx, &bigquery.DatasetMetadata{
		Location: location,
	})
	if err != nil {
		return err
	}

	b.logger.Info("created dataset", "dataset", dataset, "location", location)
	return nil
}

// DeleteDataset deletes a dataset together with its contents. A missing
// dataset is not an error.
func (b *BigQueryClient) DeleteDataset(ctx context.Context, dataset string) error {
	err := b.client.Dataset(dataset).DeleteWithContents(ctx)
	if err != nil && !isNotFound(err) {
		return err
	}

	b.logger.Info("deleted dataset", "dataset", dataset)
	return nil
}

// Close releases the underlying client.
func (b *BigQueryClient) Close() error {
	return b.client.Close()
}

// jobRunner is satisfied by *bigquery.Query and *bigquery.Loader.
type jobRunner interface {
	Run(ctx context.Context) (*bigquery.Job, error)
}

// runJob submits the job and blocks until it completes.
func runJob(ctx context.Context, r jobRunner) error {
	job, err := r.Run(ctx)
	if err != nil {
		return err
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return err
	}
	return status.Err()
}

// loadOutputRows extracts the row count from a finished load job's
// statistics. Jobs without load statistics report zero.
func loadOutputRows(status *bigquery.JobStatus) int64 {
	if status == nil || status.Statistics == nil {
		return 0
	}
	if stats, ok := status.Statistics.Details.(*bigquery.LoadStatistics); ok {
		return stats.OutputRows
	}
	return 0
}

// isNotFound reports whether err is an HTTP 404 from the BigQuery API.
func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
