// Package gfluent provides fluent, chainable Go clients for loading data
// with Google Cloud: BigQuery query and load jobs, Cloud Storage uploads
// and downloads, and Google Sheets imports into BigQuery.
//
// The module wraps the official Google Cloud SDKs. Each builder accumulates
// a validated configuration through chained setters and fires exactly one
// remote operation per terminal call. Authentication, job polling, retries
// and pagination remain with the SDKs; failures from the services are
// surfaced to the caller unchanged.
//
// Every option has a default, so a terminal call only needs the structural
// references (table, bucket, sheet) to be set. Setter violations are
// recorded and returned by the terminal call before anything is sent to the
// service.
//
// Example usage:
//
//	bq, err := gfluent.NewBQ(ctx, "my-project")
//	if err != nil {
//	    return err
//	}
//	defer bq.Close()
//
//	// Load newline-delimited JSON from GCS into a table.
//	rows, err := bq.Table("sales.products").
//	    GCS("gs://my-bucket/staging/*.json").
//	    Mode(gftypes.WriteTruncate).
//	    Load(ctx)
package gfluent
