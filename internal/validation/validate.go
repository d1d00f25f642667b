package validation

import (
	"regexp"
	"strings"

	"github.com/simple-dev-tools/gfluent/errors"
	"github.com/simple-dev-tools/gfluent/gftypes"
)

// columnName matches identifiers BigQuery accepts as column names.
var columnName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParseTableRef parses a "dataset.table" reference and qualifies it with the
// project ID. Returns ErrInvalidOption when the reference does not have
// exactly two non-empty dot-separated parts.
func ParseTableRef(projectID, ref string) (gftypes.TableRef, error) {
	parts := strings.Split(ref, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return gftypes.TableRef{}, errors.NewResourceError("table", ref, errors.ErrInvalidOption).
			WithMessage("expected dataset.table")
	}
	return gftypes.TableRef{
		ProjectID: projectID,
		Dataset:   parts[0],
		Table:     parts[1],
	}, nil
}

// ValidateGCSURI validates that a source location is a gs:// URI with a
// bucket component. Wildcards in the object path are allowed.
func ValidateGCSURI(uri string) error {
	if !strings.HasPrefix(uri, "gs://") {
		return errors.NewResourceError("gcs", uri, errors.ErrInvalidOption).
			WithMessage("expected gs://bucket/path")
	}
	if strings.TrimPrefix(uri, "gs://") == "" {
		return errors.NewResourceError("gcs", uri, errors.ErrInvalidOption).
			WithMessage("missing bucket name")
	}
	return nil
}

// ValidateSQL validates that a statement is a query. Only SELECT and WITH
// statements are accepted.
func ValidateSQL(sql string) error {
	upper := strings.ToUpper(strings.TrimSpace(sql))
	if strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH") {
		return nil
	}
	return errors.NewError("sql", errors.ErrInvalidOption).
		WithMessage("statement must start with SELECT or WITH")
}

// ValidateColumnNames validates a sheet header row. Every cell must be a
// non-empty identifier made of letters, numbers and underscores, starting
// with a letter or underscore.
func ValidateColumnNames(header []string) error {
	if len(header) == 0 {
		return errors.NewError("sheet", errors.ErrEmptySheet).
			WithMessage("header row has no columns")
	}
	for _, name := range header {
		if !columnName.MatchString(name) {
			return errors.NewResourceError("sheet", name, errors.ErrInvalidColumnName).
				WithMessage("columns must contain only letters, numbers and underscores, and start with a letter or underscore")
		}
	}
	return nil
}

// NormalizeBucket strips an optional gs:// prefix from a bucket name.
func NormalizeBucket(bucket string) string {
	return strings.TrimPrefix(bucket, "gs://")
}
