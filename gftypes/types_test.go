package gftypes

import (
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/assert"
)

func TestEnumDomains(t *testing.T) {
	assert.True(t, WriteAppend.Valid())
	assert.True(t, WriteTruncate.Valid())
	assert.True(t, WriteEmpty.Valid())
	assert.False(t, WriteMode("WRITE_SOMETIMES").Valid())
	assert.False(t, WriteMode("").Valid())

	assert.True(t, CreateIfNeeded.Valid())
	assert.True(t, CreateNever.Valid())
	assert.False(t, CreateMode("CREATE_MAYBE").Valid())

	for _, f := range []SourceFormat{FormatJSON, FormatCSV, FormatAvro, FormatParquet, FormatORC, FormatDatastoreBackup} {
		assert.True(t, f.Valid(), string(f))
	}
	assert.False(t, SourceFormat("XML").Valid())
}

func TestDispositionMapping(t *testing.T) {
	assert.Equal(t, bigquery.WriteAppend, WriteAppend.Disposition())
	assert.Equal(t, bigquery.WriteTruncate, WriteTruncate.Disposition())
	assert.Equal(t, bigquery.CreateIfNeeded, CreateIfNeeded.Disposition())
	assert.Equal(t, bigquery.CreateNever, CreateNever.Disposition())
	assert.Equal(t, bigquery.JSON, FormatJSON.DataFormat())
	assert.Equal(t, bigquery.CSV, FormatCSV.DataFormat())
}

func TestTableRef(t *testing.T) {
	ref := TableRef{ProjectID: "proj", Dataset: "sales", Table: "products"}
	assert.Equal(t, "sales.products", ref.String())
	assert.Equal(t, "proj.sales.products", ref.FullyQualified())
}

func TestLoadJobSpec_Autodetect(t *testing.T) {
	assert.True(t, LoadJobSpec{}.Autodetect())
	assert.False(t, LoadJobSpec{Schema: bigquery.Schema{
		{Name: "id", Type: bigquery.IntegerFieldType},
	}}.Autodetect())
}
