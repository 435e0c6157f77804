package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/churn-pipeline/pkg/model"
)

func TestSummarize(t *testing.T) {
	table := model.NewTable([]string{"tenure", "contract"})
	table.Rows = append(table.Rows,
		model.Row{"tenure": int64(1), "contract": "Month-to-month"},
		model.Row{"tenure": int64(3), "contract": "One year"},
		model.Row{"tenure": nil, "contract": "Two year"},
	)

	metadata := Summarize("t", table)
	require.Len(t, metadata.Columns, 2)
	assert.Equal(t, 3, metadata.RowCount)
	assert.Equal(t, 1, metadata.TotalMissing())

	tenure := metadata.GetColumnByName("tenure")
	require.NotNil(t, tenure)
	assert.Equal(t, model.DataTypeInt, tenure.DataType)
	assert.Equal(t, 1, tenure.MissingCount)
	assert.Equal(t, 2, tenure.NonNullCount)
	assert.True(t, tenure.HasStats)
	assert.InDelta(t, 2.0, tenure.Mean, 1e-9)
	assert.InDelta(t, 1.4142135623730951, tenure.Std, 1e-9)
	assert.Equal(t, 1.0, tenure.Min)
	assert.Equal(t, 3.0, tenure.Max)

	contract := metadata.GetColumnByName("contract")
	require.NotNil(t, contract)
	assert.Equal(t, model.DataTypeObject, contract.DataType)
	assert.False(t, contract.HasStats)
	assert.Equal(t, len("Month-to-month"), contract.MaxLength)
}

func TestMetadataTable(t *testing.T) {
	metadata := &model.TableMetadata{
		Columns: []model.Column{
			{Name: "a", DataType: model.DataTypeFloat, PgType: "DOUBLE PRECISION", NonNullCount: 2,
				HasStats: true, Mean: 1.5, Std: 0.5, Min: 1, Max: 2},
			{Name: "b", DataType: model.DataTypeObject, PgType: "VARCHAR(50)", NonNullCount: 2},
		},
	}

	table := MetadataTable(metadata)
	assert.Equal(t, metadataColumns, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "DOUBLE PRECISION", table.Rows[0]["pg_type"])
	assert.Equal(t, int64(0), table.Rows[0]["missing_count"])
	assert.Equal(t, 1.5, table.Rows[0]["mean"])
	assert.Nil(t, table.Rows[1]["mean"])
}
