package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/churn-pipeline/pkg/model"
)

func TestMapColumnType(t *testing.T) {
	c := NewTypeConverter(zaptest.NewLogger(t))

	cases := []struct {
		col       model.Column
		postgres  string
		snowflake string
	}{
		{model.Column{DataType: model.DataTypeInt}, "BIGINT", "NUMBER(38,0)"},
		{model.Column{DataType: model.DataTypeFloat}, "DOUBLE PRECISION", "FLOAT"},
		{model.Column{DataType: model.DataTypeObject}, "TEXT", "VARCHAR"},
		{model.Column{DataType: model.DataTypeObject, MaxLength: 10}, "VARCHAR(50)", "VARCHAR(50)"},
		{model.Column{DataType: model.DataTypeObject, MaxLength: 51}, "VARCHAR(100)", "VARCHAR(100)"},
		{model.Column{DataType: model.DataTypeObject, MaxLength: 200}, "VARCHAR(255)", "VARCHAR(255)"},
		{model.Column{DataType: model.DataTypeObject, MaxLength: 256}, "VARCHAR(1000)", "VARCHAR(1000)"},
		{model.Column{DataType: model.DataTypeObject, MaxLength: 5000}, "TEXT", "VARCHAR"},
	}

	for _, tc := range cases {
		pg, err := c.MapColumnType(tc.col, DialectPostgres)
		require.NoError(t, err)
		assert.Equal(t, tc.postgres, pg, "%+v", tc.col)

		sf, err := c.MapColumnType(tc.col, DialectSnowflake)
		require.NoError(t, err)
		assert.Equal(t, tc.snowflake, sf, "%+v", tc.col)
	}

	fallback, err := c.MapColumnType(model.Column{Name: "x", DataType: "bool"}, DialectPostgres)
	assert.Error(t, err)
	assert.Equal(t, "TEXT", fallback)
}

func TestMapColumnTypeWithoutOptimization(t *testing.T) {
	c := NewTypeConverterWithConfig(nil, TypeConverterConfig{MaxVarcharLength: 100})

	sqlType, err := c.MapColumnType(model.Column{DataType: model.DataTypeObject, MaxLength: 10}, DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, "TEXT", sqlType)
}

func TestGenerateColumnDefinitions(t *testing.T) {
	c := NewTypeConverter(zaptest.NewLogger(t))
	metadata := &model.TableMetadata{
		Columns: []model.Column{
			{Name: "customerid", DataType: model.DataTypeObject, MaxLength: 10},
			{Name: "tenure", DataType: model.DataTypeInt},
			{Name: "monthly charge", DataType: model.DataTypeFloat, MissingCount: 1},
		},
	}

	defs, err := c.GenerateColumnDefinitions(metadata, DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`"customerid" VARCHAR(50) NOT NULL`,
		`"tenure" BIGINT NULL`,
		`"monthly charge" DOUBLE PRECISION NULL`,
	}, defs)

	c.ApplyPgTypes(metadata)
	assert.Equal(t, "BIGINT", metadata.Columns[1].PgType)
}

func TestQualifiedName(t *testing.T) {
	assert.Equal(t, `"features"."engineered_churn"`, QualifiedName("features", "engineered_churn"))
	assert.Equal(t, `"t"`, QualifiedName("", "t"))
	assert.Equal(t, `"a""b"`, QuoteIdentifier(`a"b`))
}

func TestConvertValue(t *testing.T) {
	c := NewTypeConverter(zaptest.NewLogger(t))

	v, err := c.ConvertValue("42", model.DataTypeInt)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = c.ConvertValue("1.0", model.DataTypeInt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = c.ConvertValue("1.5", model.DataTypeInt)
	assert.Error(t, err)

	v, err = c.ConvertValue("29.85", model.DataTypeFloat)
	require.NoError(t, err)
	assert.Equal(t, 29.85, v)

	v, err = c.ConvertValue(" ", model.DataTypeFloat)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = c.ConvertValue("0-12", model.DataTypeObject)
	require.NoError(t, err)
	assert.Equal(t, "0-12", v)
}

func TestConvertRow(t *testing.T) {
	c := NewTypeConverter(zaptest.NewLogger(t))
	metadata := &model.TableMetadata{
		Columns: []model.Column{
			{Name: "tenure", DataType: model.DataTypeInt},
			{Name: "churn", DataType: model.DataTypeInt},
			{Name: "group", DataType: model.DataTypeObject},
		},
	}

	values, err := c.ConvertRow(model.Row{"tenure": "3", "churn": "", "group": "0-12"}, metadata)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(3), nil, "0-12"}, values)

	_, err = c.ConvertRow(model.Row{"tenure": "x"}, metadata)
	assert.ErrorContains(t, err, "column tenure")
}
