package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTenureGroup(t *testing.T) {
	cases := []struct {
		tenure interface{}
		want   interface{}
	}{
		{int64(0), "0-12"},
		{int64(1), "0-12"},
		{int64(12), "0-12"},
		{int64(13), "12-24"},
		{int64(24), "12-24"},
		{int64(25), "24-48"},
		{int64(48), "24-48"},
		{int64(60), "48-60"},
		{int64(72), "60-72"},
		{int64(73), OverflowTenureLabel},
		{"12", "0-12"},
		{int64(-1), nil},
		{"abc", nil},
		{nil, nil},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, TenureGroup(tc.tenure), "tenure %#v", tc.tenure)
	}
}

func TestMonthlyChargeRatio(t *testing.T) {
	assert.Equal(t, 70.0, MonthlyChargeRatio("70", "0"))
	assert.Equal(t, 29.85/2, MonthlyChargeRatio(29.85, int64(1)))
	assert.Nil(t, MonthlyChargeRatio("", int64(1)))
	assert.Nil(t, MonthlyChargeRatio(70.0, "x"))
	assert.Nil(t, MonthlyChargeRatio(70.0, int64(-1)))
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, int64(1), YesNo("Yes"))
	assert.Equal(t, int64(0), YesNo("No"))
	assert.Nil(t, YesNo("No internet service"))
	assert.Nil(t, YesNo("yes"))
	assert.Nil(t, YesNo(nil))
}

func TestAnyYes(t *testing.T) {
	assert.Equal(t, int64(1), AnyYes("Yes", "No"))
	assert.Equal(t, int64(1), AnyYes("No", "Yes"))
	assert.Equal(t, int64(0), AnyYes("No", "No internet service"))
	assert.Equal(t, int64(0), AnyYes(nil, ""))
}
