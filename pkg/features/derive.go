// pkg/features/derive.go
package features

import (
	"github.com/David-Botos/churn-pipeline/pkg/dataset"
)

// TenureBucket is a half-open (Lower, Upper] tenure range
type TenureBucket struct {
	Lower float64
	Upper float64
	Label string
}

// TenureBuckets are the fixed tenure groups in increasing order.
// The lowest bucket also includes its lower bound (tenure 0).
var TenureBuckets = []TenureBucket{
	{Lower: 0, Upper: 12, Label: "0-12"},
	{Lower: 12, Upper: 24, Label: "12-24"},
	{Lower: 24, Upper: 48, Label: "24-48"},
	{Lower: 48, Upper: 60, Label: "48-60"},
	{Lower: 60, Upper: 72, Label: "60-72"},
}

// OverflowTenureLabel labels tenure beyond the last bucket
const OverflowTenureLabel = "72+"

// TenureGroup returns the bucket label for a tenure value. Negative or
// non-numeric tenure has no label and yields nil.
func TenureGroup(tenure interface{}) interface{} {
	t, err := dataset.ToFloat(tenure)
	if err != nil || t < TenureBuckets[0].Lower {
		return nil
	}
	if t == TenureBuckets[0].Lower {
		return TenureBuckets[0].Label
	}
	for _, b := range TenureBuckets {
		if t > b.Lower && t <= b.Upper {
			return b.Label
		}
	}
	return OverflowTenureLabel
}

// MonthlyChargeRatio computes monthlycharges / (tenure + 1). The +1 keeps
// the ratio defined for customers with zero tenure. Unparseable inputs,
// or a zero denominator, yield nil.
func MonthlyChargeRatio(monthlyCharges, tenure interface{}) interface{} {
	charges, err := dataset.ToFloat(monthlyCharges)
	if err != nil {
		return nil
	}
	t, err := dataset.ToFloat(tenure)
	if err != nil || t+1 == 0 {
		return nil
	}
	return charges / (t + 1)
}

// YesNo recodes "Yes" to 1 and "No" to 0. Any other value, including
// "No internet service", has no mapping and yields nil.
func YesNo(value interface{}) interface{} {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	switch s {
	case "Yes":
		return int64(1)
	case "No":
		return int64(0)
	default:
		return nil
	}
}

// AnyYes returns 1 if any of the values equals "Yes", else 0
func AnyYes(values ...interface{}) int64 {
	for _, v := range values {
		if s, ok := v.(string); ok && s == "Yes" {
			return 1
		}
	}
	return 0
}
