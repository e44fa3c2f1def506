package validation

import "strings"

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Fields returns the violated field names, for error messages.
func (v Violations) Fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	return fields
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveCents(field string, cents int64, v Violations) {
	if cents <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeCents(field string, cents int64, v Violations) {
	if cents < 0 {
		v[field] = "must_not_be_negative"
	}
}

func RangePct(field string, pct, minVal, maxVal float64, v Violations) {
	if pct < minVal || pct > maxVal {
		v[field] = "out_of_range"
	}
}
