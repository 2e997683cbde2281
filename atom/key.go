package atom

import "strconv"

// KeyOf renders v as a canonical string suitable for use as a map key
// wherever atoms need to be grouped by equality (dedup buckets, pattern
// literal summaries, the selective-activation index). It is a hint, not a
// substitute for Equal: Number keys normalize int/float to the same
// representation so value-equal numbers collide into one bucket, and NaN
// collides with other NaNs even though NaN.Equal(NaN) is false — callers
// that need exact identity (qstore's dedup, for instance) must still
// confirm with Equal after narrowing by key.
func KeyOf(v Value) string {
	switch t := v.(type) {
	case Word:
		return "W:" + t.String()
	case String:
		return "S:" + string(t)
	case Number:
		return "N:" + strconv.FormatFloat(t.Float64(), 'g', -1, 64)
	case PatternVar:
		return "V:" + t.name
	case wildcard:
		return "*"
	default:
		return "?:" + v.String()
	}
}
