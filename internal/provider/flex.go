package provider

import (
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// flexString decodes a string, number, bool or a {"name": ...} object into
// text. Anything else decodes to empty rather than failing the payload.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var v any
	if err := sonic.Unmarshal(data, &v); err != nil {
		*f = ""
		return nil
	}
	*f = flexString(anyToText(v))
	return nil
}

// flexInt decodes an integer given as a number or numeric string. Invalid
// values decode to zero with ok=false.
type flexInt struct {
	Value int
	OK    bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var v any
	if err := sonic.Unmarshal(data, &v); err != nil {
		*f = flexInt{}
		return nil
	}
	f.Value, f.OK = anyToInt(v)
	return nil
}

// flexValue renders a stat cell: strings trimmed, numbers verbatim, bools as
// yes/no and null as "-".
type flexValue string

func (f *flexValue) UnmarshalJSON(data []byte) error {
	var v any
	if err := sonic.Unmarshal(data, &v); err != nil {
		*f = "-"
		return nil
	}
	switch t := v.(type) {
	case nil:
		*f = "-"
	case bool:
		if t {
			*f = "yes"
		} else {
			*f = "no"
		}
	default:
		*f = flexValue(anyToText(v))
	}
	return nil
}

func anyToText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		for _, key := range []string{"name", "shortName"} {
			if s, ok := t[key].(string); ok {
				return strings.TrimSpace(s)
			}
		}
		if team, ok := t["team"].(map[string]any); ok {
			if s, ok := team["name"].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func anyToInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
