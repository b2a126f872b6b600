package template

import (
	"encoding/json"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var numberPrinter = message.NewPrinter(language.Und)

// Stringify renders a resolved value for interpolation: containers as JSON,
// numbers as natural (non-grouped) decimals, booleans as "true"/"false",
// and nil/missing as "".
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return numberPrinter.Sprintf("%v", number.Decimal(val, number.NoSeparator()))
	case int64:
		return numberPrinter.Sprintf("%v", number.Decimal(val, number.NoSeparator()))
	case float64:
		return numberPrinter.Sprintf("%v", number.Decimal(val, number.NoSeparator()))
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
