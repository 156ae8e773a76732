package interactive

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/mailbox-go/mailbox-go/pkg/mailbox"
)

// ParseValue converts a command argument to a value: null, true/false,
// integers and bracketed lists like [a,b,3] are recognized, anything else
// is a string.
func ParseValue(s string) any {
	s = strings.TrimSpace(s)
	switch s {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner := strings.TrimSpace(s[1 : len(s)-1])
		list := []any{}
		if inner == "" {
			return list
		}
		for _, elem := range strings.Split(inner, ",") {
			list = append(list, ParseValue(elem))
		}
		return list
	}

	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

// FormatValue renders a value the way ParseValue reads it.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil, mailbox.NullValue:
		return "null"
	case []any:
		parts := make([]string, len(v))
		for i, elem := range v {
			parts[i] = FormatValue(elem)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprint(v)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
