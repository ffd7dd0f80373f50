package presto

import (
	"fmt"
	"strings"
	"time"
)

// Bind renders args into ? placeholders with strict literal escaping. The
// statement API has no server-side prepared statements, so every user-supplied
// value must pass through here rather than being interpolated directly.
func Bind(stmt string, args ...any) (string, error) {
	if len(args) == 0 {
		return stmt, nil
	}

	var b strings.Builder
	b.Grow(len(stmt) + 16*len(args))

	argIdx := 0
	inString := false
	for _, r := range stmt {
		switch {
		case r == '\'':
			inString = !inString
			b.WriteRune(r)
		case r == '?' && !inString:
			if argIdx >= len(args) {
				return "", fmt.Errorf("presto: not enough args for placeholders")
			}
			lit, err := literal(args[argIdx])
			if err != nil {
				return "", err
			}
			b.WriteString(lit)
			argIdx++
		default:
			b.WriteRune(r)
		}
	}
	if argIdx != len(args) {
		return "", fmt.Errorf("presto: %d args provided, %d placeholders found", len(args), argIdx)
	}
	return b.String(), nil
}

func literal(arg any) (string, error) {
	switch v := arg.(type) {
	case nil:
		return "NULL", nil
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return fmt.Sprintf("%d", v), nil
	case int32:
		return fmt.Sprintf("%d", v), nil
	case int64:
		return fmt.Sprintf("%d", v), nil
	case float64:
		return fmt.Sprintf("%g", v), nil
	case *int:
		if v == nil {
			return "NULL", nil
		}
		return fmt.Sprintf("%d", *v), nil
	case time.Time:
		return "TIMESTAMP '" + v.UTC().Format("2006-01-02 15:04:05.000") + "'", nil
	default:
		return "", fmt.Errorf("presto: unsupported bind type %T", arg)
	}
}
