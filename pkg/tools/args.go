package tools

// Argument accessors assume the schema has already been checked, so a
// present value has the declared JSON type.

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func optionalStringArg(args map[string]interface{}, key, def string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return def
}

func boolArg(args map[string]interface{}, key string, def bool) bool {
	if b, ok := args[key].(bool); ok {
		return b
	}
	return def
}

func intArg(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return def
}
