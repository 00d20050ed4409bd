package utils

func IntPtr(i int) *int {
	return &i
}

func StringPtr(s string) *string {
	return &s
}

// PrefixSliceOfStrings qualifies column names with a table alias.
func PrefixSliceOfStrings(prefix string, input []string, ignore ...string) []string {
	skip := make(map[string]bool, len(ignore))
	for _, s := range ignore {
		skip[s] = true
	}

	out := make([]string, 0, len(input))
	for _, s := range input {
		if skip[s] {
			out = append(out, s)
			continue
		}
		out = append(out, prefix+"."+s)
	}
	return out
}
