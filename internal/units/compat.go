package units

import "strings"

// compatibleWithJigs implements the "Jigs=" compatibility filter shared by
// every non-Jig unit kind (test, trigger, logger, interface): if the field
// is absent the unit is compatible with any jig; otherwise it must name at
// least one jig present in jigs. Field values are split on comma or space,
// matching the original's `s.split(|c| c == ',' || c == ' ')`.
func compatibleWithJigs(field string, present bool, jigs map[string]*Jig) bool {
	if !present {
		return true
	}
	for _, name := range splitJigNames(field) {
		if _, ok := jigs[name]; ok {
			return true
		}
	}
	return false
}

func splitJigNames(field string) []string {
	return strings.FieldsFunc(field, func(r rune) bool {
		return r == ',' || r == ' '
	})
}

func splitCommaTrim(field string) []string {
	if field == "" {
		return nil
	}
	parts := strings.Split(field, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
