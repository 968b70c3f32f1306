package google

import (
	"fmt"
	"strings"

	"housebudget/internal/core"
)

// parseRows maps a values matrix into candidates using its first row as
// header. Header cells are matched case-insensitively, with spaces treated
// as underscores ("Bank Name" == "bank_name"). Blank rows are skipped;
// missing cells are left out so validation rejects the row.
func parseRows(values [][]interface{}) ([]core.Candidate, error) {
	if len(values) == 0 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, h := range values[0] {
		key := strings.ToLower(strings.TrimSpace(fmt.Sprint(h)))
		key = strings.ReplaceAll(key, " ", "_")
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	var missing []string
	for _, f := range core.RequiredFields {
		if _, ok := cols[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected sheet header: missing %s", strings.Join(missing, ","))
	}

	out := make([]core.Candidate, 0, len(values)-1)
	for _, row := range values[1:] {
		if blank(row) {
			continue
		}
		c := core.Candidate{}
		for _, f := range core.RequiredFields {
			idx := cols[f]
			if idx >= len(row) {
				continue
			}
			v := row[idx]
			if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
				continue
			}
			c[f] = v
		}
		out = append(out, c)
	}
	return out, nil
}

func blank(row []interface{}) bool {
	for _, v := range row {
		if strings.TrimSpace(fmt.Sprint(v)) != "" {
			return false
		}
	}
	return true
}
