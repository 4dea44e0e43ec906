package pipeline

import (
	"fmt"
	"strings"
)

// validateHeader checks the header row for the required columns and returns
// their positions. Header names are compared after trimming whitespace; when
// a name repeats, the first occurrence wins.
func validateHeader(header []string, required []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}

	var missing []string
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &ParseError{
			Column: strings.Join(missing, ","),
			Err:    fmt.Errorf("missing required column(s)"),
		}
	}
	return cols, nil
}
