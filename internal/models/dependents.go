package models

import (
	"fmt"
	"sort"
)

// DeleteMode reports how a delete request was carried out.
type DeleteMode string

const (
	DeleteModeHard DeleteMode = "hard"
	DeleteModeSoft DeleteMode = "soft"
)

// DeleteResult is returned by every successful delete operation.
type DeleteResult struct {
	ID   string     `json:"id"`
	Mode DeleteMode `json:"mode"`
}

func dependentReasons(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for name, n := range counts {
		if n > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	reasons := make([]string, 0, len(names))
	for _, name := range names {
		reasons = append(reasons, fmt.Sprintf("%d %s reference this record", counts[name], name))
	}
	return reasons
}
