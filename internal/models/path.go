package models

import (
	"strconv"
	"strings"
)

// JoinPath appends id to a slash-joined materialized path
func JoinPath(parentPath string, id int64) string {
	parts := make([]string, 0, 8)
	for _, p := range strings.Split(parentPath, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, strconv.FormatInt(id, 10))
	return strings.Join(parts, "/")
}
