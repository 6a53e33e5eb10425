package repository

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/forgo/jobs/api/internal/database"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// recordKeyPattern bounds the key part of ids accepted from clients.
var recordKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// recordID normalizes "key" or "table:key" into "table:key".
// ok is false when the id names another table or has an unusable key.
func recordID(table, id string) (string, bool) {
	id = strings.TrimSpace(id)
	key := id
	if tb, rest, found := strings.Cut(id, ":"); found {
		if tb != table {
			return "", false
		}
		key = rest
	}
	if !recordKeyPattern.MatchString(key) {
		return "", false
	}
	return table + ":" + key, true
}

// isUniqueConstraintError checks if an error is a unique index violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unique") ||
		strings.Contains(errStr, "already contains") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "already exists")
}

// convertSurrealID converts a SurrealDB ID (which may be a complex object) to a string
func convertSurrealID(id interface{}) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case models.RecordID:
		return fmt.Sprintf("%s:%v", v.Table, v.ID)
	case *models.RecordID:
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%s:%v", v.Table, v.ID)
	case map[string]interface{}:
		tb, _ := v["tb"].(string)
		if tb == "" {
			tb, _ = v["Table"].(string)
		}
		key := extractIDValue(firstPresent(v, "id", "ID"))
		if tb != "" && key != "" {
			return tb + ":" + key
		}
		return key
	}
	return fmt.Sprintf("%v", id)
}

// extractIDValue extracts the key of a record id which may be nested
func extractIDValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]interface{}:
		if s, ok := v["String"].(string); ok {
			return s
		}
	}
	return fmt.Sprintf("%v", val)
}

func firstPresent(m map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

// parseTime parses time from the formats the client may return
func parseTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

// getString extracts a string value from a map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// recordMap unwraps a record returned by QueryOne or found in a result array.
func recordMap(result interface{}) (map[string]interface{}, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}
	if arr, ok := result.([]interface{}); ok {
		if len(arr) == 0 {
			return nil, database.ErrNotFound
		}
		result = arr[0]
	}
	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}
	return data, nil
}
