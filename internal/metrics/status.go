package metrics

import "sort"

// StatusBucket represents the aggregated count for an operation/code pair.
type StatusBucket struct {
	Operation string
	Code      string
	Count     int
}

// FlattenStatusBuckets converts a nested operation->status map into a sorted slice of StatusBucket rows.
// Rows are sorted by descending count, then by operation/code for stability.
func FlattenStatusBuckets(buckets map[string]map[string]int) []StatusBucket {
	if len(buckets) == 0 {
		return nil
	}
	rows := make([]StatusBucket, 0)
	for operation, codes := range buckets {
		for code, count := range codes {
			rows = append(rows, StatusBucket{Operation: operation, Code: code, Count: count})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			if rows[i].Operation == rows[j].Operation {
				return rows[i].Code < rows[j].Code
			}
			return rows[i].Operation < rows[j].Operation
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
