package ingest

// MapCategory translates external taxonomy ids to an internal category
// id. The external ids are tried in the order given; the first one
// present in the table wins, and defaultID covers the rest. Ids absent
// from the table are not an error.
func MapCategory(externalIDs []int, table map[int]int64, defaultID int64) int64 {
	for _, ext := range externalIDs {
		if internal, ok := table[ext]; ok {
			return internal
		}
	}
	return defaultID
}
