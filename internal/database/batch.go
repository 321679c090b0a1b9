package database

// inBatchSize bounds the number of bind parameters in one IN list. Postgres
// rejects statements with more than 65535 parameters.
const inBatchSize = 1000

// chunk splits ids into consecutive slices of at most size elements
func chunk(ids []string, size int) [][]string {
	if size <= 0 {
		size = inBatchSize
	}
	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
