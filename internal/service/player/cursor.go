package player

// nextIndex is the single rule for advancing the cursor.
func nextIndex(current, length int) int {
	if length <= 0 {
		return 0
	}

	return (current + 1) % length
}

// currentIndex maps a stored index onto the playlist, treating anything out of range
// as the start.
func currentIndex(current, length int) int {
	if current < 0 || current >= length {
		return 0
	}

	return current
}

// upcomingIndexes walks nextIndex from current, so the order is the one Skip takes.
// The walk stops before it comes back to the current song, unless that song is the
// only one.
func upcomingIndexes(current, length, n int) []int {
	if limit := max(length-1, 1); n > limit {
		n = limit
	}
	if length == 0 || n <= 0 {
		return nil
	}

	indexes := make([]int, 0, n)
	index := currentIndex(current, length)
	for i := 0; i < n; i++ {
		index = nextIndex(index, length)
		indexes = append(indexes, index)
	}

	return indexes
}
