// Package frame holds pure helpers for processing fixed-size byte frames:
// dedup-and-sort of a frame, and value search within one.
package frame

// Process returns the distinct byte values of data in ascending order.
// A 256-bucket occurrence count makes the result naturally sorted without a
// comparison sort.
func Process(data []byte) []byte {
	var count [256]uint16
	for _, b := range data {
		count[b]++
	}

	result := make([]byte, 0, 256)
	for v := range 256 {
		if count[v] > 0 {
			result = append(result, byte(v))
		}
	}
	return result
}

// LinearSearch returns the index of the first occurrence of target in data,
// or -1 if absent.
func LinearSearch(data []byte, target byte) int {
	for i, b := range data {
		if b == target {
			return i
		}
	}
	return -1
}

// BinarySearch returns an index of target in sorted data, or -1 if absent.
// The input must be sorted ascending; with duplicates present any matching
// index may be returned.
func BinarySearch(sorted []byte, target byte) int {
	left, right := 0, len(sorted)-1
	for left <= right {
		mid := left + (right-left)/2
		switch {
		case sorted[mid] == target:
			return mid
		case sorted[mid] < target:
			left = mid + 1
		default:
			right = mid - 1
		}
	}
	return -1
}
