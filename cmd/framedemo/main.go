// Command framedemo exercises the frame helpers on random data: dedup-and-sort
// of a 100-byte frame, then a timed linear vs binary search for one value in a
// 500-byte frame.
package main

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/pscheid92/sockpulse/internal/frame"
)

const (
	smallFrameLen = 100
	largeFrameLen = 500
	searchByte    = 62
)

func randomFrame(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(rand.IntN(256))
	}
	return data
}

func printFrame(data []byte) {
	for i, b := range data {
		fmt.Printf("%d ", b)
		if (i+1)%10 == 0 {
			fmt.Println()
		}
	}
	fmt.Println()
}

func main() {
	fmt.Printf("\n=== Process %d-byte frame ===\n\n", smallFrameLen)
	data := randomFrame(smallFrameLen)
	fmt.Println("Original data:")
	printFrame(data)

	result := frame.Process(data)
	fmt.Printf("Processed result (%d unique bytes):\n", len(result))
	printFrame(result)

	fmt.Printf("\n=== Search for byte %d in %d-byte frame ===\n\n", searchByte, largeFrameLen)
	large := randomFrame(largeFrameLen)

	// Guarantee exactly one known occurrence of the target
	for i, b := range large {
		for b == searchByte {
			b = byte(rand.IntN(256))
			large[i] = b
		}
	}
	pos := rand.IntN(largeFrameLen)
	large[pos] = searchByte
	fmt.Printf("Searching for value %d (inserted at position %d)\n", searchByte, pos)

	start := time.Now()
	linearResult := frame.LinearSearch(large, searchByte)
	fmt.Printf("Linear search result: %d (%s)\n", linearResult, time.Since(start))

	sorted := slices.Clone(large)
	slices.Sort(sorted)

	start = time.Now()
	binaryResult := frame.BinarySearch(sorted, searchByte)
	fmt.Printf("Binary search result in sorted frame: %d (%s)\n", binaryResult, time.Since(start))
}
