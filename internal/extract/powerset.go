// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

// subsets returns every non-empty ordered sub-combination of the indexes
// 0..n-1: all single indexes, then all pairs, and so on, each in
// lexicographic order. There are 2^n - 1 of them.
func subsets(n int) [][]int {
	var out [][]int
	for size := 1; size <= n; size++ {
		combo := make([]int, size)
		for i := range combo {
			combo[i] = i
		}
		for {
			out = append(out, append([]int(nil), combo...))

			// Advance to the next combination of this size.
			i := size - 1
			for i >= 0 && combo[i] == n-size+i {
				i--
			}
			if i < 0 {
				break
			}
			combo[i]++
			for j := i + 1; j < size; j++ {
				combo[j] = combo[j-1] + 1
			}
		}
	}
	return out
}

// windows returns the n-grams of words. A sequence shorter than n forms a
// single window of its own length.
func windows(words []TaggedWord, n int) [][]TaggedWord {
	if len(words) == 0 {
		return nil
	}
	if len(words) <= n {
		return [][]TaggedWord{words}
	}
	out := make([][]TaggedWord, 0, len(words)-n+1)
	for i := 0; i+n <= len(words); i++ {
		out = append(out, words[i:i+n])
	}
	return out
}
