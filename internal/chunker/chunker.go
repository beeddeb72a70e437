// Package chunker splits oversized input text into request-sized pieces that
// respect word boundaries, so each piece fits one upstream synthesis request.
package chunker

// Split divides text into ordered chunks of at most maxChars characters each.
// It counts characters (runes), not bytes, because the upstream API limit is
// character-based.
//
// Text that fits within maxChars is returned unchanged as a single chunk
// (empty input yields one empty chunk). Otherwise the split point is the
// rightmost space at or before the limit, and the separating space is
// dropped; when a single word exceeds the limit a hard cut is made at exactly
// maxChars.
//
// Split is a pure function and is safe for concurrent use.
func Split(text string, maxChars int) []string {
	if maxChars < 1 {
		maxChars = 1
	}

	runes := []rune(text)
	if len(runes) <= maxChars {
		return []string{text}
	}

	var chunks []string
	for len(runes) > maxChars {
		cut := lastSpaceWithin(runes, maxChars)
		if cut >= 0 {
			chunks = append(chunks, string(runes[:cut]))
			runes = runes[cut+1:] // skip the separating space
		} else {
			chunks = append(chunks, string(runes[:maxChars]))
			runes = runes[maxChars:]
		}
	}

	return append(chunks, string(runes))
}

// lastSpaceWithin returns the index of the rightmost space in runes[:limit+1],
// or -1 if there is none. The window includes the limit itself: a space
// sitting exactly at the limit separates two complete words, and the left one
// fills the chunk to capacity.
func lastSpaceWithin(runes []rune, limit int) int {
	for i := limit; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
