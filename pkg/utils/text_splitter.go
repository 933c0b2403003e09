package utils

import "strings"

// separators are tried in order when looking for a chunk boundary
var separators = []string{"\n\n", "\n", ". ", " "}

// SplitText splits text into chunks of at most chunkSize runes, consecutive chunks sharing about
// overlap runes. A chunk ends on the last paragraph, line, sentence or word break found in its
// second half; otherwise it is cut at chunkSize. Blank chunks are dropped.
func SplitText(text string, chunkSize int, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		return []string{text}
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	runes := []rune(text)
	totalLen := len(runes)
	if totalLen <= chunkSize {
		return []string{text}
	}

	var chunks []string
	for start := 0; start < totalLen; {
		end := start + chunkSize
		if end >= totalLen {
			end = totalLen
		} else {
			end = breakPoint(runes, start, end)
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == totalLen {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		// start the overlap on a word
		for i := next; i < end; i++ {
			if runes[i] == ' ' || runes[i] == '\n' {
				next = i + 1
				break
			}
		}
		start = next
	}

	return chunks
}

func breakPoint(runes []rune, start, end int) int {
	window := string(runes[start:end])
	half := len(window) / 2
	for _, sep := range separators {
		if i := strings.LastIndex(window, sep); i >= half {
			return start + len([]rune(window[:i+len(sep)]))
		}
	}
	return end
}
