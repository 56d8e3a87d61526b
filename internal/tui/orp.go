package tui

import "unicode/utf8"

// orpPosition returns the Optimal Recognition Point index for a word: the
// rune the eye should fixate on for fastest recognition.
func orpPosition(word string) int {
	length := utf8.RuneCountInString(word)
	if length <= 1 {
		return 0
	} else if length <= 5 {
		return 1
	}
	return length / 3
}

// splitAtORP splits a word into the runes before, at, and after its ORP.
func splitAtORP(word string) (before, focus, after string) {
	runes := []rune(word)
	if len(runes) == 0 {
		return "", "", ""
	}
	orp := orpPosition(word)
	if orp >= len(runes) {
		orp = len(runes) - 1
	}
	before = string(runes[:orp])
	focus = string(runes[orp])
	if orp+1 < len(runes) {
		after = string(runes[orp+1:])
	}
	return before, focus, after
}
