package analyze

import (
	"strings"
	"unicode"
)

// fleschKincaidGrade computes the Flesch-Kincaid grade level of text:
//
//	0.39*(words/sentences) + 11.8*(syllables/words) - 15.59
//
// Returns ok=false for text with no scorable words.
func fleschKincaidGrade(text string) (float64, bool) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0, false
	}

	sentences := countSentences(text)
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	scorable := 0
	for _, word := range words {
		if n := countSyllables(word); n > 0 {
			syllables += n
			scorable++
		}
	}
	if scorable == 0 {
		return 0, false
	}

	grade := 0.39*(float64(scorable)/float64(sentences)) +
		11.8*(float64(syllables)/float64(scorable)) - 15.59
	return grade, true
}

// countSentences counts sentence terminators, collapsing runs like "?!"
// or "..." into a single sentence boundary.
func countSentences(text string) int {
	count := 0
	inTerminator := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if !inTerminator {
				count++
				inTerminator = true
			}
		default:
			inTerminator = false
		}
	}
	return count
}

// countSyllables estimates syllables in a word by counting vowel groups,
// discounting a trailing silent "e". Words with no vowels score zero.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	count := 0
	prevVowel := false
	lastVowelRune := rune(0)
	for _, r := range word {
		if !unicode.IsLetter(r) {
			prevVowel = false
			continue
		}
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
			lastVowelRune = r
		}
		prevVowel = vowel
	}
	if count > 1 && lastVowelRune == 'e' && strings.HasSuffix(word, "e") {
		count--
	}
	return count
}
