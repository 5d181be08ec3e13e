package spellcheck

import (
	"bufio"
	"embed"
	"log"
	"strings"
)

//go:embed data/words.txt
var embeddedFS embed.FS

// loadEmbeddedDictionary returns the lowercased words of the embedded
// dictionary file.
func loadEmbeddedDictionary() []string {
	file, err := embeddedFS.Open("data/words.txt")
	if err != nil {
		log.Printf("[SpellCheck] Error opening embedded dictionary: %v", err)
		return nil
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			words = append(words, strings.ToLower(word))
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("[SpellCheck] Error reading embedded dictionary: %v", err)
	}

	return words
}
