package corpus

import (
	"bytes"
	"math/rand/v2"
	"sync"
)

// TextSize is the length of the generated scanning text.
const TextSize = 1 << 19

var textWords = []string{
	"Sherlock", "Holmes", "Watson", "Lestrade", "Baker", "Street", "London",
	"the", "of", "and", "to", "a", "in", "that", "it", "was", "his", "he",
	"I", "you", "had", "with", "my", "which", "upon", "is", "at", "have",
	"said", "little", "man", "door", "room", "case", "matter", "lady",
	"morning", "evening", "nothing", "something", "being", "thing",
	"looking", "standing", "sitting", "remarking", "observing",
	"waiting", "during", "king", "ring", "spring", "bring", "sing",
}

var (
	textOnce sync.Once
	text     []byte
)

// Text returns a deterministic English-like text of TextSize bytes that
// mentions the detective and his companion often enough for the default
// sliding-window patterns to find matches. The returned slice is shared;
// callers must not modify it.
func Text() []byte {
	textOnce.Do(func() {
		text = generateText(rand.New(rand.NewPCG(0x5eed, 0x1887)), TextSize)
	})
	return text
}

func generateText(r *rand.Rand, size int) []byte {
	var buf bytes.Buffer
	buf.Grow(size + 64)
	sentence := 0
	for buf.Len() < size {
		switch n := r.IntN(40); {
		case n == 0:
			buf.WriteString("Sherlock Holmes")
		case n == 1:
			buf.WriteString("Sherlock  Holmes")
		case n == 2:
			buf.WriteString("Watson")
		default:
			buf.WriteString(textWords[r.IntN(len(textWords))])
		}
		sentence++
		switch {
		case sentence > 8 && r.IntN(6) == 0:
			buf.WriteString(".\n")
			sentence = 0
		case r.IntN(12) == 0:
			buf.WriteString(", ")
		default:
			buf.WriteByte(' ')
		}
	}
	return buf.Bytes()[:size]
}
