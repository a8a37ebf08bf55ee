// Package dataset serves the base passages validator tasks are built from.
package dataset

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
)

const (
	MinSentences = 15
	MaxSentences = 30
)

//go:embed data/passages.json
var embeddedPassages []byte

var (
	ErrEmpty    = errors.New("dataset has no passages")
	sentenceRes = regexp.MustCompile(`[^.!?]+[.!?]+`)
)

type Passage struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type Dataset struct {
	mu       sync.Mutex
	rng      *rand.Rand
	passages []Passage
}

// New loads the embedded passages. A nil rng uses the global source.
func New(rng *rand.Rand) (*Dataset, error) {
	return Load(embeddedPassages, rng)
}

// Load parses a JSON array of passages.
func Load(data []byte, rng *rand.Rand) (*Dataset, error) {
	var passages []Passage
	if err := sonic.Unmarshal(data, &passages); err != nil {
		return nil, fmt.Errorf("decode passages: %w", err)
	}
	passages = nonEmpty(passages)
	if len(passages) == 0 {
		return nil, ErrEmpty
	}
	return &Dataset{rng: rng, passages: passages}, nil
}

func (d *Dataset) Len() int {
	return len(d.passages)
}

func (d *Dataset) Sample() Passage {
	return d.passages[d.intN(len(d.passages))]
}

// Context samples a passage and keeps its first 15 to 30 sentences.
func (d *Dataset) Context() Passage {
	p := d.Sample()
	p.Text = Truncate(p.Text, MinSentences+d.intN(MaxSentences-MinSentences+1))
	return p
}

func (d *Dataset) intN(n int) int {
	if d.rng == nil {
		return rand.IntN(n)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.IntN(n)
}

// Truncate keeps the first n sentences of text.
func Truncate(text string, n int) string {
	sentences := SplitSentences(text)
	if n < len(sentences) {
		sentences = sentences[:n]
	}
	return strings.Join(sentences, " ")
}

// SplitSentences splits text on terminal punctuation. Trailing text without
// a terminator is kept as the last sentence.
func SplitSentences(text string) []string {
	matches := sentenceRes.FindAllStringIndex(text, -1)
	out := make([]string, 0, len(matches)+1)
	end := 0
	for _, m := range matches {
		if s := strings.TrimSpace(text[m[0]:m[1]]); s != "" {
			out = append(out, s)
		}
		end = m[1]
	}
	if tail := strings.TrimSpace(text[end:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

func nonEmpty(passages []Passage) []Passage {
	out := passages[:0]
	for _, p := range passages {
		if strings.TrimSpace(p.Text) != "" {
			out = append(out, p)
		}
	}
	return out
}
