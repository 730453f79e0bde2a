// Package textsplit splits extracted document text into overlapping chunks
// along semantic boundaries: paragraph breaks first, then sentence ends, then
// whitespace, falling back to a hard character cut.
package textsplit

const (
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 200
)

var sentenceEnders = map[rune]struct{}{
	'.': {}, '!': {}, '?': {},
	'。': {}, '！': {}, '？': {},
}

type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size/2 {
		overlap = size / 8
	}
	return &Splitter{ChunkSize: size, ChunkOverlap: overlap}
}

// Split returns the ordered chunk sequence for text. The output is fully
// deterministic for a given input and parameters. Text shorter than the chunk
// size yields exactly one chunk.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= s.ChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		cut := s.splitPoint(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))

		next := cut - s.ChunkOverlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// splitPoint picks the best boundary in (lowest, end], preferring paragraph
// breaks, then line breaks, then sentence ends, then whitespace. The search
// floor keeps chunks from degenerating below half the target size.
func (s *Splitter) splitPoint(runes []rune, start, end int) int {
	lowest := start + s.ChunkSize/2

	for i := end - 1; i > lowest; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}
	for i := end - 1; i > lowest; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	for i := end - 1; i > lowest; i-- {
		if _, ok := sentenceEnders[runes[i]]; ok {
			return i + 1
		}
	}
	for i := end - 1; i > lowest; i-- {
		if runes[i] == ' ' || runes[i] == '\t' {
			return i + 1
		}
	}
	return end
}
