// Package splitter cuts normalized text into overlapping bounded-size
// chunks, preferring semantic boundaries: paragraph, then line, then
// sentence, then word, then raw characters as a last resort.
package splitter

import (
	"fmt"
	"strings"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultOverlap is the number of trailing characters carried into
	// the next chunk for continuity across a boundary.
	DefaultOverlap = 200
)

// defaultSeparators, in priority order. The empty string is the last
// resort for unsplittable runs.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits text recursively by a priority-ordered separator list.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// New creates a Splitter. overlap must be smaller than chunkSize.
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("splitter: chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("splitter: overlap must be non-negative, got %d", overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("splitter: overlap %d must be smaller than chunk size %d", overlap, chunkSize)
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}, nil
}

// Default returns a Splitter with the default chunk size and overlap.
func Default() *Splitter {
	s, _ := New(DefaultChunkSize, DefaultOverlap)
	return s
}

// Split cuts text into chunks of at most the configured size, adjacent
// chunks sharing up to the configured overlap. Empty or blank input
// yields no chunks; callers treat that as nothing to index.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	// Pick the earliest separator that actually occurs in the text.
	sep := separators[len(separators)-1]
	var rest []string
	for i, c := range separators {
		if c == "" {
			sep = ""
			rest = nil
			break
		}
		if strings.Contains(text, c) {
			sep = c
			rest = separators[i+1:]
			break
		}
	}

	if sep == "" {
		return s.hardCut(text)
	}

	var final []string
	var good []string
	for _, piece := range splitKeep(text, sep) {
		if len(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		// Oversized piece: flush what we have, then recurse with the
		// lower-priority separators.
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			final = append(final, s.hardCut(piece)...)
		} else {
			final = append(final, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// splitKeep splits text by sep, keeping the separator attached to the
// end of the preceding piece so that concatenating all pieces
// reconstructs the input.
func splitKeep(text, sep string) []string {
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			p = p + sep
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// merge greedily packs pieces into chunks of at most chunkSize, carrying
// up to overlap trailing characters of context into the next chunk.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var current []string
	total := 0

	for _, p := range pieces {
		if total+len(p) > s.chunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
				chunks = append(chunks, chunk)
			}
			// Drop leading pieces until the retained context fits the
			// overlap bound and leaves room for the next piece.
			for len(current) > 0 && (total > s.overlap || total+len(p) > s.chunkSize) {
				total -= len(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += len(p)
	}

	if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// hardCut slices a run with no usable separator into chunkSize windows
// advancing by chunkSize-overlap, respecting rune boundaries.
func (s *Splitter) hardCut(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
