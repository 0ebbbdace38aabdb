package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

// Models often wrap JSON in prose or code fences
var jsonBlock = regexp.MustCompile(`(?s)\{.*\}|\[.*\]`)

// ExtractJSON returns the first JSON object or array embedded in text, or
// the trimmed text itself when none is found.
func ExtractJSON(text string) []byte {
	if m := jsonBlock.FindString(text); m != "" {
		return []byte(m)
	}
	return []byte(strings.TrimSpace(text))
}

// ParseMindmap decodes and validates a mindmap reply
func ParseMindmap(reply string) (*models.Mindmap, error) {
	raw := ExtractJSON(reply)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	children, ok := fields["children"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(children), []byte("[")) {
		return nil, fmt.Errorf("%w: mindmap children must be an array", ErrInvalidOutput)
	}

	var mindmap models.Mindmap
	if err := json.Unmarshal(raw, &mindmap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if strings.TrimSpace(mindmap.Root) == "" {
		return nil, fmt.Errorf("%w: mindmap root is empty", ErrInvalidOutput)
	}
	normalize(mindmap.Children)

	return &mindmap, nil
}

// normalize replaces null children with empty arrays
func normalize(nodes []*models.MindmapNode) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.Children == nil {
			n.Children = []*models.MindmapNode{}
		}
		normalize(n.Children)
	}
}

// ParseFlashcards decodes and validates a flashcards reply
func ParseFlashcards(reply string) ([]models.Flashcard, error) {
	raw := ExtractJSON(reply)

	var cards []models.Flashcard
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: no flashcards", ErrInvalidOutput)
	}
	for i, c := range cards {
		if strings.TrimSpace(c.Question) == "" {
			return nil, fmt.Errorf("%w: flashcard %d has no question", ErrInvalidOutput, i)
		}
	}

	return cards, nil
}
