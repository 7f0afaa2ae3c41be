package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"codeberg.org/talespin/server/talespin/characters"
)

const storySystemPrompt = `You are a storyteller. Reply with a single JSON object and nothing else.
The object has exactly three string fields: "title", "description" and "content".
"description" is one or two sentences. "content" is the full story text.`

// persona prompt for chatting as a character
func buildChatPrompt(c *characters.Character) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s. %s\n", c.Name, c.Description)
	fmt.Fprintf(&b, "Personality: %s\n", c.Personality)
	fmt.Fprintf(&b, "Backstory: %s\n", c.Backstory)
	fmt.Fprintf(&b, "Style: %s", c.Style)

	return b.String()
}

func buildStoryPrompt(req StoryRequest, cast []*characters.Character) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a %s story based on this prompt: %s", req.Genre, req.Prompt)

	if len(cast) > 0 {
		b.WriteString("\n\nFeature these characters:\n")

		for _, c := range cast {
			fmt.Fprintf(&b, "- %s: %s (personality: %s)\n", c.Name, c.Description, c.Personality)
		}
	}

	return b.String()
}

func buildImagePrompt(req ImageRequest) string {
	return fmt.Sprintf("Create an image in %s style: %s", req.Style, req.Prompt)
}

// extracts the story object from a model reply, tolerating markdown fences
// and prose around the object
func parseStory(reply string) (*StoryResponse, error) {
	text := strings.TrimSpace(reply)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start < 0 || end <= start {
		return nil, ErrMalformedStory
	}

	var story StoryResponse
	if err := json.Unmarshal([]byte(text[start:end+1]), &story); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStory, err)
	}

	if story.Title == "" || story.Content == "" {
		return nil, ErrMalformedStory
	}

	return &story, nil
}
