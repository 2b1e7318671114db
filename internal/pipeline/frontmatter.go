package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidFrontmatter indicates a content file's frontmatter block could
// not be parsed.
var ErrInvalidFrontmatter = errors.New("invalid frontmatter")

const frontmatterDelimiter = "---"

// extractFrontmatter splits content into its raw YAML frontmatter block and
// body, tolerating missing or empty frontmatter. Both delimiters must sit
// on their own line.
func extractFrontmatter(content string) (frontmatter, body string, err error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	if !strings.HasPrefix(content, frontmatterDelimiter) {
		return "", content, nil
	}
	afterOpening := content[len(frontmatterDelimiter):]
	if len(afterOpening) > 0 && afterOpening[0] != '\n' {
		return "", content, nil
	}
	afterOpening = strings.TrimPrefix(afterOpening, "\n")

	if strings.HasPrefix(afterOpening, frontmatterDelimiter) {
		remaining := strings.TrimPrefix(afterOpening[len(frontmatterDelimiter):], "\n")
		return "", remaining, nil
	}

	closingIdx := strings.Index(afterOpening, "\n"+frontmatterDelimiter)
	if closingIdx == -1 {
		if strings.HasSuffix(afterOpening, "\n"+frontmatterDelimiter) {
			closingIdx = len(afterOpening) - len(frontmatterDelimiter) - 1
		} else {
			return "", "", fmt.Errorf("%w: unclosed frontmatter delimiter", ErrInvalidFrontmatter)
		}
	}

	frontmatter = afterOpening[:closingIdx]
	remaining := afterOpening[closingIdx+1:]
	remaining = strings.TrimPrefix(remaining, frontmatterDelimiter)
	remaining = strings.TrimPrefix(remaining, "\n")
	return frontmatter, remaining, nil
}

// parseFrontmatter extracts and YAML-decodes a file's frontmatter block,
// returning the decoded metadata, the body, and the raw frontmatter text
// (kept for content hashing).
func parseFrontmatter(content string) (metadata map[string]any, body string, raw string, err error) {
	raw, body, err = extractFrontmatter(content)
	if err != nil {
		return nil, "", "", err
	}
	if raw == "" {
		return map[string]any{}, body, raw, nil
	}
	metadata = map[string]any{}
	if err := yaml.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return metadata, body, raw, nil
}
