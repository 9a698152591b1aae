package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxTopicLength bounds mind-map topics sent to the generation service.
	MaxTopicLength = 500

	// MaxPromptLength bounds free-text prompts.
	MaxPromptLength = 16000
)

// ValidateTopic validates a mind-map topic before it is sent upstream.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only topics
//   - No control characters (newlines included, topics are single line)
//   - Maximum length of MaxTopicLength runes
func ValidateTopic(topic string) error {
	if strings.TrimSpace(topic) == "" {
		return New(ErrCodeInvalidInput, "topic cannot be empty")
	}
	if utf8.RuneCountInString(topic) > MaxTopicLength {
		return New(ErrCodeInvalidInput, "topic too long (max %d characters)", MaxTopicLength)
	}
	for _, r := range topic {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "topic contains invalid control characters")
		}
	}
	return nil
}

// ValidatePrompt validates a chat prompt. Unlike topics, prompts may span
// multiple lines.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return New(ErrCodeInvalidInput, "prompt cannot be empty")
	}
	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		return New(ErrCodeInvalidInput, "prompt too long (max %d characters)", MaxPromptLength)
	}
	for _, r := range prompt {
		if r == '\n' || r == '\t' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "prompt contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateFilename validates an export file name. Names must be plain
// basenames so sinks never write outside their directory.
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "file name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return New(ErrCodeInvalidInput, "file name cannot contain path separators")
	}
	if name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidInput, "file name cannot be hidden or relative: %q", name)
	}
	return nil
}
