package genai

import (
	"encoding/base64"
	"strings"
)

// Role of a conversation turn.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one text turn of chat history.
type Turn struct {
	Role string
	Text string
}

// Image is binary image data with its media type.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURL renders the image as a data: URL.
func (i *Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Wire types for generateContent.

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
	Thought    bool   `json:"thought,omitempty"`
}

type blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMIMEType   string   `json:"responseMimeType,omitempty"`
	ResponseSchema     *schema  `json:"responseSchema,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type schema struct {
	Type       string             `json:"type"`
	Properties map[string]*schema `json:"properties,omitempty"`
	Items      *schema            `json:"items,omitempty"`
}

type generateResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type usageMetadata struct {
	PromptTokenCount     int64 `json:"promptTokenCount"`
	CandidatesTokenCount int64 `json:"candidatesTokenCount"`
	TotalTokenCount      int64 `json:"totalTokenCount"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// text joins the non-thought text parts of the first candidate.
func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		if !p.Thought {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// inlineData returns the first inline data part of the first candidate.
func (r *generateResponse) inlineData() *blob {
	if len(r.Candidates) == 0 {
		return nil
	}
	for _, p := range r.Candidates[0].Content.Parts {
		if p.InlineData != nil {
			return p.InlineData
		}
	}
	return nil
}
