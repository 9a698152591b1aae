package genai

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	mmerrors "github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
	"github.com/unixblacksteel/mindmap/pkg/observability"
)

// Generation kinds reported to the pipeline hooks.
const (
	KindText    = "text"
	KindImage   = "image"
	KindMindMap = "mindmap"
)

// GenerateTextResponse asks the text model for a reply to prompt, given the
// earlier text turns and the active mode's modifier. An optional image is
// sent inline with the question. An empty reply becomes [FallbackReply].
func (c *Client) GenerateTextResponse(ctx context.Context, history []Turn, prompt, modifier string, image *Image) (reply string, err error) {
	defer c.track(ctx, KindText)(&err)

	if err := mmerrors.ValidatePrompt(prompt); err != nil {
		return "", fail(err, "generate text")
	}

	contents := make([]content, 0, len(history)+1)
	for _, t := range history {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		role := RoleUser
		if t.Role == RoleModel {
			role = RoleModel
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: t.Text}}})
	}

	question := content{Role: RoleUser, Parts: []part{{Text: textPrompt(modifier, prompt)}}}
	if image != nil {
		inline, err := inlineImage(image)
		if err != nil {
			return "", fail(err, "generate text")
		}
		question.Parts = append(question.Parts, part{InlineData: inline})
	}
	contents = append(contents, question)

	resp, err := c.generate(ctx, c.cfg.TextModel, &generateRequest{
		Contents:          contents,
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
	})
	if err != nil {
		return "", fail(err, "generate text")
	}
	if text := resp.text(); strings.TrimSpace(text) != "" {
		return text, nil
	}
	return FallbackReply, nil
}

// GenerateImage asks the image model for an illustration of prompt. The first
// inline image part of the reply wins.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (img *Image, err error) {
	defer c.track(ctx, KindImage)(&err)

	if err := mmerrors.ValidatePrompt(prompt); err != nil {
		return nil, fail(err, "generate image")
	}

	resp, err := c.generate(ctx, c.cfg.ImageModel, &generateRequest{
		Contents: []content{{Role: RoleUser, Parts: []part{{Text: imagePrefix + prompt}}}},
	})
	if err != nil {
		return nil, fail(err, "generate image")
	}

	inline := resp.inlineData()
	if inline == nil {
		return nil, fail(mmerrors.New(mmerrors.ErrCodeEmptyResponse, "no image data returned"), "generate image")
	}
	data, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return nil, fail(mmerrors.Wrap(mmerrors.ErrCodeEmptyResponse, err, "decode image data"), "generate image")
	}
	mime := inline.MIMEType
	if mime == "" {
		mime = mimetype.Detect(data).String()
	}
	return &Image{MIMEType: mime, Data: data}, nil
}

// GenerateMindMapData asks the text model for a mind map of topic as JSON and
// decodes it. The result is a well-formed tree.
func (c *Client) GenerateMindMapData(ctx context.Context, topic string) (tree *mindmap.Node, err error) {
	defer c.track(ctx, KindMindMap)(&err)

	if err := mmerrors.ValidateTopic(topic); err != nil {
		return nil, fail(err, "generate mind map")
	}

	resp, err := c.generate(ctx, c.cfg.TextModel, &generateRequest{
		Contents:          []content{{Role: RoleUser, Parts: []part{{Text: mindMapPrompt(topic)}}}},
		SystemInstruction: &content{Parts: []part{{Text: mindMapInstruction}}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   mindMapSchema(),
		},
	})
	if err != nil {
		return nil, fail(err, "generate mind map")
	}

	tree, err = mindmap.Parse([]byte(resp.text()))
	if err != nil {
		return nil, fail(err, "generate mind map")
	}
	return tree, nil
}

// track fires the generation hooks around one operation.
func (c *Client) track(ctx context.Context, kind string) func(*error) {
	start := time.Now()
	observability.Pipeline().OnGenerateStart(ctx, kind)
	return func(errp *error) {
		d := time.Since(start)
		observability.Pipeline().OnGenerateComplete(ctx, kind, d, *errp)
		if *errp != nil {
			c.logger.Warn("generation failed", "kind", kind, "elapsed", d.Round(time.Millisecond), "err", *errp)
			return
		}
		c.logger.Debug("generated", "kind", kind, "elapsed", d.Round(time.Millisecond), "tokens", c.TokensUsed())
	}
}

// inlineImage prepares an attachment, sniffing the type when it is missing.
func inlineImage(img *Image) (*blob, error) {
	if len(img.Data) == 0 {
		return nil, mmerrors.New(mmerrors.ErrCodeInvalidInput, "image attachment is empty")
	}
	mime := img.MIMEType
	if mime == "" {
		mime = mimetype.Detect(img.Data).String()
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, mmerrors.New(mmerrors.ErrCodeInvalidInput, "attachment is %s, not an image", mime)
	}
	return &blob{MIMEType: mime, Data: base64.StdEncoding.EncodeToString(img.Data)}, nil
}
