package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/gabriel-vasile/mimetype"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/unixblacksteel/mindmap/pkg/chat"
	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/genai"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
)

// maxAttachment bounds the size of an image sent with a prompt.
const maxAttachment = 20 << 20

// =============================================================================
// Markdown rendering
// =============================================================================

// renderMarkdown renders Markdown for the terminal at the given width, or
// returns it unchanged when rendering is unavailable.
func renderMarkdown(body string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return body
	}
	out, err := r.Render(body)
	if err != nil {
		return body
	}
	return out
}

// stdoutIsTTY reports whether output goes to a terminal.
func stdoutIsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// =============================================================================
// ask
// =============================================================================

type askOpts struct {
	mode   string
	image  string
	output string
	raw    bool
}

// askCommand creates the one-shot prompt command.
func (c *CLI) askCommand() *cobra.Command {
	var opts askOpts

	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Send one prompt in a chat mode and print the reply",
		Long: `Ask sends a single prompt to the model using one of the chat modes:

  study     explain step by step like a professor (default)
  research  structured, detailed research
  summary   key points only
  visual    generate an image (saved with --output)
  mindmap   generate a mind map and print it as an outline

An image can be attached to text modes with --image.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAsk(cmd.Context(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "study", "chat mode: study, research, summary, visual, mindmap")
	cmd.Flags().StringVarP(&opts.image, "image", "i", "", "attach an image file to the prompt")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "file for generated images or mind-map documents")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print Markdown without terminal rendering")

	return cmd
}

func (c *CLI) runAsk(ctx context.Context, prompt string, opts askOpts) error {
	mode, err := chat.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	var attachment *genai.Image
	if opts.image != "" {
		if attachment, err = readAttachment(opts.image); err != nil {
			return err
		}
	}

	client, err := c.newClient()
	if err != nil {
		return err
	}
	session := chat.NewSession(client, chat.WithLogger(c.Logger))

	var reply chat.Message
	err = spin(ctx, mode.String()+"...", func(ctx context.Context) error {
		var err error
		reply, err = session.Send(ctx, mode, prompt, attachment)
		return err
	})
	if err != nil {
		return err
	}

	switch content := reply.Content.(type) {
	case chat.Text:
		if opts.raw || !stdoutIsTTY() {
			fmt.Fprintln(c.Out, content.Body)
		} else {
			fmt.Fprint(c.Out, renderMarkdown(content.Body, 80))
		}
	case chat.Image:
		path := opts.output
		if path == "" {
			path = imageFileName(content.Image, reply.Timestamp.UnixMilli())
		}
		if err := os.WriteFile(path, content.Image.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printArtifact(path, len(content.Image.Data))
	case chat.MindMap:
		printSuccess("%s", content.Caption)
		fmt.Fprint(c.Out, outline(content.Tree))
		if opts.output != "" {
			n, err := writeTree(opts.output, content.Tree)
			if err != nil {
				return err
			}
			printArtifact(opts.output, n)
			printNextStep("Render it", "mindmap render "+opts.output)
		}
	case chat.Failure:
		return content.Err
	}
	c.Logger.Debug("tokens used", "total", session.TokensUsed())
	return nil
}

// readAttachment loads an image file and checks its content type.
func readAttachment(path string) (*genai.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read attachment")
	}
	if info.Size() > maxAttachment {
		return nil, errors.New(errors.ErrCodeInvalidInput, "attachment %s is larger than %d MB", path, maxAttachment>>20)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read attachment")
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "attachment %s is %s, not an image", path, mt.String())
	}
	return &genai.Image{MIMEType: mt.String(), Data: data}, nil
}

// imageFileName names a generated image after its detected type.
func imageFileName(img *genai.Image, ms int64) string {
	ext := ".png"
	if mt := mimetype.Lookup(img.MIMEType); mt != nil {
		ext = mt.Extension()
	}
	return fmt.Sprintf("unix-image-%d%s", ms, ext)
}

// outline prints a tree as an indented bullet list.
func outline(tree *mindmap.Node) string {
	var b strings.Builder
	mindmap.Walk(tree, func(n *mindmap.Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		if depth == 0 {
			b.WriteString(StyleTitle.Render(n.Name))
		} else {
			b.WriteString("• " + n.Name)
		}
		b.WriteString("\n")
		return true
	})
	return b.String()
}
