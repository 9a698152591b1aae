package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/unixblacksteel/mindmap/pkg/genai"
)

// imageCommand creates the image generation command.
func (c *CLI) imageCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "image <prompt>",
		Short: "Generate an image from a prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.newClient()
			if err != nil {
				return err
			}

			var img *genai.Image
			err = spin(ctx, "Generating image...", func(ctx context.Context) error {
				var err error
				img, err = client.GenerateImage(ctx, strings.Join(args, " "))
				return err
			})
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = imageFileName(img, time.Now().UnixMilli())
			}
			if err := os.WriteFile(path, img.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			printSuccess("Generated %s image with %s", img.MIMEType, client.ImageModel())
			printArtifact(path, len(img.Data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default unix-image-<ms>.<ext>)")
	return cmd
}
