package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/unixblacksteel/mindmap/pkg/mindmap"
	"github.com/unixblacksteel/mindmap/pkg/pipeline"
)

// generateCommand creates the command that asks the model for a mind map.
func (c *CLI) generateCommand() *cobra.Command {
	var opts renderOpts
	var treeOut string

	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Generate a mind map for a topic and render it",
		Long: `Generate asks the configured model for a three-level mind map of the
topic, caches the tree, and renders it like the render command.

Use --tree to keep the generated document (JSON, or YAML for .yaml/.yml) so it
can be edited and re-rendered with "mindmap render".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			topic := strings.Join(args, " ")

			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			popts, err := c.pipelineOptions(&opts)
			if err != nil {
				return err
			}

			var tree *mindmap.Node
			err = spin(ctx, "Generating mind map...", func(ctx context.Context) error {
				var err error
				tree, _, err = runner.MindMap(ctx, topic, opts.refresh)
				return err
			})
			if err != nil {
				return err
			}

			base := opts.output
			if base == "" {
				base = "mindmap-" + slug(topic)
			}
			res, err := c.renderInput(ctx, runner, pipeline.Input{Tree: tree}, popts, base)
			if err != nil {
				return err
			}

			if treeOut != "" {
				n, err := writeTree(treeOut, tree)
				if err != nil {
					return err
				}
				printArtifact(treeOut, n)
				printNextStep("Edit and re-render", "mindmap render "+treeOut)
			}
			if opts.explore {
				return runExplorer(res.Scene)
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&treeOut, "tree", "", "also save the generated tree document to this file")

	return cmd
}

// writeTree saves a tree as YAML when the extension asks for it, JSON otherwise.
func writeTree(path string, tree *mindmap.Node) (int, error) {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(tree)
	default:
		data, err = mindmap.Marshal(tree)
	}
	if err != nil {
		return 0, fmt.Errorf("encode tree: %w", err)
	}
	return len(data), os.WriteFile(path, data, 0o644)
}

// slug makes a file-name-safe form of a topic. Letters of any script are kept.
func slug(topic string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(topic) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "topic"
	}
	if r := []rune(s); len(r) > 48 {
		s = strings.TrimSuffix(string(r[:48]), "-")
	}
	return s
}
