package cache

import "strings"

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format      string `json:"format"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Interactive bool   `json:"interactive,omitempty"`
	Rasterizer  string `json:"rasterizer,omitempty"`
	Background  string `json:"background,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// MindMapKey identifies a generated tree. Topics differing only in case or
	// surrounding space share a key.
	MindMapKey(model, topic string) string
	// ArtifactKey identifies a rendered artifact of the tree with the given hash.
	ArtifactKey(treeHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) MindMapKey(model, topic string) string {
	return hashKey("mindmap", model, normalizeTopic(topic))
}

func (DefaultKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", treeHash, opts)
}

func normalizeTopic(topic string) string {
	return strings.ToLower(strings.Join(strings.Fields(topic), " "))
}
