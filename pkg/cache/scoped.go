package cache

// ScopedKeyer prefixes every key of an inner Keyer.
//
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) MindMapKey(model, topic string) string {
	return k.prefix + k.inner.MindMapKey(model, topic)
}

func (k *ScopedKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(treeHash, opts)
}
