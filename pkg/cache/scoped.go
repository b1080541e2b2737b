package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation. The server
// uses this to keep per-backend cache entries apart when one deployment
// serves several case-management backends.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "backend:prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// NetworkKey generates a prefixed key for case network caching.
func (k *ScopedKeyer) NetworkKey(caseID string, opts NetworkKeyOpts) string {
	return k.prefix + k.inner.NetworkKey(caseID, opts)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(networkHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(networkHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
