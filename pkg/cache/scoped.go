package cache

// ScopedKeyer wraps a Keyer with a prefix so several inspectors can share
// one backend without colliding, for example one prefix per server.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "blendview:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer uses
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SnapshotKey returns the prefixed snapshot key.
func (k *ScopedKeyer) SnapshotKey(snapshotHash string) string {
	return k.prefix + k.inner.SnapshotKey(snapshotHash)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(snapshotHash, opts)
}
