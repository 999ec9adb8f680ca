package cache

// Keyer derives cache keys. Keys embed content hashes, so two different
// families (or tables) never share an entry even when names collide.
type Keyer interface {
	// RelationKey identifies the relation of from to to within a family,
	// resolved with a given table.
	RelationKey(familyHash, tableHash, from, to string) string

	// ConnectionsKey identifies the connection index of name within a family.
	ConnectionsKey(familyHash, name string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RelationKey implements [Keyer].
func (DefaultKeyer) RelationKey(familyHash, tableHash, from, to string) string {
	return hashKey("relation", familyHash, tableHash, from, to)
}

// ConnectionsKey implements [Keyer].
func (DefaultKeyer) ConnectionsKey(familyHash, name string) string {
	return hashKey("connections", familyHash, name)
}

// ScopedKeyer prepends a fixed prefix to every key of an inner Keyer.
// The server uses it to keep its entries apart from other tenants of a shared
// redis instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (the default scheme if nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// RelationKey implements [Keyer].
func (k *ScopedKeyer) RelationKey(familyHash, tableHash, from, to string) string {
	return k.prefix + k.inner.RelationKey(familyHash, tableHash, from, to)
}

// ConnectionsKey implements [Keyer].
func (k *ScopedKeyer) ConnectionsKey(familyHash, name string) string {
	return k.prefix + k.inner.ConnectionsKey(familyHash, name)
}
