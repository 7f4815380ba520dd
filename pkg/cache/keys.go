package cache

// Keyer generates cache keys for pipeline operations. Each key is a
// function of the operation name and its serialized arguments, so two
// requests hit the same entry exactly when the external service would
// return the same data.
type Keyer interface {
	// GeocodeKey generates a key for a place-name lookup.
	GeocodeKey(place string) string

	// NetworkKey generates a key for a network fetch, parameterized by the
	// hash of the query polygon and the network category.
	NetworkKey(polygonHash, category string) string
}

// DefaultKeyer produces hashed keys with operation prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GeocodeKey generates a key for a place-name lookup.
func (DefaultKeyer) GeocodeKey(place string) string {
	return hashKey("geocode", place)
}

// NetworkKey generates a key for a network fetch.
func (DefaultKeyer) NetworkKey(polygonHash, category string) string {
	return hashKey("network", polygonHash, category)
}

// ScopedKeyer wraps a Keyer with a prefix, isolating cache namespaces when
// several deployments share one redis instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// GeocodeKey generates a prefixed key for a place-name lookup.
func (k *ScopedKeyer) GeocodeKey(place string) string {
	return k.prefix + k.inner.GeocodeKey(place)
}

// NetworkKey generates a prefixed key for a network fetch.
func (k *ScopedKeyer) NetworkKey(polygonHash, category string) string {
	return k.prefix + k.inner.NetworkKey(polygonHash, category)
}
