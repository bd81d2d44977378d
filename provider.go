package formula

// VariableProvider resolves the fields of a named context. A formula refers
// to field f of the context bound as c with $c.f.
type VariableProvider interface {
	// TryGetVariable returns the value of a field and whether the provider
	// has it.
	TryGetVariable(name string) (float64, bool)
}

// ProviderFunc adapts a function to a VariableProvider.
type ProviderFunc func(name string) (float64, bool)

// TryGetVariable calls f(name).
func (f ProviderFunc) TryGetVariable(name string) (float64, bool) {
	return f(name)
}

// MapProvider is a VariableProvider with a fixed set of fields.
type MapProvider map[string]float64

// TryGetVariable looks name up in m.
func (m MapProvider) TryGetVariable(name string) (float64, bool) {
	v, ok := m[name]
	return v, ok
}

var (
	_ VariableProvider = ProviderFunc(nil)
	_ VariableProvider = MapProvider(nil)
)
