package providers

// Registry resolves provider names to clients built from per-provider options.
// The set of providers is fixed; options only carry credentials and overrides.
type Registry struct {
	options map[Name]ClientOptions
}

// NewRegistry copies options so later mutation by the caller has no effect.
func NewRegistry(options map[Name]ClientOptions) *Registry {
	copied := make(map[Name]ClientOptions, len(options))
	for name, opts := range options {
		copied[name] = opts
	}
	return &Registry{options: copied}
}

// Resolve parses name and constructs the matching client.
func (r *Registry) Resolve(name string) (Client, error) {
	n, err := ParseName(name)
	if err != nil {
		return nil, err
	}
	var opts ClientOptions
	if r != nil {
		opts = r.options[n]
	}
	return New(string(n), opts)
}
