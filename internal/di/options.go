package di

// ConfigPath is the optional YAML configuration file path.
type ConfigPath string

// DisableAuth bypasses the OIDC flow entirely. Local development only.
type DisableAuth bool

// PortOverride replaces the configured listen port when non-zero.
type PortOverride int

// Option is a function that configures the dependency injection container.
type Option func(*options)

func WithConfigPath(path string) Option {
	return func(opts *options) {
		opts.configPath = ConfigPath(path)
	}
}

func WithDisableAuth(disable bool) Option {
	return func(opts *options) {
		opts.disableAuth = disable
	}
}

func WithPortOverride(port int) Option {
	return func(opts *options) {
		opts.portOverride = port
	}
}

// WithProviders adds constructor functions to the dependency injection
// container. Each provider is a constructor function whose parameters
// are resolved from the container.
func WithProviders(providers ...any) Option {
	return func(opts *options) {
		opts.providers = append(opts.providers, providers...)
	}
}

type options struct {
	configPath   ConfigPath
	disableAuth  bool
	portOverride int
	providers    []any
}
