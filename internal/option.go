package internal

// Option customises the application before Run starts it.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig supplies the loaded configuration to Run.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
