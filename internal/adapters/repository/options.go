package repository

import "github.com/okian/ratefit/pkg/logger"

type storeConfig struct {
	log logger.Logger
}

func newStoreConfig(name string, opts []Option) storeConfig {
	c := storeConfig{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.log == nil {
		c.log = logger.Get().Named(name)
	}
	return c
}

// Option applies a configuration option to a model store.
type Option func(*storeConfig)

// WithLogger sets the store's logger.
func WithLogger(l logger.Logger) Option {
	return func(c *storeConfig) {
		if l != nil {
			c.log = l
		}
	}
}
