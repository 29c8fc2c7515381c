package worker

import (
	"context"
	"sync"

	"github.com/okian/ratefit/internal/domain/irt"
	"github.com/okian/ratefit/internal/domain/model"
)

// Collector is a Sink that gathers fitted models in memory.
type Collector struct {
	mu         sync.Mutex
	models     model.Models
	rejections int
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{models: model.Models{}}
}

// Accept stores the model for problemID.
func (c *Collector) Accept(ctx context.Context, problemID string, res irt.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models[problemID] = res.Model
	c.rejections += len(res.Rejections)
	return nil
}

// Models returns a copy of what was collected.
func (c *Collector) Models() model.Models {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(model.Models, len(c.models))
	out.Merge(c.models)
	return out
}

// Rejections returns the number of rejected sub-models seen.
func (c *Collector) Rejections() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rejections
}
