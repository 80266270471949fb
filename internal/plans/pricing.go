package plans

import (
	"errors"
	"sync"
)

// ErrPlanNotFound is returned when a catalog lookup misses.
var ErrPlanNotFound = errors.New("plan not found")

// VolumeRule grants a percentage discount from a user-count threshold up.
type VolumeRule struct {
	MinUsers int     `json:"minUsers"`
	Discount float64 `json:"discount"` // percent
}

// PricingConfig holds the cross-plan pricing knobs.
type PricingConfig struct {
	Currency    string       `json:"currency"`
	TaxRate     float64      `json:"taxRate"`
	VolumeRules []VolumeRule `json:"volumeRules"` // ascending by MinUsers
}

// DefaultPricingConfig mirrors the production defaults.
var DefaultPricingConfig = PricingConfig{
	Currency: "USD",
	TaxRate:  0.16,
	VolumeRules: []VolumeRule{
		{MinUsers: 5, Discount: 5},
		{MinUsers: 10, Discount: 10},
		{MinUsers: 25, Discount: 15},
		{MinUsers: 50, Discount: 20},
	},
}

// Catalog is the process-wide plan table: the expanded variants plus pricing
// configuration, shared by reference across the services that need it.
// Mutations (admin price edits) are guarded by a single mutex.
type Catalog struct {
	mu      sync.RWMutex
	plans   []Plan
	pricing PricingConfig
}

// NewCatalog expands the default base table with the default pricing config.
func NewCatalog() *Catalog {
	return NewCatalogFrom(BasePlans, DefaultPricingConfig)
}

// NewCatalogFrom expands the given base plans into a catalog.
func NewCatalogFrom(base []BasePlan, pricing PricingConfig) *Catalog {
	return &Catalog{plans: Expand(base), pricing: pricing}
}

// All returns a copy of every plan variant.
func (c *Catalog) All() []Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// ByName looks a variant up by its catalog name.
func (c *Catalog) ByName(name string) (Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.plans {
		if p.Name == name {
			return p, nil
		}
	}
	return Plan{}, ErrPlanNotFound
}

// ByType filters variants by product type.
func (c *Catalog) ByType(planType string) []Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Plan
	for _, p := range c.plans {
		if p.Type == planType {
			out = append(out, p)
		}
	}
	return out
}

// ByTier filters variants by tier.
func (c *Catalog) ByTier(tier string) []Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Plan
	for _, p := range c.plans {
		if p.Tier == tier {
			out = append(out, p)
		}
	}
	return out
}

// SetPrice overwrites the price of one variant.
func (c *Catalog) SetPrice(name string, price float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.plans {
		if c.plans[i].Name == name {
			c.plans[i].Price = round2(price)
			return nil
		}
	}
	return ErrPlanNotFound
}

// Pricing returns the pricing configuration.
func (c *Catalog) Pricing() PricingConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pricing
}

// EffectivePrice computes the price of a variant for a given seat count,
// applying the largest satisfied volume discount, rounded to two decimals.
func (c *Catalog) EffectivePrice(name string, userCount int) (float64, error) {
	plan, err := c.ByName(name)
	if err != nil {
		return 0, err
	}
	price := plan.Price
	if userCount > 1 {
		c.mu.RLock()
		rules := c.pricing.VolumeRules
		var discount float64
		for _, r := range rules {
			if userCount >= r.MinUsers {
				discount = r.Discount
			}
		}
		c.mu.RUnlock()
		if discount > 0 {
			price = price * (1 - discount/100)
		}
	}
	return round2(price), nil
}
