// Package plans defines the priced service tiers. The catalog is derived once
// at startup by expanding a small base table into one variant per billing
// cycle; nothing here talks to the payment provider.
package plans

import (
	"math"
	"strings"
)

// BillingCycle is the recurrence period of a subscription charge.
type BillingCycle string

const (
	Monthly   BillingCycle = "monthly"
	Quarterly BillingCycle = "quarterly"
	Annual    BillingCycle = "annual"
)

// Cycles lists the billing cycles every base plan expands into, in order.
var Cycles = []BillingCycle{Monthly, Quarterly, Annual}

// Discount multipliers applied to the monthly base price.
const (
	quarterlyMultiplier = 0.95 // 5% off three months
	annualMultiplier    = 0.83 // 17% off twelve months
)

// Limits are the usage caps of a plan.
type Limits struct {
	Patients  int `json:"patients"`
	Users     int `json:"users"`
	StorageMB int `json:"storageMB"`
}

// BasePlan is one product tier before billing-cycle expansion. Price is the
// monthly price.
type BasePlan struct {
	Key      string   `json:"key"` // e.g. "PERSONAL_BASIC"
	Type     string   `json:"type"`
	Tier     string   `json:"tier"`
	Price    float64  `json:"price"`
	Limits   Limits   `json:"limits"`
	Features []string `json:"features"`
	Popular  bool     `json:"popular"`
}

// Plan is a priced variant: one base plan at one billing cycle.
type Plan struct {
	Name     string       `json:"name"` // e.g. "clinic-pro-annual"
	Price    float64      `json:"price"`
	Type     string       `json:"type"`
	Tier     string       `json:"tier"`
	Billing  BillingCycle `json:"billing"`
	Limits   Limits       `json:"limits"`
	Features []string     `json:"features"`
	Popular  bool         `json:"popular"`
}

// BasePlans is the product tier table. Prices are USD per month.
var BasePlans = []BasePlan{
	{
		Key: "PERSONAL_BASIC", Type: "personal", Tier: "basic", Price: 15,
		Limits:   Limits{Patients: 100, Users: 1, StorageMB: 1024},
		Features: []string{"appointments", "patient-records"},
	},
	{
		Key: "PERSONAL_PRO", Type: "personal", Tier: "pro", Price: 25,
		Limits:   Limits{Patients: 500, Users: 2, StorageMB: 5120},
		Features: []string{"appointments", "patient-records", "invoicing"},
	},
	{
		Key: "CLINIC_PRO", Type: "clinic", Tier: "pro", Price: 45, Popular: true,
		Limits:   Limits{Patients: 2000, Users: 10, StorageMB: 20480},
		Features: []string{"appointments", "patient-records", "invoicing", "multi-user"},
	},
	{
		Key: "CLINIC_ENTERPRISE", Type: "clinic", Tier: "enterprise", Price: 75,
		Limits:   Limits{Patients: 10000, Users: 30, StorageMB: 51200},
		Features: []string{"appointments", "patient-records", "invoicing", "multi-user", "reports"},
	},
	{
		Key: "HOSPITAL_ENTERPRISE", Type: "hospital", Tier: "enterprise", Price: 120,
		Limits:   Limits{Patients: 100000, Users: 100, StorageMB: 204800},
		Features: []string{"appointments", "patient-records", "invoicing", "multi-user", "reports", "departments"},
	},
}

// VariantName builds the catalog name of a variant: the base key lowercased
// with underscores as hyphens, suffixed with the cycle.
func VariantName(baseKey string, cycle BillingCycle) string {
	return strings.ReplaceAll(strings.ToLower(baseKey), "_", "-") + "-" + string(cycle)
}

// CyclePrice applies the cycle's discount multiplier to a monthly base price,
// rounded to two decimal places.
func CyclePrice(monthly float64, cycle BillingCycle) float64 {
	var p float64
	switch cycle {
	case Quarterly:
		p = monthly * 3 * quarterlyMultiplier
	case Annual:
		p = monthly * 12 * annualMultiplier
	default:
		p = monthly
	}
	return round2(p)
}

// Expand produces the priced variants of the given base plans, one per billing
// cycle. The popular flag only surfaces on the annual variant.
func Expand(base []BasePlan) []Plan {
	out := make([]Plan, 0, len(base)*len(Cycles))
	for _, bp := range base {
		for _, cycle := range Cycles {
			out = append(out, Plan{
				Name:     VariantName(bp.Key, cycle),
				Price:    CyclePrice(bp.Price, cycle),
				Type:     bp.Type,
				Tier:     bp.Tier,
				Billing:  cycle,
				Limits:   bp.Limits,
				Features: bp.Features,
				Popular:  bp.Popular && cycle == Annual,
			})
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
