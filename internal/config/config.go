package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// PayPal API hosts, selected by the sandbox flag.
const (
	paypalSandboxURL = "https://api.sandbox.paypal.com"
	paypalLiveURL    = "https://api.paypal.com"
)

// planIDVars maps each local plan name to the environment variable carrying
// its PayPal billing-plan ID. All fifteen are required.
var planIDVars = map[string]string{
	"personal-basic-monthly":        "PAYPAL_PLAN_PERSONAL_BASIC_MONTHLY",
	"personal-basic-quarterly":      "PAYPAL_PLAN_PERSONAL_BASIC_QUARTERLY",
	"personal-basic-annual":         "PAYPAL_PLAN_PERSONAL_BASIC_ANNUAL",
	"personal-pro-monthly":          "PAYPAL_PLAN_PERSONAL_PRO_MONTHLY",
	"personal-pro-quarterly":        "PAYPAL_PLAN_PERSONAL_PRO_QUARTERLY",
	"personal-pro-annual":           "PAYPAL_PLAN_PERSONAL_PRO_ANNUAL",
	"clinic-pro-monthly":            "PAYPAL_PLAN_CLINIC_PRO_MONTHLY",
	"clinic-pro-quarterly":          "PAYPAL_PLAN_CLINIC_PRO_QUARTERLY",
	"clinic-pro-annual":             "PAYPAL_PLAN_CLINIC_PRO_ANNUAL",
	"clinic-enterprise-monthly":     "PAYPAL_PLAN_CLINIC_ENTERPRISE_MONTHLY",
	"clinic-enterprise-quarterly":   "PAYPAL_PLAN_CLINIC_ENTERPRISE_QUARTERLY",
	"clinic-enterprise-annual":      "PAYPAL_PLAN_CLINIC_ENTERPRISE_ANNUAL",
	"hospital-enterprise-monthly":   "PAYPAL_PLAN_HOSPITAL_ENTERPRISE_MONTHLY",
	"hospital-enterprise-quarterly": "PAYPAL_PLAN_HOSPITAL_ENTERPRISE_QUARTERLY",
	"hospital-enterprise-annual":    "PAYPAL_PLAN_HOSPITAL_ENTERPRISE_ANNUAL",
}

// Config holds all configuration for the application.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	PayPalClientID     string `mapstructure:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret string `mapstructure:"PAYPAL_CLIENT_SECRET"`
	PayPalSandbox      bool   `mapstructure:"PAYPAL_SANDBOX"`
	PayPalWebhookID    string `mapstructure:"PAYPAL_WEBHOOK_ID"`

	ClientURL string `mapstructure:"CLIENT_URL"`

	// PlanIDs maps local plan names to PayPal billing-plan IDs.
	PlanIDs map[string]string `mapstructure:"-"`
}

// ValidationError carries the full list of configuration problems so an
// operator sees everything wrong after one start attempt.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid environment configuration, missing: %s", strings.Join(e.Missing, ", "))
}

// LoadConfig loads configuration from environment variables using Viper.
// Validation collects every missing required variable into a single
// ValidationError rather than failing on the first.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("PAYPAL_SANDBOX", true)

	for _, key := range []string{
		"PORT", "GIN_MODE",
		"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
		"PAYPAL_CLIENT_ID", "PAYPAL_CLIENT_SECRET", "PAYPAL_SANDBOX", "PAYPAL_WEBHOOK_ID",
		"CLIENT_URL",
	} {
		v.BindEnv(key)
	}
	for _, envVar := range planIDVars {
		v.BindEnv(envVar)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.PlanIDs = make(map[string]string, len(planIDVars))
	for planName, envVar := range planIDVars {
		if id := strings.TrimSpace(v.GetString(envVar)); id != "" {
			cfg.PlanIDs[planName] = id
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var missing []string

	if c.FirebaseProjectID == "" {
		missing = append(missing, "FIREBASE_PROJECT_ID")
	}
	if c.GoogleApplicationCredentials == "" && c.FirebaseServiceAccountJSONBase64 == "" {
		missing = append(missing, "GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64")
	}
	if c.PayPalClientID == "" {
		missing = append(missing, "PAYPAL_CLIENT_ID")
	}
	if c.PayPalClientSecret == "" {
		missing = append(missing, "PAYPAL_CLIENT_SECRET")
	}
	for planName, envVar := range planIDVars {
		if c.PlanIDs[planName] == "" {
			missing = append(missing, envVar)
		}
	}

	if len(missing) > 0 {
		// Deterministic order for operators and tests.
		sort.Strings(missing)
		return &ValidationError{Missing: missing}
	}
	return nil
}

// PayPalBaseURL returns the API host matching the sandbox flag.
func (c *Config) PayPalBaseURL() string {
	if c.PayPalSandbox {
		return paypalSandboxURL
	}
	return paypalLiveURL
}

// PayPalPlanFor resolves a local plan name to its PayPal plan ID.
func (c *Config) PayPalPlanFor(localPlan string) (string, bool) {
	id, ok := c.PlanIDs[localPlan]
	return id, ok
}

// LocalPlanFor resolves a PayPal plan ID back to the local plan name.
func (c *Config) LocalPlanFor(paypalPlanID string) (string, bool) {
	for local, remote := range c.PlanIDs {
		if remote == paypalPlanID {
			return local, true
		}
	}
	return "", false
}
