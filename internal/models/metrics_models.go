package models

import "time"

// AdminMetrics is the dashboard headline view across all tenants.
type AdminMetrics struct {
	TotalAccounts       int     `json:"totalAccounts"`
	ActiveSubscriptions int     `json:"activeSubscriptions"`
	TrialAccounts       int     `json:"trialAccounts"`
	TotalPatients       int     `json:"totalPatients"`
	MonthlyRevenue      float64 `json:"monthlyRevenue"`
	SystemHealth        string  `json:"systemHealth"`
}

// UsageCounter is a used/limit pair for one plan dimension.
type UsageCounter struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

// AccountStats aggregates a single tenant's activity.
type AccountStats struct {
	TotalPatients      int          `json:"totalPatients"`
	TotalUsers         int          `json:"totalUsers"`
	TotalAppointments  int          `json:"totalAppointments"`
	RecentAppointments int          `json:"recentAppointments"` // last 30 days
	PatientUsage       UsageCounter `json:"patientUsage"`
	UserUsage          UsageCounter `json:"userUsage"`
}

// AccountSummary is an account together with its child records and stats,
// assembled for the account-details screen in one call.
type AccountSummary struct {
	Account      *Account      `json:"account"`
	Patients     []*Patient    `json:"patients"`
	Users        []*ClinicUser `json:"users"`
	Appointments []*Appointment `json:"appointments"`
	Stats        AccountStats  `json:"stats"`
}

// QuickStats is the lightweight counter block on the dashboard landing page.
type QuickStats struct {
	Accounts struct {
		Total    int `json:"total"`
		Active   int `json:"active"`
		Inactive int `json:"inactive"`
	} `json:"accounts"`
	Patients struct {
		Total     int `json:"total"`
		ThisMonth int `json:"thisMonth"`
	} `json:"patients"`
	Users struct {
		Total   int `json:"total"`
		Doctors int `json:"doctors"`
		Staff   int `json:"staff"`
	} `json:"users"`
	Appointments struct {
		Total    int `json:"total"`
		Today    int `json:"today"`
		ThisWeek int `json:"thisWeek"`
	} `json:"appointments"`
	GeneratedAt time.Time `json:"generatedAt"`
}
