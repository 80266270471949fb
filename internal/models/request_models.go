package models

// CreateAccountRequest represents the request body for creating a new account.
// Setup options mirror the admin "new account" form: optionally link an
// identity-provider owner by email and seed the first clinic user.
type CreateAccountRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	Name     string          `json:"name,omitempty"`
	Type     AccountType     `json:"type" binding:"required"`
	Settings AccountSettings `json:"settings,omitempty"`
	PlanName string          `json:"planName,omitempty"`

	OwnerEmail  string             `json:"ownerEmail,omitempty"`
	InitialUser *InitialUserSetup  `json:"initialUser,omitempty"`
}

// InitialUserSetup seeds the first clinic user of a new account.
type InitialUserSetup struct {
	Email string   `json:"email" binding:"required,email"`
	Name  string   `json:"name,omitempty"`
	Role  UserRole `json:"role,omitempty"`
}

// UpdateAccountRequest represents the request body for updating an account.
// Pointers distinguish "clear this field" from "field not provided".
type UpdateAccountRequest struct {
	Email    *string          `json:"email,omitempty"`
	Name     *string          `json:"name,omitempty"`
	Type     *AccountType     `json:"type,omitempty"`
	Settings *AccountSettings `json:"settings,omitempty"`
	IsActive *bool            `json:"isActive,omitempty"`
}

// DeleteAccountRequest is the acknowledgement gate for cascade deletion: the
// caller must echo the account ID being destroyed.
type DeleteAccountRequest struct {
	Acknowledge string `json:"acknowledge" binding:"required"`
}

// FreeMembershipRequest assigns a complimentary membership to an account.
type FreeMembershipRequest struct {
	PlanName     string `json:"planName" binding:"required"`
	DurationDays int    `json:"durationDays" binding:"required,gt=0"`
	Reason       string `json:"reason" binding:"required"`
}

// ExtendRequest extends a trial or a paid membership by a number of days.
type ExtendRequest struct {
	Days   int    `json:"days" binding:"required,gt=0"`
	Reason string `json:"reason" binding:"required"`
}

// ChangePlanRequest switches an account to a different plan.
type ChangePlanRequest struct {
	PlanName string `json:"planName" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

// AssignOwnerRequest links an identity-provider user to an account by email.
type AssignOwnerRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UnassignOwnerRequest detaches the identity-provider user from an account.
type UnassignOwnerRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// UpdatePlanPriceRequest changes a local plan price, optionally pushing the
// new price to the payment provider as well.
type UpdatePlanPriceRequest struct {
	Price      float64 `json:"price" binding:"required,gt=0"`
	PushRemote bool    `json:"pushRemote,omitempty"`
	Currency   string  `json:"currency,omitempty"`
}

// SubscriptionActionRequest carries the reason for a subscription lifecycle call.
type SubscriptionActionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ReviseSubscriptionRequest moves a subscription onto a different provider plan.
type ReviseSubscriptionRequest struct {
	PlanID string `json:"planId" binding:"required"`
}
