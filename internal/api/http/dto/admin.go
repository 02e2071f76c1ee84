package dto

import "time"

type BootstrapRequest struct {
	OrgName        string `json:"org_name" binding:"required,min=1,max=255"`
	AdminTokenName string `json:"admin_token_name" binding:"required,min=1,max=255"`
}

type BootstrapResponse struct {
	OrgID        string `json:"org_id"`
	OrgName      string `json:"org_name"`
	AdminTokenID string `json:"admin_token_id"`
	AdminToken   string `json:"admin_token"`
}

type CreateTokenRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// TokenResponse carries the plaintext token, which is only ever shown once.
type TokenResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

type AgentInfo struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at"`
}

type AgentsResponse struct {
	Agents []AgentInfo `json:"agents"`
	Count  int         `json:"count"`
}

type CreateServiceRequest struct {
	Provider string `json:"provider" binding:"required,min=1,max=64"`
	Name     string `json:"name" binding:"required,min=1,max=255"`
	BaseURL  string `json:"base_url" binding:"omitempty,url"`
}

type CreateKeyRequest struct {
	ServiceID string `json:"service_id" binding:"required,uuid"`
	Label     string `json:"label" binding:"required,min=1,max=255"`
	Secret    string `json:"secret" binding:"required"`
}

type KeyInfo struct {
	ID        string     `json:"id"`
	ServiceID string     `json:"service_id"`
	Label     string     `json:"label"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at"`
}

type KeysResponse struct {
	Keys  []KeyInfo `json:"keys"`
	Count int       `json:"count"`
}

type CreatePolicyRequest struct {
	ServiceID             string `json:"service_id" binding:"required,uuid"`
	AgentTokenID          string `json:"agent_token_id" binding:"omitempty,uuid"`
	MaxCheckoutsPerWindow int    `json:"max_checkouts_per_window" binding:"omitempty,min=1,max=2147483647"`
	CheckoutWindow        string `json:"checkout_window" binding:"omitempty,oneof=hourly daily"`
	MaxActiveCheckouts    int    `json:"max_active_checkouts" binding:"omitempty,min=1,max=2147483647"`
	MaxTTLSeconds         int    `json:"max_ttl_seconds" binding:"omitempty,min=1,max=2147483647"`
	Enabled               *bool  `json:"enabled"`
}

type UpdatePolicyRequest struct {
	MaxCheckoutsPerWindow *int    `json:"max_checkouts_per_window" binding:"omitempty,min=1,max=2147483647"`
	CheckoutWindow        *string `json:"checkout_window" binding:"omitempty,oneof=hourly daily"`
	MaxActiveCheckouts    *int    `json:"max_active_checkouts" binding:"omitempty,min=1,max=2147483647"`
	MaxTTLSeconds         *int    `json:"max_ttl_seconds" binding:"omitempty,min=1,max=2147483647"`
	Enabled               *bool   `json:"enabled"`
}

type PolicyInfo struct {
	ID                    string     `json:"id"`
	ServiceID             string     `json:"service_id"`
	AgentTokenID          *string    `json:"agent_token_id"`
	MaxCheckoutsPerWindow int32      `json:"max_checkouts_per_window"`
	CheckoutWindow        string     `json:"checkout_window"`
	MaxActiveCheckouts    int32      `json:"max_active_checkouts"`
	MaxTTLSeconds         int32      `json:"max_ttl_seconds"`
	Enabled               bool       `json:"enabled"`
	CreatedAt             time.Time  `json:"created_at"`
	RevokedAt             *time.Time `json:"revoked_at"`
}

type PoliciesResponse struct {
	Policies []PolicyInfo `json:"policies"`
	Count    int          `json:"count"`
}

type AuditEntry struct {
	ID           string         `json:"id"`
	AgentTokenID *string        `json:"agent_token_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
}

type AuditResponse struct {
	Events []AuditEntry `json:"events"`
	Count  int          `json:"count"`
}
