package dto

import "time"

type CheckoutRequest struct {
	Service string `json:"service" binding:"required,max=255"`
	TTL     int    `json:"ttl" binding:"omitempty,min=1"`
}

type CheckoutResponse struct {
	CheckoutID   string    `json:"checkout_id"`
	Secret       string    `json:"secret"`
	Service      string    `json:"service"`
	PolicyID     string    `json:"policy_id"`
	CheckedOutAt time.Time `json:"checked_out_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	Note         string    `json:"note"`
}

type ReturnRequest struct {
	CheckoutID string `json:"checkout_id" binding:"required,uuid"`
}

type ReturnResponse struct {
	CheckoutID string    `json:"checkout_id"`
	ReturnedAt time.Time `json:"returned_at"`
}

type CheckoutInfo struct {
	ID           string     `json:"id"`
	AgentTokenID string     `json:"agent_token_id"`
	StoredKeyID  string     `json:"stored_key_id"`
	PolicyID     string     `json:"policy_id"`
	Status       string     `json:"status"`
	CheckedOutAt time.Time  `json:"checked_out_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	ReturnedAt   *time.Time `json:"returned_at"`
	RevokedAt    *time.Time `json:"revoked_at"`
}

type CheckoutsResponse struct {
	Checkouts []CheckoutInfo `json:"checkouts"`
	Count     int            `json:"count"`
}

type ServiceInfo struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Name      string    `json:"name"`
	BaseURL   string    `json:"base_url"`
	CreatedAt time.Time `json:"created_at"`
}

type ServicesResponse struct {
	Services []ServiceInfo `json:"services"`
	Count    int           `json:"count"`
}
