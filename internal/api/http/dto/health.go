package dto

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type PageQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
