package dto

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Timestamp string `json:"timestamp" example:"2024-01-06T10:15:30Z"`
	Status    int    `json:"status" example:"404"`
	Error     string `json:"error" example:"Not Found"`
	Code      string `json:"code" example:"RATE_NOT_FOUND"`
	Message   string `json:"message"`
	Path      string `json:"path" example:"/api/v1/rates/USD"`
}
