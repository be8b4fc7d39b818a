package dto

// PageResponse page metadata on list responses.
type PageResponse struct {
	Page     int `json:"page"`
	PerPage  int `json:"per_page"`
	Total    int `json:"total"`
	LastPage int `json:"last_page"`
}

// ErrorResponse HTTP error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrorResponse HTTP body for rejected input: per-field messages.
type ValidationErrorResponse struct {
	Code   string            `json:"code"`
	Errors map[string]string `json:"errors"`
}
