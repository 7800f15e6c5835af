package types

// ResourcePage is the paginated listing returned for a resource kind.
type ResourcePage struct {
	Content       []map[string]interface{} `json:"content"`
	TotalElements int                      `json:"totalElements"`
	Number        int                      `json:"number"`
	Size          int                      `json:"size"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error      string      `json:"error"`
	Violations []Violation `json:"violations,omitempty"`
}
