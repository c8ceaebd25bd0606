package domain

import "github.com/google/uuid"

// TriggerRequest is the JSON body accepted by the HTTP trigger endpoints
type TriggerRequest struct {
	Name string `json:"name"`
}

// ToDoDTO is the API representation of a ToDo row
type ToDoDTO struct {
	ID        uuid.UUID `json:"id"`
	Order     *int      `json:"order,omitempty"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	Completed bool      `json:"completed"`
}

// CreateToDoRequest creates a new ToDo row
type CreateToDoRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Order *int   `json:"order,omitempty" validate:"omitempty,gte=0"`
	URL   string `json:"url,omitempty" validate:"omitempty,max=200"`
}

// UpdateToDoRequest partially updates a ToDo row; nil fields are untouched
type UpdateToDoRequest struct {
	Title     *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Order     *int    `json:"order,omitempty" validate:"omitempty,gte=0"`
	URL       *string `json:"url,omitempty" validate:"omitempty,max=200"`
	Completed *bool   `json:"completed,omitempty"`
}

// PaginatedResponse wraps a paginated list result
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
