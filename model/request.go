package model

// RegisterRequest is the payload for creating a new user.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,max=20"`
	LastName  string `json:"last_name" validate:"required,max=30"`
	Login     string `json:"login" validate:"required,max=20"`
	Password  string `json:"password" validate:"required,max=16"`
}

// LoginRequest carries no length limits: an over-long login simply does not
// exist and an over-long password cannot match.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ColumnInput describes a column in board create and update payloads.
// ID is only honoured on update, where it selects an existing column.
type ColumnInput struct {
	ID          *int   `json:"id,omitempty"`
	Title       string `json:"title" validate:"required,max=20"`
	OrderNumber int    `json:"orderNumber" validate:"min=0"`
}

type BoardRequest struct {
	Title   string        `json:"title" validate:"required,max=20"`
	Columns []ColumnInput `json:"columns" validate:"dive"`
}

type ColumnRequest struct {
	Title       string `json:"title" validate:"required,max=20"`
	OrderNumber int    `json:"orderNumber" validate:"min=0"`
}

type TaskRequest struct {
	Title       string `json:"title" validate:"required,max=20"`
	Description string `json:"description"`
	ColumnID    int    `json:"columnId" validate:"required,min=1"`
}
