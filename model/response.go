package model

// UserResponse is returned by registration. It carries no secrets.
type UserResponse struct {
	ID        int    `json:"id"`
	Login     string `json:"login"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Login:     u.Login,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

type DisplayNameResponse struct {
	DisplayName string `json:"display_name"`
}

// DetailResponse is a one-line confirmation such as "Board deleted".
type DetailResponse struct {
	Detail string `json:"detail"`
}
