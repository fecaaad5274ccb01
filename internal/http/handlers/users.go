package handlers

import "github.com/geocoder89/invoicehub/internal/domain/user"

type QuickBooksStatus struct {
	Connected bool `json:"connected"`
}

// UserResponse is the only outward shape of a user. It has no password field.
type UserResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	FirstName  string           `json:"firstName"`
	LastName   string           `json:"lastName"`
	QuickBooks QuickBooksStatus `json:"quickbooks"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		QuickBooks: QuickBooksStatus{Connected: u.QuickBooks.Connected},
	}
}
