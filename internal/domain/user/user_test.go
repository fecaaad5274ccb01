package user_test

import (
	"encoding/json"
	"testing"

	"github.com/geocoder89/invoicehub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		firstName string
		lastName  string
		want      string
	}{
		{name: "explicit name wins", in: "Ada L.", firstName: "Ada", lastName: "Lovelace", want: "Ada L."},
		{name: "first and last", firstName: "Ada", lastName: "Lovelace", want: "Ada Lovelace"},
		{name: "first only", firstName: "Ada", want: "Ada"},
		{name: "last only", lastName: "Lovelace", want: "Lovelace"},
		{name: "blank name falls back", in: "   ", firstName: "Ada", lastName: "Lovelace", want: "Ada Lovelace"},
		{name: "nothing", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, user.DisplayName(tt.in, tt.firstName, tt.lastName))
		})
	}
}

func TestUserJSONOmitsPasswordHash(t *testing.T) {
	u := user.User{ID: "u1", Email: "a@x.com", PasswordHash: "$2a$10$secret"}

	b, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, string(b), "password")
}
