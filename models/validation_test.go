package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validUser() *User {
	return &User{Name: "Mike", Email: "mike@example.com", Password: "56what!!"}
}

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(u *User)
		field  string
	}{
		{name: "valid", mutate: func(u *User) {}},
		{name: "missing name", mutate: func(u *User) { u.Name = "   " }, field: "name"},
		{name: "bad email", mutate: func(u *User) { u.Email = "invalidemail" }, field: "email"},
		{name: "short password", mutate: func(u *User) { u.Password = "123" }, field: "password"},
		{name: "password containing password", mutate: func(u *User) { u.Password = "myPassWord1" }, field: "password"},
		{name: "negative age", mutate: func(u *User) { u.Age = -1 }, field: "age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUser()
			tt.mutate(u)

			err := ValidateUser(u)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}

			var fe FieldErrors
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Contains(t, fe, tt.field)
		})
	}
}

func TestValidateUser_Normalizes(t *testing.T) {
	u := &User{Name: "  Mike ", Email: " MIKE@Example.com ", Password: " 56what!! "}
	require.NoError(t, ValidateUser(u))

	assert.Equal(t, "Mike", u.Name)
	assert.Equal(t, "mike@example.com", u.Email)
	assert.Equal(t, "56what!!", u.Password)
}

func TestValidateTask(t *testing.T) {
	task := &Task{Description: "  First task  ", Owner: "owner"}
	require.NoError(t, ValidateTask(task))
	assert.Equal(t, "First task", task.Description)

	err := ValidateTask(&Task{Description: "   ", Owner: "owner"})
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe, "description")
	assert.Contains(t, err.Error(), "description: is required")
}

func TestUpdateUserRequest_Apply(t *testing.T) {
	name := "Volk"
	age := 30
	u := validUser()

	UpdateUserRequest{Name: &name, Age: &age}.Apply(u)

	assert.Equal(t, "Volk", u.Name)
	assert.Equal(t, 30, u.Age)
	assert.Equal(t, "mike@example.com", u.Email)
}
