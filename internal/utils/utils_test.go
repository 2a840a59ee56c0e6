package utils

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}

	digest, err := h.Hash("Abcd1234!")
	require.NoError(t, err)
	assert.NotEqual(t, "Abcd1234!", digest)
	assert.True(t, h.Verify("Abcd1234!", digest))
	assert.False(t, h.Verify("wrong", digest))
}

func TestGenerateActivationCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateActivationCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Regexp(t, `^[0-9]{6}$`, code)
	}
}

func TestValidPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Abcd1234!", true},
		{"abcd1234!", false},
		{"ABCD1234!", false},
		{"Abcdefgh!", false},
		{"Abcd12345", false},
		{"Ab1!", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPassword(tt.password))
		})
	}
}

func TestRegisterValidators(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidators(v))

	type input struct {
		Phone    string `validate:"phone"`
		Password string `validate:"password"`
	}

	assert.NoError(t, v.Struct(input{Phone: "0780000000", Password: "Abcd1234!"}))
	assert.Error(t, v.Struct(input{Phone: "07800", Password: "Abcd1234!"}))
	assert.Error(t, v.Struct(input{Phone: "07800000a0", Password: "Abcd1234!"}))
	assert.Error(t, v.Struct(input{Phone: "0780000000", Password: "weak"}))
}
