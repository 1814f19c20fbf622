package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupShape struct {
	Email string `validate:"required,email"`
	Role  string `validate:"required,role_signup"`
}

type eventShape struct {
	Date time.Time `validate:"future_date"`
	Tier string    `validate:"omitempty,tier"`
}

func TestStructAppliesCustomRules(t *testing.T) {
	require.NoError(t, Struct(signupShape{Email: "fan@example.com", Role: "fan"}))

	err := Struct(signupShape{Email: "fan@example.com", Role: "admin"})
	require.Error(t, err)
	assert.Contains(t, Message(err), "role is invalid (role_signup)")
}

func TestFutureDate(t *testing.T) {
	require.NoError(t, Struct(eventShape{Date: time.Now().Add(time.Hour)}))

	err := Struct(eventShape{Date: time.Now().Add(-time.Hour), Tier: "gold"})
	require.Error(t, err)
	msg := Message(err)
	assert.True(t, strings.Contains(msg, "date must be in the future"), msg)
	assert.True(t, strings.Contains(msg, "tier is invalid"), msg)
}

func TestSetupRegistersOnGinEngine(t *testing.T) {
	require.NoError(t, Setup())
}
