package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertionManager_SignVerify(t *testing.T) {
	m := NewAssertionManager("idp.test", "s3cret", time.Minute)
	tok, exp, err := m.Sign("jane@example.com", "Jane")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "Jane", claims.Name)
}

func TestAssertionManager_Rejects(t *testing.T) {
	m := NewAssertionManager("idp.test", "s3cret", time.Minute)
	tok, _, err := m.Sign("jane@example.com", "")
	require.NoError(t, err)

	other := NewAssertionManager("idp.test", "different", time.Minute)
	_, err = other.Verify(tok)
	assert.Error(t, err)

	wrongIssuer := NewAssertionManager("elsewhere", "s3cret", time.Minute)
	_, err = wrongIssuer.Verify(tok)
	assert.Error(t, err)

	expired := NewAssertionManager("idp.test", "s3cret", -time.Minute)
	old, _, err := expired.Sign("jane@example.com", "")
	require.NoError(t, err)
	_, err = m.Verify(old)
	assert.Error(t, err)

	noEmail, _, err := m.Sign("", "")
	require.NoError(t, err)
	_, err = m.Verify(noEmail)
	assert.Error(t, err)

	_, err = NewAssertionManager("idp.test", "", time.Minute).Verify(tok)
	assert.Error(t, err)

	_, err = m.Verify("garbage")
	assert.Error(t, err)
}
