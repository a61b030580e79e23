package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	token, err := Generate("secreto", "user-1", "branch-1", "branch-ledger", 5)
	require.NoError(t, err)

	userID, branchID, err := Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "branch-1", branchID)
}

func TestParse_Rejects(t *testing.T) {
	token, err := Generate("secreto", "user-1", "", "branch-ledger", 5)
	require.NoError(t, err)

	_, _, err = Parse("otro", token)
	assert.Error(t, err, "firma incorrecta")

	expired, err := Generate("secreto", "user-1", "", "branch-ledger", -1)
	require.NoError(t, err)
	_, _, err = Parse("secreto", expired)
	assert.Error(t, err, "token expirado")

	_, _, err = Parse("", token)
	assert.Error(t, err)
}

func TestGenerate_RequiresSecretAndUser(t *testing.T) {
	_, err := Generate("", "user-1", "", "x", 5)
	assert.Error(t, err)
	_, err = Generate("s", "", "", "x", 5)
	assert.Error(t, err)
}
