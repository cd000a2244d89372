package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/utils"
)

const testSecret = "test-secret-key"

func TestGenerateAndValidateJWT(t *testing.T) {
	userID := utils.NewSixID()

	token, err := GenerateJWT(userID, models.RoleAdmin, testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT(utils.NewSixID(), models.RoleUser, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateJWT_Expired(t *testing.T) {
	token, err := GenerateJWT(utils.NewSixID(), models.RoleUser, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateJWT(token, testSecret)
	assert.Error(t, err)
}

func TestValidateJWT_Garbage(t *testing.T) {
	_, err := ValidateJWT("not.a.token", testSecret)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, CheckPasswordHash("correct horse battery", hash))
	assert.False(t, CheckPasswordHash("wrong password", hash))
}
