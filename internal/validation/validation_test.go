package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/talent-sift/internal/pkg/apperror"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("  HR.Team@Acme.com "))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("no-at-sign"))
	assert.Error(t, ValidateEmail("a@b@c.com"))
	assert.Error(t, ValidateEmail("a@localhost"))
	assert.Error(t, ValidateEmail("a b@acme.com"))
}

func TestCheckCompanyDomain(t *testing.T) {
	allowed := []string{"acme.com", " Globex.io "}

	assert.NoError(t, CheckCompanyDomain("hr@acme.com", allowed))
	assert.NoError(t, CheckCompanyDomain("hr@eu.acme.com", allowed))
	assert.NoError(t, CheckCompanyDomain("HR@GLOBEX.IO", allowed))

	err := CheckCompanyDomain("hr@notacme.com", allowed)
	assert.ErrorIs(t, err, ErrUnauthorizedDomain)
	assert.True(t, apperror.IsForbidden(err))

	err = CheckCompanyDomain("broken", allowed)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	assert.NoError(t, CheckCompanyDomain("anyone@gmail.com", nil))
}

func TestMissingFields(t *testing.T) {
	values := map[string]string{"jobTitle": "Go dev", "email": " ", "client": "Acme"}
	assert.Equal(t, []string{"email", "owner"}, MissingFields(values, "jobTitle", "email", "client", "owner"))
	assert.Nil(t, MissingFields(values, "jobTitle"))
}

func TestValidateSkills(t *testing.T) {
	assert.NoError(t, ValidateSkills([]string{"Go", "SQL"}))
	assert.Error(t, ValidateSkills([]string{"Go", " "}))
	assert.Error(t, ValidateSkills(make([]string, MaxSkillsCount+1)))
}

func TestProxyKey(t *testing.T) {
	assert.Error(t, ValidateProxyKey("short1A"))
	assert.Error(t, ValidateProxyKey("alllowercase12345"))
	assert.Error(t, ValidateProxyKey("ALLUPPERCASE12345"))
	assert.Error(t, ValidateProxyKey("NoDigitsInThisKeyAtAll"))

	hash, err := HashProxyKey("Sup3rSecretProxyKey")
	require.NoError(t, err)
	assert.True(t, ProxyKeyMatches(hash, "Sup3rSecretProxyKey"))
	assert.False(t, ProxyKeyMatches(hash, "wrong"))
	assert.False(t, ProxyKeyMatches("", "Sup3rSecretProxyKey"))
}
