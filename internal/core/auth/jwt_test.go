package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
)

func TestIssueAndParse(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "formbuilder", TTL: time.Hour}

	tok, err := j.Issue("u1", domain.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "formbuilder", TTL: time.Hour}
	tok, err := j.Issue("u1", domain.RoleUser)
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("another"), Issuer: "formbuilder", TTL: time.Hour}
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	j := &JWTer{Secret: []byte("s"), Issuer: "someone-else", TTL: time.Hour}
	tok, err := j.Issue("u1", domain.RoleUser)
	require.NoError(t, err)

	me := &JWTer{Secret: []byte("s"), Issuer: "formbuilder", TTL: time.Hour}
	_, err = me.Parse(tok)
	assert.Error(t, err)
}
