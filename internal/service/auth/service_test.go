package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/domain/validation"
	"github.com/mamadbah2/stockledger/internal/repository/memory"
)

func newService() *Service {
	return NewService(memory.NewUserRepository(), validation.New(nil), Options{
		Secret:     []byte("0123456789abcdef-test"),
		Issuer:     "stockledger",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, nil)
}

func TestRegisterLoginParse(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	creds := models.Credentials{Username: "asha", Password: "correct horse"}

	reg, err := svc.Register(ctx, creds)
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.NotEmpty(t, reg.User.ID)
	assert.NotEqual(t, creds.Password, reg.User.PasswordHash)

	login, err := svc.Login(ctx, creds)
	require.NoError(t, err)

	session, err := svc.ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, session.UserID)
	assert.Equal(t, "asha", session.Username)
}

func TestRegister_Duplicate(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	creds := models.Credentials{Username: "asha", Password: "correct horse"}

	_, err := svc.Register(ctx, creds)
	require.NoError(t, err)
	_, err = svc.Register(ctx, creds)
	assert.ErrorIs(t, err, models.ErrDuplicate)
}

func TestLogin_Rejects(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	_, err := svc.Register(ctx, models.Credentials{Username: "asha", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, models.Credentials{Username: "asha", Password: "battery staple"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.Credentials{Username: "ravi", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseToken_Rejects(t *testing.T) {
	svc := newService()
	res, err := svc.Register(context.Background(), models.Credentials{Username: "asha", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.ParseToken(res.Token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := newService()
	other.opts.Secret = []byte("another-secret-value")
	_, err = other.ParseToken(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ParseToken(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogin_TrimsUsername(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	creds := models.Credentials{Username: " meena ", Password: "correct horse"}

	registered, err := svc.Register(ctx, creds)
	require.NoError(t, err)
	assert.Equal(t, "meena", registered.User.Username)

	login, err := svc.Login(ctx, creds)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, login.User.ID)
}

func TestRegister_MultibytePasswordTooLong(t *testing.T) {
	svc := newService()

	_, err := svc.Register(context.Background(), models.Credentials{Username: "ravi", Password: strings.Repeat("é", 40)})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Violations[0].Field)
}
