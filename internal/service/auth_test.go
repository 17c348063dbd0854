package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streamvault/streamvault/internal/auth"
	"github.com/streamvault/streamvault/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-signing-secret"

// fakeStore is an in-memory UserStore that enforces the same uniqueness the
// database constraints would.
type fakeStore struct {
	users     []models.User
	nextID    int64
	createErr error
}

func (f *fakeStore) FindByHandleOrEmail(_ context.Context, userID, email string) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.UserID == userID || u.Email == email {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByHandle(_ context.Context, userID string) (*models.User, error) {
	for _, u := range f.users {
		if u.UserID == userID {
			user := u
			return &user, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		conflict := &models.ConflictError{
			HandleTaken: u.UserID == user.UserID,
			EmailTaken:  u.Email == user.Email,
		}
		if conflict.HandleTaken || conflict.EmailTaken {
			return conflict
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	f.users = append(f.users, *user)
	return nil
}

type fakeMailer struct {
	sent chan string
}

func (f *fakeMailer) Configured() bool { return true }

func (f *fakeMailer) SendWelcome(to, _ string) error {
	f.sent <- to
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestAuthService(secret string) (*AuthService, *fakeStore) {
	store := &fakeStore{}
	return NewAuthService(store, quietLogger(), secret, nil), store
}

func validRequest() RegisterRequest {
	return RegisterRequest{
		UserID:   "u1",
		Name:     "Name",
		Email:    "a@b.com",
		Phone:    "555",
		Password: "secret1",
	}
}

func TestRegister_Success(t *testing.T) {
	svc, store := newTestAuthService(testSecret)

	require.NoError(t, svc.Register(context.Background(), validRequest()))
	require.Len(t, store.users, 1)

	u := store.users[0]
	assert.Equal(t, "u1", u.UserID)
	assert.Equal(t, "a@b.com", u.Email)
	assert.NotEqual(t, "secret1", u.PasswordHash, "password must not be stored in plaintext")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _ := newTestAuthService(testSecret)

	reqs := []RegisterRequest{
		{Name: "n", Email: "a@b.com", Phone: "555", Password: "secret1"},
		{UserID: "u", Email: "a@b.com", Phone: "555", Password: "secret1"},
		{UserID: "u", Name: "n", Phone: "555", Password: "secret1"},
		{UserID: "u", Name: "n", Email: "a@b.com", Password: "secret1"},
		{UserID: "u", Name: "n", Email: "a@b.com", Phone: "555"},
	}
	for _, req := range reqs {
		err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	}
}

func TestRegister_PasswordLengthBoundary(t *testing.T) {
	svc, _ := newTestAuthService(testSecret)

	short := validRequest()
	short.Password = "12345"
	require.ErrorIs(t, svc.Register(context.Background(), short), models.ErrInvalidInput)

	exact := validRequest()
	exact.Password = "123456"
	require.NoError(t, svc.Register(context.Background(), exact))
}

func TestRegister_InvalidEmail(t *testing.T) {
	svc, _ := newTestAuthService(testSecret)

	for _, email := range []string{"plainaddress", "@no-local.com", "a b@c.com"} {
		req := validRequest()
		req.Email = email
		assert.ErrorIs(t, svc.Register(context.Background(), req), models.ErrInvalidInput)
	}
}

func TestRegister_EmailCaseNormalization(t *testing.T) {
	svc, store := newTestAuthService(testSecret)

	req := validRequest()
	req.Email = "Alice@Example.COM"
	require.NoError(t, svc.Register(context.Background(), req))
	require.Equal(t, "alice@example.com", store.users[0].Email)

	// The differently-cased spelling collides with the canonical form.
	dup := validRequest()
	dup.UserID = "u2"
	dup.Email = "ALICE@example.com"
	err := svc.Register(context.Background(), dup)
	conflict, ok := models.IsConflict(err)
	require.True(t, ok, "expected conflict, got %v", err)
	assert.True(t, conflict.EmailTaken)
	assert.False(t, conflict.HandleTaken)
}

func TestRegister_Conflicts(t *testing.T) {
	tests := []struct {
		name        string
		userID      string
		email       string
		wantMessage string
	}{
		{"handle only", "u1", "other@b.com", "User ID is already taken."},
		{"email only", "u2", "a@b.com", "Email is already registered."},
		{"both", "u1", "a@b.com", "User ID and email are already taken."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestAuthService(testSecret)
			require.NoError(t, svc.Register(context.Background(), validRequest()))

			dup := validRequest()
			dup.UserID = tc.userID
			dup.Email = tc.email
			err := svc.Register(context.Background(), dup)

			_, ok := models.IsConflict(err)
			require.True(t, ok, "expected conflict, got %v", err)
			assert.Equal(t, tc.wantMessage, err.Error())
		})
	}
}

func TestRegister_ConstraintRaceSurfacesConflict(t *testing.T) {
	// The pre-check passes but the insert loses a race: the store's
	// unique-violation mapping is the authoritative signal.
	svc, store := newTestAuthService(testSecret)
	store.createErr = &models.ConflictError{HandleTaken: true}

	err := svc.Register(context.Background(), validRequest())
	_, ok := models.IsConflict(err)
	require.True(t, ok, "expected conflict, got %v", err)
}

func TestRegister_SendsWelcomeMail(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{sent: make(chan string, 1)}
	svc := NewAuthService(store, quietLogger(), testSecret, mailer)

	require.NoError(t, svc.Register(context.Background(), validRequest()))

	select {
	case to := <-mailer.sent:
		assert.Equal(t, "a@b.com", to)
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email was not sent")
	}
}

func TestLogin_UnknownHandle(t *testing.T) {
	svc, _ := newTestAuthService(testSecret)

	result, err := svc.Login(context.Background(), "ghost", "whatever")
	require.ErrorIs(t, err, models.ErrUserNotFound)
	require.Nil(t, result)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(testSecret)
	require.NoError(t, svc.Register(context.Background(), validRequest()))

	result, err := svc.Login(context.Background(), "u1", "wrong")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)
	require.Nil(t, result)
}

func TestLogin_MissingFields(t *testing.T) {
	svc, _ := newTestAuthService(testSecret)

	_, err := svc.Login(context.Background(), "", "pw")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = svc.Login(context.Background(), "u1", "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestLogin_Success_TokenClaims(t *testing.T) {
	svc, store := newTestAuthService(testSecret)
	require.NoError(t, svc.Register(context.Background(), validRequest()))

	result, err := svc.Login(context.Background(), "u1", "secret1")
	require.NoError(t, err)
	require.NotNil(t, result.Token)

	stored := store.users[0]
	assert.Equal(t, stored.ID, result.User.ID)
	assert.Equal(t, "u1", result.User.UserID)
	assert.Equal(t, "a@b.com", result.User.Email)
	assert.Equal(t, "555", result.User.Phone)

	claims, err := auth.ParseToken(*result.Token, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.ID)
	assert.Equal(t, stored.UserID, claims.UserID)
	assert.Equal(t, stored.Email, claims.Email)
	assert.Equal(t, stored.Name, claims.Name)

	// Fixed 7-day expiry.
	ttl := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, auth.TokenTTL.Seconds(), ttl.Seconds(), 60)
}

func TestLogin_NoSecret_NullToken(t *testing.T) {
	svc, _ := newTestAuthService("")
	require.NoError(t, svc.Register(context.Background(), validRequest()))

	result, err := svc.Login(context.Background(), "u1", "secret1")
	require.NoError(t, err)
	assert.Nil(t, result.Token, "no signing secret configured, token must be null")
	assert.Equal(t, "u1", result.User.UserID)
}

func TestLogin_PasswordNotSanitized(t *testing.T) {
	// A password with leading whitespace and HTML characters must be
	// compared byte-exact, not trimmed or escaped.
	svc, _ := newTestAuthService(testSecret)

	req := validRequest()
	req.Password = ` <pass&word> `
	require.NoError(t, svc.Register(context.Background(), req))

	_, err := svc.Login(context.Background(), "u1", ` <pass&word> `)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "u1", "<pass&word>")
	require.Error(t, err)
	require.True(t, errors.Is(err, models.ErrInvalidCredentials))
}
