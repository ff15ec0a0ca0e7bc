package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/regional-streaming/internal/model"
	"github.com/iliyamo/regional-streaming/internal/otp"
	"github.com/iliyamo/regional-streaming/internal/service"
	"github.com/iliyamo/regional-streaming/internal/testutil"
	"github.com/iliyamo/regional-streaming/internal/utils"
)

var authCfg = service.AuthConfig{
	JWTSecret:      "test-secret",
	AccessTTLMin:   15,
	RefreshTTLDays: 7,
	BcryptCost:     4,
	OTPTTL:         5 * time.Minute,
}

func newAuth(t *testing.T) (service.AuthService, *testutil.Clock) {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock()
	return service.NewAuthService(db, otp.NewMemoryStore(), authCfg, clock.Now, nopLog), clock
}

func TestPhoneLoginProvisionsOnce(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	code, err := svc.SendOTP(ctx, "9876543210")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	res, err := svc.Login(ctx, service.LoginInput{Identifier: "9876543210", LoginType: "phone", OTP: code})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, model.RoleUser, res.User.Role)
	assert.True(t, res.User.IsVerified)
	require.Len(t, res.Profiles, 1)
	assert.Equal(t, model.DefaultProfileName, res.Profiles[0].Name)

	claims, err := utils.ParseAccessToken(authCfg.JWTSecret, res.Access.Token, testutil.Epoch)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	_, err = svc.Login(ctx, service.LoginInput{Identifier: "9876543210", LoginType: "phone", OTP: code})
	assertKind(t, err, service.KindUnauthorized)

	code, err = svc.SendOTP(ctx, "9876543210")
	require.NoError(t, err)
	again, err := svc.Login(ctx, service.LoginInput{Identifier: "9876543210", LoginType: "phone", OTP: code})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, res.User.ID, again.User.ID)
	assert.Len(t, again.Profiles, 1)
}

func TestPhoneLoginValidation(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	_, err := svc.SendOTP(ctx, "12345")
	assertKind(t, err, service.KindValidation)
	_, err = svc.Login(ctx, service.LoginInput{Identifier: "9876543210", LoginType: "phone", OTP: "12"})
	assertKind(t, err, service.KindValidation)
	_, err = svc.Login(ctx, service.LoginInput{Identifier: "9876543210", LoginType: "phone", OTP: "123456"})
	assertKind(t, err, service.KindUnauthorized)
	_, err = svc.Login(ctx, service.LoginInput{Identifier: "x", LoginType: "fax"})
	assertKind(t, err, service.KindValidation)
}

func TestEmailRegisterAndLogin(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, service.RegisterInput{Email: "Maker@Example.com", Password: "longenough", Name: "Maker", Role: "creator"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCreator, reg.User.Role)
	assert.Equal(t, "maker@example.com", *reg.User.Email)
	require.Len(t, reg.Profiles, 1)

	_, err = svc.Register(ctx, service.RegisterInput{Email: "maker@example.com", Password: "longenough"})
	assertKind(t, err, service.KindDuplicate)
	_, err = svc.Register(ctx, service.RegisterInput{Email: "admin@example.com", Password: "longenough", Role: "ADMIN"})
	assertKind(t, err, service.KindValidation)
	_, err = svc.Register(ctx, service.RegisterInput{Email: "short@example.com", Password: "short"})
	assertKind(t, err, service.KindValidation)

	res, err := svc.Login(ctx, service.LoginInput{Identifier: "maker@example.com", LoginType: "email", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)

	_, err = svc.Login(ctx, service.LoginInput{Identifier: "maker@example.com", LoginType: "email", Password: "wrong"})
	assertKind(t, err, service.KindUnauthorized)
	_, err = svc.Login(ctx, service.LoginInput{Identifier: "nobody@example.com", LoginType: "email"})
	assertKind(t, err, service.KindNotFound)
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	svc, clock := newAuth(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, service.RegisterInput{Email: "r@example.com", Password: "longenough"})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	next, err := svc.Refresh(ctx, reg.Refresh.Raw)
	require.NoError(t, err)
	assert.NotEqual(t, reg.Refresh.Raw, next.Refresh.Raw)

	_, err = svc.Refresh(ctx, reg.Refresh.Raw)
	assertKind(t, err, service.KindUnauthorized)

	access, err := svc.RefreshAccess(ctx, next.Refresh.Raw)
	require.NoError(t, err)
	assert.NotEmpty(t, access.Token)

	require.NoError(t, svc.Logout(ctx, next.Refresh.Raw))
	assertKind(t, svc.Logout(ctx, next.Refresh.Raw), service.KindUnauthorized)

	again, err := svc.Login(ctx, service.LoginInput{Identifier: "r@example.com", LoginType: "email", Password: "longenough"})
	require.NoError(t, err)
	require.NoError(t, svc.LogoutAll(ctx, again.User.ID))
	_, err = svc.Refresh(ctx, again.Refresh.Raw)
	assertKind(t, err, service.KindUnauthorized)

	clock.Advance(8 * 24 * time.Hour)
	late, err := svc.Login(ctx, service.LoginInput{Identifier: "r@example.com", LoginType: "email", Password: "longenough"})
	require.NoError(t, err)
	clock.Advance(8 * 24 * time.Hour)
	_, err = svc.Refresh(ctx, late.Refresh.Raw)
	assertKind(t, err, service.KindUnauthorized)
}

func TestSuspendedUserCannotSignIn(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	admin := service.Actor{ID: "admin-1", Role: model.RoleAdmin}

	reg, err := svc.Register(ctx, service.RegisterInput{Email: "s@example.com", Password: "longenough"})
	require.NoError(t, err)

	u, err := svc.SetUserStatus(ctx, admin, reg.User.ID, "SUSPENDED")
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusSuspended, u.Status)

	_, err = svc.Login(ctx, service.LoginInput{Identifier: "s@example.com", LoginType: "email", Password: "longenough"})
	assertKind(t, err, service.KindForbidden)
	_, err = svc.Refresh(ctx, reg.Refresh.Raw)
	assertKind(t, err, service.KindUnauthorized)

	_, err = svc.SetUserStatus(ctx, admin, reg.User.ID, "active")
	require.NoError(t, err)
	_, err = svc.Login(ctx, service.LoginInput{Identifier: "s@example.com", LoginType: "email", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.SetUserStatus(ctx, admin, reg.User.ID, "deleted")
	assertKind(t, err, service.KindValidation)
	_, err = svc.SetUserStatus(ctx, admin, "missing", "banned")
	assertKind(t, err, service.KindNotFound)
	_, err = svc.SetUserStatus(ctx, service.Actor{ID: reg.User.ID, Role: model.RoleUser}, reg.User.ID, "banned")
	assertKind(t, err, service.KindForbidden)
}

func TestMe(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, service.RegisterInput{Email: "me@example.com", Password: "longenough", Name: "Me"})
	require.NoError(t, err)

	u, profiles, err := svc.Me(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Me", u.Name)
	assert.Len(t, profiles, 1)

	_, _, err = svc.Me(ctx, "missing")
	assertKind(t, err, service.KindNotFound)
}
