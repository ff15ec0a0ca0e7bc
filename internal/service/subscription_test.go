package service_test

import (
	"context"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/regional-streaming/internal/metrics"
	"github.com/iliyamo/regional-streaming/internal/model"
	"github.com/iliyamo/regional-streaming/internal/repository"
	"github.com/iliyamo/regional-streaming/internal/service"
	"github.com/iliyamo/regional-streaming/internal/testutil"
)

func TestPurchaseMonthly(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	clock := testutil.NewClock()
	m := metrics.New("test")
	svc := service.NewSubscriptionService(db, false, m, clock.Now, nopLog)
	u := testutil.CreateUser(t, db, "Buyer", model.RoleUser)

	sub, err := svc.Purchase(ctx, service.PurchaseInput{UserID: u.ID, Plan: "monthly"})
	require.NoError(t, err)
	assert.Equal(t, model.PlanMonthly, sub.Plan)
	assert.Equal(t, int64(299), sub.Price)
	assert.Equal(t, "INR", sub.Currency)
	assert.True(t, sub.IsActive)
	assert.Equal(t, testutil.Epoch.AddDate(0, 0, 30), sub.EndDate)

	user, err := repository.NewUserRepo(db).GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, user.SubscriptionID)
	assert.Equal(t, sub.ID, *user.SubscriptionID)
	assert.True(t, user.SubscriptionEnd.Equal(sub.EndDate))

	ov, err := svc.Overview(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ov.HasActiveSubscription)
	require.NotNil(t, ov.ActiveSubscription)
	assert.Equal(t, sub.ID, ov.ActiveSubscription.ID)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.SubscriptionsPurchased.WithLabelValues("MONTHLY")))
}

func TestPurchaseLifetimeAndYearlyTerms(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewSubscriptionService(db, false, nil, testutil.NewClock().Now, nopLog)
	u := testutil.CreateUser(t, db, "Buyer", model.RoleUser)

	y, err := svc.Purchase(context.Background(), service.PurchaseInput{UserID: u.ID, Plan: "YEARLY"})
	require.NoError(t, err)
	assert.Equal(t, int64(2990), y.Price)
	assert.Equal(t, testutil.Epoch.Add(365*24*time.Hour), y.EndDate)

	l, err := svc.Purchase(context.Background(), service.PurchaseInput{UserID: u.ID, Plan: "LIFETIME"})
	require.NoError(t, err)
	assert.Equal(t, int64(9990), l.Price)
	assert.Equal(t, testutil.Epoch.Add(36500*24*time.Hour), l.EndDate)
}

func TestPurchaseValidation(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := service.NewSubscriptionService(db, false, nil, testutil.NewClock().Now, nopLog)
	u := testutil.CreateUser(t, db, "Buyer", model.RoleUser)

	_, err := svc.Purchase(ctx, service.PurchaseInput{UserID: u.ID, Plan: "WEEKLY"})
	assertKind(t, err, service.KindValidation)
	_, err = svc.Purchase(ctx, service.PurchaseInput{Plan: "MONTHLY"})
	assertKind(t, err, service.KindValidation)
	_, err = svc.Purchase(ctx, service.PurchaseInput{UserID: "missing", Plan: "MONTHLY"})
	assertKind(t, err, service.KindNotFound)
}

func TestConcurrentGrantsCoexistUnlessReplaced(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	clock := testutil.NewClock()
	u := testutil.CreateUser(t, db, "Buyer", model.RoleUser)

	keep := service.NewSubscriptionService(db, false, nil, clock.Now, nopLog)
	first, err := keep.Purchase(ctx, service.PurchaseInput{UserID: u.ID, Plan: "MONTHLY"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = keep.Purchase(ctx, service.PurchaseInput{UserID: u.ID, Plan: "YEARLY"})
	require.NoError(t, err)

	ov, err := keep.Overview(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, ov.Subscriptions, 2)
	assert.True(t, ov.Subscriptions[0].IsActive)
	assert.True(t, ov.Subscriptions[1].IsActive)

	replace := service.NewSubscriptionService(db, true, nil, clock.Now, nopLog)
	clock.Advance(time.Minute)
	third, err := replace.Purchase(ctx, service.PurchaseInput{UserID: u.ID, Plan: "LIFETIME"})
	require.NoError(t, err)

	ov, err = replace.Overview(ctx, u.ID)
	require.NoError(t, err)
	for _, s := range ov.Subscriptions {
		assert.Equal(t, s.ID == third.ID, s.IsActive, s.Plan)
	}
	assert.NotEqual(t, first.ID, ov.ActiveSubscription.ID)
}

func TestCancelKeepsEndDate(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	clock := testutil.NewClock()
	m := metrics.New("test")
	svc := service.NewSubscriptionService(db, false, m, clock.Now, nopLog)
	u := testutil.CreateUser(t, db, "Buyer", model.RoleUser)

	sub, err := svc.Purchase(ctx, service.PurchaseInput{UserID: u.ID, Plan: "MONTHLY"})
	require.NoError(t, err)

	end, err := svc.Cancel(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, end.Equal(sub.EndDate))

	active, err := svc.GetActive(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	ov, err := svc.Overview(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, ov.Subscriptions, 1)
	assert.False(t, ov.Subscriptions[0].IsActive)
	assert.True(t, ov.Subscriptions[0].EndDate.Equal(sub.EndDate))

	_, err = svc.Cancel(ctx, u.ID)
	assertKind(t, err, service.KindNotFound)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.SubscriptionsCancelled))
}

func TestExpiredGrantIsNotActive(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	clock := testutil.NewClock()
	svc := service.NewSubscriptionService(db, false, nil, clock.Now, nopLog)
	u := testutil.CreateUser(t, db, "Buyer", model.RoleUser)

	_, err := svc.Purchase(ctx, service.PurchaseInput{UserID: u.ID, Plan: "MONTHLY"})
	require.NoError(t, err)
	clock.Advance(31 * 24 * time.Hour)

	active, err := svc.GetActive(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, active)
	_, err = svc.Cancel(ctx, u.ID)
	assertKind(t, err, service.KindNotFound)
}

func TestPurchaseWithPayment(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	clock := testutil.NewClock()
	u := testutil.CreateUser(t, db, "Buyer", model.RoleUser)
	other := testutil.CreateUser(t, db, "Other", model.RoleUser)
	subs := service.NewSubscriptionService(db, false, nil, clock.Now, nopLog)

	always := service.NewPaymentService(db, service.PaymentOptions{SuccessRate: 1, Roll: func() float64 { return 0 }}, nil, clock.Now, nopLog)
	never := service.NewPaymentService(db, service.PaymentOptions{SuccessRate: 1, Roll: func() float64 { return 1 }}, nil, clock.Now, nopLog)

	req := service.PaymentRequest{
		UserID: u.ID, Plan: "MONTHLY", Amount: 299, Method: "upi",
		Customer: model.CustomerInfo{Name: "Buyer", Email: "buyer@example.com", Phone: "9876543210"},
	}
	paid, err := always.Process(ctx, req)
	require.NoError(t, err)

	_, err = subs.Purchase(ctx, service.PurchaseInput{UserID: other.ID, Plan: "MONTHLY", PaymentID: paid.ID})
	assertKind(t, err, service.KindForbidden)
	_, err = subs.Purchase(ctx, service.PurchaseInput{UserID: u.ID, Plan: "YEARLY", PaymentID: paid.ID})
	assertKind(t, err, service.KindValidation)

	sub, err := subs.Purchase(ctx, service.PurchaseInput{UserID: u.ID, Plan: "MONTHLY", PaymentID: paid.ID})
	require.NoError(t, err)
	require.NotNil(t, sub.PaymentID)
	assert.Equal(t, paid.ID, *sub.PaymentID)

	_, err = subs.Purchase(ctx, service.PurchaseInput{UserID: u.ID, Plan: "MONTHLY", PaymentID: paid.ID})
	assertKind(t, err, service.KindDuplicate)

	declined, err := never.Process(ctx, req)
	assertKind(t, err, service.KindPaymentFailed)
	_, err = subs.Purchase(ctx, service.PurchaseInput{UserID: u.ID, Plan: "MONTHLY", PaymentID: declined.ID})
	assertKind(t, err, service.KindValidation)

	_, err = subs.Purchase(ctx, service.PurchaseInput{UserID: u.ID, Plan: "MONTHLY", PaymentID: "PAY_missing"})
	assertKind(t, err, service.KindValidation)
}

func TestPlansSortedByPrice(t *testing.T) {
	svc := service.NewSubscriptionService(nil, false, nil, testutil.NewClock().Now, nopLog)
	plans := svc.Plans()
	require.Len(t, plans, 3)
	assert.Equal(t, []string{"MONTHLY", "YEARLY", "LIFETIME"}, []string{plans[0].Plan, plans[1].Plan, plans[2].Plan})
}

func TestSameInstantGrantsPreferNewest(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := service.NewSubscriptionService(db, false, metrics.New("test"), testutil.NewClock().Now, nopLog)
	u := testutil.CreateUser(t, db, "Buyer", model.RoleUser)

	monthly, err := svc.Purchase(ctx, service.PurchaseInput{UserID: u.ID, Plan: "MONTHLY"})
	require.NoError(t, err)
	yearly, err := svc.Purchase(ctx, service.PurchaseInput{UserID: u.ID, Plan: "YEARLY"})
	require.NoError(t, err)
	require.True(t, monthly.CreatedAt.Equal(yearly.CreatedAt))

	active, err := svc.GetActive(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, yearly.ID, active.ID)

	ov, err := svc.Overview(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, ov.Subscriptions, 2)
	assert.Equal(t, yearly.ID, ov.Subscriptions[0].ID)

	end, err := svc.Cancel(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, end.Equal(yearly.EndDate))

	active, err = svc.GetActive(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, monthly.ID, active.ID)
}
