package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"harvesthub/internal/domain"
	"harvesthub/internal/infra"
	"harvesthub/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type paymentDeps struct {
	orders  *mocks.MockOrderRepository
	users   *mocks.MockUserRepository
	gateway *mocks.MockPaymentGateway
	idem    *mocks.MockIdempotencyStore
	pub     *mocks.MockPublisher
}

var paidAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newPaymentService() (*PaymentService, paymentDeps) {
	d := paymentDeps{
		orders:  new(mocks.MockOrderRepository),
		users:   new(mocks.MockUserRepository),
		gateway: new(mocks.MockPaymentGateway),
		idem:    new(mocks.MockIdempotencyStore),
		pub:     quietPublisher(),
	}
	payouts := NewPayoutDistributor(d.users, d.gateway, d.idem, "INR", 2)
	svc := NewPaymentService(d.orders, d.users, mocks.MockTransactor{}, d.gateway, payouts, d.pub, PaymentConfig{
		KeyID:     "rzp_test_key",
		Currency:  "INR",
		StoreName: "Farm Fresh",
	})
	svc.now = func() time.Time { return paidAt }
	return svc, d
}

func onlineOrder(id, seller string, items ...domain.OrderItem) domain.Order {
	o := domain.Order{
		ID:              id,
		CustomerID:      "buyer",
		SellerID:        seller,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentPending,
		PaymentMethod:   domain.PaymentOnline,
		ShippingAddress: address(),
		Items:           items,
	}
	o.TotalAmount = o.ComputeTotal()
	return o
}

func TestPaymentService_Initialize(t *testing.T) {
	svc, d := newPaymentService()
	orders := []domain.Order{
		onlineOrder("o1", "farmer-1", domain.OrderItem{ProductID: "p1", Quantity: 3, Price: dec("36.835")}),
		onlineOrder("o2", "farmer-2", domain.OrderItem{ProductID: "p2", Quantity: 1, Price: dec("30")}),
	}
	d.orders.On("FindPendingPayment", mock.Anything, "buyer", []string{"o1", "o2", "o9"}).Return(orders, nil)
	d.gateway.On("CreateIntent", mock.Anything, mock.MatchedBy(func(req infra.IntentRequest) bool {
		return req.AmountSubunits == 14051 &&
			req.Currency == "INR" &&
			req.Receipt != "" &&
			req.Notes["orderIds"] == "o1,o2" &&
			req.Notes["customerId"] == "buyer"
	})).Return("order_rzp1", nil)
	d.orders.On("SetGatewayOrderID", mock.Anything, []string{"o1", "o2"}, "order_rzp1").Return(nil)
	d.users.On("FindByID", mock.Anything, "buyer").Return(&domain.User{ID: "buyer", Username: "asha", Email: "asha@example.com"}, nil)

	out, err := svc.Initialize(context.Background(), "buyer", []string{"o1", "o2", "o9"})

	require.NoError(t, err)
	assert.Equal(t, "rzp_test_key", out.Key)
	assert.Equal(t, int64(14051), out.Amount)
	assert.Equal(t, "order_rzp1", out.OrderID)
	assert.Equal(t, "Farm Fresh", out.Name)
	assert.Equal(t, "Payment for orders: o1, o2", out.Description)
	assert.Equal(t, Prefill{Name: "asha", Email: "asha@example.com", Contact: "9800000000"}, out.Prefill)
	d.orders.AssertExpectations(t)
}

func TestPaymentService_Initialize_NothingPending(t *testing.T) {
	svc, d := newPaymentService()
	d.orders.On("FindPendingPayment", mock.Anything, "buyer", mock.Anything).Return([]domain.Order{}, nil)

	_, err := svc.Initialize(context.Background(), "buyer", []string{"o1"})

	assert.ErrorIs(t, err, domain.ErrNoPendingOrders)
	d.gateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestPaymentService_Initialize_GatewayDown(t *testing.T) {
	svc, d := newPaymentService()
	d.orders.On("FindPendingPayment", mock.Anything, "buyer", mock.Anything).Return([]domain.Order{
		onlineOrder("o1", "farmer-1", domain.OrderItem{ProductID: "p1", Quantity: 1, Price: dec("10")}),
	}, nil)
	d.gateway.On("CreateIntent", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	_, err := svc.Initialize(context.Background(), "buyer", []string{"o1"})

	assert.ErrorIs(t, err, domain.ErrGateway)
	d.orders.AssertNotCalled(t, "SetGatewayOrderID", mock.Anything, mock.Anything, mock.Anything)
}

func bankedFarmer(id string) domain.User {
	return domain.User{
		ID:                    id,
		Role:                  domain.RoleFarmer,
		BankAccountNumber:     "000111222333",
		IFSCCode:              "SBIN0000001",
		BankAccountHolderName: "Farmer " + id,
	}
}

var settledDetails = domain.PaymentDetails{
	GatewayOrderID:   "order_rzp1",
	GatewayPaymentID: "pay_1",
	GatewaySignature: "sig",
	PaidAt:           &paidAt,
}

// paid returns o as the store holds it after a successful settle.
func paid(o domain.Order) domain.Order {
	o.PaymentStatus = domain.PaymentCompleted
	o.PaymentDetails = settledDetails
	if o.Status == domain.StatusPending {
		o.Status = domain.StatusConfirmed
	}
	return o
}

func expectSettle(d paymentDeps, stored domain.Order) {
	d.orders.On("SettlePayment", mock.Anything, stored.ID, settledDetails).Return(true, nil).Once()
	d.orders.On("FindByID", mock.Anything, stored.ID).Return(&stored, nil).Once()
}

func TestPaymentService_Verify(t *testing.T) {
	svc, d := newPaymentService()
	orders := []domain.Order{
		onlineOrder("o1", "farmer-1",
			domain.OrderItem{ProductID: "p1", Quantity: 2, Price: dec("40")},
			domain.OrderItem{ProductID: "p3", Quantity: 1, Price: dec("10")},
		),
		onlineOrder("o2", "farmer-2", domain.OrderItem{ProductID: "p2", Quantity: 1, Price: dec("30")}),
	}
	d.orders.On("FindByGatewayOrderID", mock.Anything, "order_rzp1").Return(orders, nil)
	d.gateway.On("VerifySignature", "order_rzp1", "pay_1", "sig").Return(true)
	expectSettle(d, paid(orders[0]))
	expectSettle(d, paid(orders[1]))
	d.users.On("FindByIDs", mock.Anything, []string{"farmer-1", "farmer-2"}).Return([]domain.User{
		bankedFarmer("farmer-1"), bankedFarmer("farmer-2"),
	}, nil)
	d.idem.On("Seen", mock.Anything, mock.Anything).Return(false, nil)
	d.gateway.On("CreatePayout", mock.Anything, mock.Anything).Return("pout_1", nil)

	got, err := svc.Verify(context.Background(), "order_rzp1", "pay_1", "sig")

	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, o := range got {
		assert.Equal(t, domain.StatusConfirmed, o.Status)
		assert.Equal(t, domain.PaymentCompleted, o.PaymentStatus)
		assert.Equal(t, "pay_1", o.PaymentDetails.GatewayPaymentID)
		assert.Equal(t, "sig", o.PaymentDetails.GatewaySignature)
		require.NotNil(t, o.PaymentDetails.PaidAt)
		assert.Equal(t, paidAt, *o.PaymentDetails.PaidAt)
		assert.NoError(t, o.Validate())
	}
	d.gateway.AssertNumberOfCalls(t, "CreatePayout", 3)
	d.gateway.AssertCalled(t, "CreatePayout", mock.Anything, mock.MatchedBy(func(req infra.PayoutRequest) bool {
		return req.IdempotencyKey == "payout:o1:p1" && req.AmountSubunits == 8000 && req.AccountHolder == "Farmer farmer-1"
	}))
	d.orders.AssertExpectations(t)
}

func TestPaymentService_Verify_BadSignature(t *testing.T) {
	svc, d := newPaymentService()
	settled := onlineOrder("o2", "farmer-2", domain.OrderItem{ProductID: "p2", Quantity: 1, Price: dec("30")})
	settled.PaymentStatus = domain.PaymentCompleted
	orders := []domain.Order{
		onlineOrder("o1", "farmer-1", domain.OrderItem{ProductID: "p1", Quantity: 1, Price: dec("40")}),
		settled,
	}
	d.orders.On("FindByGatewayOrderID", mock.Anything, "order_rzp1").Return(orders, nil)
	d.gateway.On("VerifySignature", "order_rzp1", "pay_1", "forged").Return(false)
	d.orders.On("SetPaymentStatus", mock.Anything, []string{"o1"}, domain.PaymentFailed).Return(nil)

	got, err := svc.Verify(context.Background(), "order_rzp1", "pay_1", "forged")

	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	require.Len(t, got, 2)
	assert.Equal(t, domain.PaymentFailed, got[0].PaymentStatus)
	assert.Equal(t, domain.PaymentCompleted, got[1].PaymentStatus)
	d.orders.AssertExpectations(t)
	d.orders.AssertNotCalled(t, "SettlePayment", mock.Anything, mock.Anything, mock.Anything)
	d.gateway.AssertNotCalled(t, "CreatePayout", mock.Anything, mock.Anything)
}

func TestPaymentService_Verify_Replay(t *testing.T) {
	svc, d := newPaymentService()
	o := paid(onlineOrder("o1", "farmer-1", domain.OrderItem{ProductID: "p1", Quantity: 1, Price: dec("40")}))
	d.orders.On("FindByGatewayOrderID", mock.Anything, "order_rzp1").Return([]domain.Order{o}, nil)
	d.gateway.On("VerifySignature", "order_rzp1", "pay_1", "sig").Return(true)

	got, err := svc.Verify(context.Background(), "order_rzp1", "pay_1", "sig")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.PaymentCompleted, got[0].PaymentStatus)
	d.orders.AssertNotCalled(t, "SettlePayment", mock.Anything, mock.Anything, mock.Anything)
	d.gateway.AssertNotCalled(t, "CreatePayout", mock.Anything, mock.Anything)
}

func TestPaymentService_Verify_CancelledOrderIsNotPaidOut(t *testing.T) {
	svc, d := newPaymentService()
	o := onlineOrder("o1", "farmer-1", domain.OrderItem{ProductID: "p1", Quantity: 1, Price: dec("40")})
	o.Status = domain.StatusCancelled
	d.orders.On("FindByGatewayOrderID", mock.Anything, "order_rzp1").Return([]domain.Order{o}, nil)
	d.gateway.On("VerifySignature", "order_rzp1", "pay_1", "sig").Return(true)
	expectSettle(d, paid(o))

	got, err := svc.Verify(context.Background(), "order_rzp1", "pay_1", "sig")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got[0].Status)
	assert.Equal(t, domain.PaymentCompleted, got[0].PaymentStatus)
	d.users.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
	d.gateway.AssertNotCalled(t, "CreatePayout", mock.Anything, mock.Anything)
}

func TestPaymentService_Verify_PayoutFailureDoesNotFailVerification(t *testing.T) {
	svc, d := newPaymentService()
	o := onlineOrder("o1", "farmer-1", domain.OrderItem{ProductID: "p1", Quantity: 1, Price: dec("40")})
	d.orders.On("FindByGatewayOrderID", mock.Anything, "order_rzp1").Return([]domain.Order{o}, nil)
	d.gateway.On("VerifySignature", "order_rzp1", "pay_1", "sig").Return(true)
	expectSettle(d, paid(o))
	d.users.On("FindByIDs", mock.Anything, mock.Anything).Return([]domain.User{bankedFarmer("farmer-1")}, nil)
	d.idem.On("Seen", mock.Anything, "payout:o1:p1").Return(false, nil)
	d.gateway.On("CreatePayout", mock.Anything, mock.Anything).Return("", errors.New("insufficient balance"))

	got, err := svc.Verify(context.Background(), "order_rzp1", "pay_1", "sig")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, got[0].PaymentStatus)
}

func TestPaymentService_Verify_KeepsCancelCommittedAfterRead(t *testing.T) {
	svc, d := newPaymentService()
	o := onlineOrder("o1", "farmer-1", domain.OrderItem{ProductID: "p1", Quantity: 1, Price: dec("40")})
	d.orders.On("FindByGatewayOrderID", mock.Anything, "order_rzp1").Return([]domain.Order{o}, nil)
	d.gateway.On("VerifySignature", "order_rzp1", "pay_1", "sig").Return(true)
	// The customer cancelled after the orders were loaded.
	cancelled := o
	cancelled.Status = domain.StatusCancelled
	expectSettle(d, paid(cancelled))

	got, err := svc.Verify(context.Background(), "order_rzp1", "pay_1", "sig")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.StatusCancelled, got[0].Status)
	assert.Equal(t, domain.PaymentCompleted, got[0].PaymentStatus)
	d.users.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
	d.gateway.AssertNotCalled(t, "CreatePayout", mock.Anything, mock.Anything)
	d.orders.AssertExpectations(t)
}

func TestPaymentService_Verify_ConcurrentSettlePaysOnce(t *testing.T) {
	svc, d := newPaymentService()
	o := onlineOrder("o1", "farmer-1", domain.OrderItem{ProductID: "p1", Quantity: 1, Price: dec("40")})
	stored := paid(o)
	d.orders.On("FindByGatewayOrderID", mock.Anything, "order_rzp1").Return([]domain.Order{o}, nil)
	d.gateway.On("VerifySignature", "order_rzp1", "pay_1", "sig").Return(true)
	d.orders.On("SettlePayment", mock.Anything, "o1", settledDetails).Return(false, nil)
	d.orders.On("FindByID", mock.Anything, "o1").Return(&stored, nil)

	got, err := svc.Verify(context.Background(), "order_rzp1", "pay_1", "sig")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got[0].Status)
	assert.Equal(t, domain.PaymentCompleted, got[0].PaymentStatus)
	d.gateway.AssertNotCalled(t, "CreatePayout", mock.Anything, mock.Anything)
}

func TestPaymentService_Verify_UnknownGatewayOrder(t *testing.T) {
	svc, d := newPaymentService()
	d.orders.On("FindByGatewayOrderID", mock.Anything, "order_nope").Return([]domain.Order{}, nil)

	_, err := svc.Verify(context.Background(), "order_nope", "pay_1", "sig")

	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	d.gateway.AssertNotCalled(t, "VerifySignature", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_Details(t *testing.T) {
	svc, d := newPaymentService()
	o := onlineOrder("o1", "farmer-1")
	o.PaymentDetails.GatewayOrderID = "order_rzp1"
	d.orders.On("FindByID", mock.Anything, "o1").Return(&o, nil)
	d.orders.On("FindByID", mock.Anything, "o404").Return(nil, nil)

	view, err := svc.Details(context.Background(), "buyer", "o1")
	require.NoError(t, err)
	assert.Equal(t, "order_rzp1", view.PaymentDetails.GatewayOrderID)
	assert.Equal(t, domain.PaymentPending, view.PaymentStatus)

	_, err = svc.Details(context.Background(), "farmer-1", "o1")
	assert.ErrorIs(t, err, domain.ErrNotOrderCustomer)

	_, err = svc.Details(context.Background(), "buyer", "o404")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestToSubunits(t *testing.T) {
	assert.Equal(t, int64(10050), toSubunits(dec("100.50")))
	assert.Equal(t, int64(1), toSubunits(dec("0.005")))
	assert.Equal(t, int64(0), toSubunits(dec("0")))
}
