package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"blinddating/internal/models"
	"blinddating/internal/payments"
)

// fakeUserRepo — in-memory замена Postgres-репозитория.
// Возвращает копии, как это делает настоящая БД.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) add(u *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	cp.ID = r.nextID
	r.nextID++
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = cp.CreatedAt
	r.users[cp.ID] = &cp
	return &cp
}

// direct mutation helper for test setup
func (r *fakeUserRepo) mutate(id int64, fn func(*models.User)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.users[id])
}

func (r *fakeUserRepo) Create(user *models.User) error {
	stored := r.add(user)
	user.ID = stored.ID
	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *fakeUserRepo) GetByID(id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) SetOTP(userID int64, codeHash string, sentAt, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("no user %d", userID)
	}
	u.OTPHash = &codeHash
	exp := expiresAt
	sent := sentAt
	u.OTPExpiresAt = &exp
	u.LastOTPSentAt = &sent
	u.OTPAttempts = 0
	return nil
}

func (r *fakeUserRepo) IncrementOTPAttempts(userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return 0, fmt.Errorf("no user %d", userID)
	}
	u.OTPAttempts++
	return u.OTPAttempts, nil
}

func (r *fakeUserRepo) MarkVerified(userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("no user %d", userID)
	}
	u.Verified = true
	u.OTPHash = nil
	u.OTPExpiresAt = nil
	u.OTPAttempts = 0
	return nil
}

func (r *fakeUserRepo) SetRazorpayOrderID(userID int64, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("no user %d", userID)
	}
	u.RazorpayOrderID = &orderID
	return nil
}

func (r *fakeUserRepo) SetStripePaymentIntentID(userID int64, intentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("no user %d", userID)
	}
	u.StripePaymentIntentID = &intentID
	return nil
}

func (r *fakeUserRepo) MarkPaid(userID int64, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("no user %d", userID)
	}
	u.PaymentStatus = models.PaymentPaid
	u.PaymentID = &paymentID
	return nil
}

func (r *fakeUserRepo) CountConfirmedByGender(gender string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := 0
	for _, u := range r.users {
		if u.Gender == gender && (u.PaymentStatus == models.PaymentPaid || u.PaymentStatus == models.PaymentFree) {
			c++
		}
	}
	return c, nil
}

// fakeEmailService записывает отправленные коды, последний — в хвосте.
type fakeEmailService struct {
	otpCodes []string
	otpTo    []string
	welcomes []string
	fail     bool
}

func (f *fakeEmailService) SendOTPEmail(email, code string) error {
	if f.fail {
		return fmt.Errorf("smtp down")
	}
	f.otpTo = append(f.otpTo, email)
	f.otpCodes = append(f.otpCodes, code)
	return nil
}

func (f *fakeEmailService) SendWelcomeEmail(email, _ string) error {
	if f.fail {
		return fmt.Errorf("smtp down")
	}
	f.welcomes = append(f.welcomes, email)
	return nil
}

func (f *fakeEmailService) lastOTP() string {
	if len(f.otpCodes) == 0 {
		return ""
	}
	return f.otpCodes[len(f.otpCodes)-1]
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Notify(text string) { f.messages = append(f.messages, text) }

// fakeGateway — скриптуемый платёжный шлюз.
type fakeGateway struct {
	name        string
	order       *payments.Order
	orderErr    error
	verdict     payments.Verification
	verdictErr  error
	verifyCalls int
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, userID int64) (*payments.Order, error) {
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	if g.order != nil {
		return g.order, nil
	}
	return &payments.Order{OrderID: fmt.Sprintf("order_%d", userID), Amount: amount, Currency: "INR"}, nil
}

func (g *fakeGateway) VerifyPayment(_ context.Context, _ payments.Proof) (payments.Verification, error) {
	g.verifyCalls++
	return g.verdict, g.verdictErr
}

func testProfile(email, gender string) *models.User {
	return &models.User{
		Name:             "Test Person",
		Age:              21,
		Gender:           gender,
		InterestedIn:     "Any",
		College:          "Test College",
		Phone:            "9876543210",
		Email:            email,
		RelationshipGoal: "Serious",
		Description:      "Long enough description of a person that clears the fifty character floor.",
		Preferences:      "Long enough partner preferences text that clears the fifty character floor.",
		Interests:        "Yes",
		PaymentStatus:    models.PaymentPending,
	}
}
