package models

import "time"

// Статусы оплаты анкеты.
const (
	PaymentPending = "PENDING"
	PaymentFree    = "FREE"
	PaymentPaid    = "PAID"
)

// User — анкета участника. Одна запись на email.
// OTP-поля наружу не отдаём, храним только bcrypt-хэш кода.
type User struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Age              int    `json:"age"`
	Gender           string `json:"gender"`
	InterestedIn     string `json:"interestedIn"`
	College          string `json:"college"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	RelationshipGoal string `json:"relationshipGoal"`
	Description      string `json:"description"`
	Preferences      string `json:"preferences"`
	Interests        string `json:"interests"`

	PaymentStatus         string  `json:"paymentStatus"`
	PaymentID             *string `json:"paymentId,omitempty"`
	RazorpayOrderID       *string `json:"-"`
	StripePaymentIntentID *string `json:"-"`

	Verified      bool       `json:"verified"`
	OTPHash       *string    `json:"-"`
	OTPExpiresAt  *time.Time `json:"-"`
	LastOTPSentAt *time.Time `json:"-"`
	OTPAttempts   int        `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PaymentConfirmed — бесплатный слот или оплата прошла.
func (u *User) PaymentConfirmed() bool {
	return u.PaymentStatus == PaymentPaid || u.PaymentStatus == PaymentFree
}
