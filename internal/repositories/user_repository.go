package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"blinddating/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int64) (*models.User, error)
	GetByEmail(email string) (*models.User, error)

	// OTP helpers
	SetOTP(userID int64, codeHash string, sentAt, expiresAt time.Time) error
	IncrementOTPAttempts(userID int64) (int, error)
	MarkVerified(userID int64) error

	// payment helpers
	SetRazorpayOrderID(userID int64, orderID string) error
	SetStripePaymentIntentID(userID int64, intentID string) error
	MarkPaid(userID int64, paymentID string) error

	// slot allocation
	CountConfirmedByGender(gender string) (int, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, name, age, gender, interested_in, college, phone, email,
	relationship_goal, description, preferences, interests,
	payment_status, payment_id, razorpay_order_id, stripe_payment_intent_id,
	verified, otp_hash, otp_expires_at, last_otp_sent_at, otp_attempts,
	created_at, updated_at
`

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (
			name, age, gender, interested_in, college, phone, email,
			relationship_goal, description, preferences, interests,
			payment_status, verified, otp_attempts,
			created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,FALSE,0,NOW(),NOW())
		RETURNING id, created_at, updated_at
	`
	if err := r.DB.QueryRow(q,
		user.Name,
		user.Age,
		user.Gender,
		user.InterestedIn,
		user.College,
		user.Phone,
		user.Email,
		user.RelationshipGoal,
		user.Description,
		user.Preferences,
		user.Interests,
		user.PaymentStatus,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var (
		paymentID sql.NullString
		rzpOrder  sql.NullString
		stpIntent sql.NullString
		otpHash   sql.NullString
		otpExp    sql.NullTime
		otpSent   sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Age, &u.Gender, &u.InterestedIn, &u.College, &u.Phone, &u.Email,
		&u.RelationshipGoal, &u.Description, &u.Preferences, &u.Interests,
		&u.PaymentStatus, &paymentID, &rzpOrder, &stpIntent,
		&u.Verified, &otpHash, &otpExp, &otpSent, &u.OTPAttempts,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if paymentID.Valid {
		s := paymentID.String
		u.PaymentID = &s
	}
	if rzpOrder.Valid {
		s := rzpOrder.String
		u.RazorpayOrderID = &s
	}
	if stpIntent.Valid {
		s := stpIntent.String
		u.StripePaymentIntentID = &s
	}
	if otpHash.Valid {
		s := otpHash.String
		u.OTPHash = &s
	}
	if otpExp.Valid {
		t := otpExp.Time
		u.OTPExpiresAt = &t
	}
	if otpSent.Valid {
		t := otpSent.Time
		u.LastOTPSentAt = &t
	}
	return u, nil
}

func (r *userRepository) GetByID(id int64) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := r.scanUser(r.DB.QueryRow(q, id))
	if err != nil {
		return nil, fmt.Errorf("user get by id: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := r.scanUser(r.DB.QueryRow(q, email))
	if err != nil {
		return nil, fmt.Errorf("user get by email: %w", err)
	}
	return u, nil
}

// SetOTP — новая отправка кода: перезаписываем хэш, TTL, время отправки,
// сбрасываем счётчик попыток.
func (r *userRepository) SetOTP(userID int64, codeHash string, sentAt, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET otp_hash=$1, otp_expires_at=$2, last_otp_sent_at=$3, otp_attempts=0, updated_at=NOW()
		WHERE id=$4
	`
	if _, err := r.DB.Exec(q, codeHash, expiresAt, sentAt, userID); err != nil {
		return fmt.Errorf("user set otp: %w", err)
	}
	return nil
}

// IncrementOTPAttempts — +1 попытка, возвращает новое значение attempts.
func (r *userRepository) IncrementOTPAttempts(userID int64) (int, error) {
	const q = `
		UPDATE users
		SET otp_attempts = otp_attempts + 1, updated_at=NOW()
		WHERE id = $1
		RETURNING otp_attempts
	`
	var attempts int
	if err := r.DB.QueryRow(q, userID).Scan(&attempts); err != nil {
		return 0, fmt.Errorf("user increment otp attempts: %w", err)
	}
	return attempts, nil
}

// MarkVerified — успешная проверка кода: чистим OTP-поля, verified=TRUE.
// Флаг verified обратно не снимается.
func (r *userRepository) MarkVerified(userID int64) error {
	const q = `
		UPDATE users
		SET verified=TRUE, otp_hash=NULL, otp_expires_at=NULL, otp_attempts=0, updated_at=NOW()
		WHERE id=$1
	`
	if _, err := r.DB.Exec(q, userID); err != nil {
		return fmt.Errorf("user mark verified: %w", err)
	}
	return nil
}

func (r *userRepository) SetRazorpayOrderID(userID int64, orderID string) error {
	_, err := r.DB.Exec(`UPDATE users SET razorpay_order_id=$1, updated_at=NOW() WHERE id=$2`, orderID, userID)
	if err != nil {
		return fmt.Errorf("user set razorpay order: %w", err)
	}
	return nil
}

func (r *userRepository) SetStripePaymentIntentID(userID int64, intentID string) error {
	_, err := r.DB.Exec(`UPDATE users SET stripe_payment_intent_id=$1, updated_at=NOW() WHERE id=$2`, intentID, userID)
	if err != nil {
		return fmt.Errorf("user set stripe intent: %w", err)
	}
	return nil
}

func (r *userRepository) MarkPaid(userID int64, paymentID string) error {
	const q = `
		UPDATE users
		SET payment_status=$1, payment_id=$2, updated_at=NOW()
		WHERE id=$3
	`
	if _, err := r.DB.Exec(q, models.PaymentPaid, paymentID, userID); err != nil {
		return fmt.Errorf("user mark paid: %w", err)
	}
	return nil
}

// CountConfirmedByGender — сколько подтверждённых анкет (PAID/FREE) в гендерной корзине.
func (r *userRepository) CountConfirmedByGender(gender string) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM users
		WHERE gender = $1 AND payment_status IN ($2, $3)
	`
	var c int
	if err := r.DB.QueryRow(q, gender, models.PaymentPaid, models.PaymentFree).Scan(&c); err != nil {
		return 0, fmt.Errorf("user count confirmed: %w", err)
	}
	return c, nil
}
