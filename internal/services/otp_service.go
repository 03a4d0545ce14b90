package services

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"

	"blinddating/internal/models"
	"blinddating/internal/repositories"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrResendThrottled = errors.New("resend throttled")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrCodeExpired     = errors.New("code expired")
	ErrCodeInvalid     = errors.New("code invalid")
)

// Настройки безопасности OTP (совпадают с текстом письма — «valid for 10 minutes»).
const (
	otpTTL            = 10 * time.Minute
	otpResendCooldown = 60 * time.Second
	maxVerifyAttempts = 5
)

type OTPService interface {
	Issue(user *models.User) error
	Verify(email, code string) (*models.User, error)
	Resend(email string) error
}

type otpService struct {
	repo   repositories.UserRepository
	emails EmailService
}

func NewOTPService(repo repositories.UserRepository, emails EmailService) OTPService {
	return &otpService{repo: repo, emails: emails}
}

// --- утилита генерации 6-значного кода ---
func generateCode() string {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return fmt.Sprintf("%06d", rnd.Intn(1000000))
}

// Issue — выдаём новый код (каждая выдача — новый код, attempts обнуляются).
// Храним только bcrypt-хэш. Не чаще одного раза в минуту.
func (s *otpService) Issue(user *models.User) error {
	if user.LastOTPSentAt != nil && time.Since(*user.LastOTPSentAt) < otpResendCooldown {
		return ErrResendThrottled
	}

	code := generateCode()
	codeHashBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bcrypt generate: %w", err)
	}

	sentAt := time.Now()
	expiresAt := sentAt.Add(otpTTL)
	if err := s.repo.SetOTP(user.ID, string(codeHashBytes), sentAt, expiresAt); err != nil {
		return err
	}
	hash := string(codeHashBytes)
	user.OTPHash = &hash
	user.OTPExpiresAt = &expiresAt
	user.LastOTPSentAt = &sentAt
	user.OTPAttempts = 0

	// Доставка письма — best-effort: анкета уже сохранена, наружу не фейлим.
	if s.emails != nil {
		if err := s.emails.SendOTPEmail(user.Email, code); err != nil {
			log.Printf("[otp][send] warning: email delivery failed user_id=%d email=%s: %v", user.ID, user.Email, err)
		}
	}

	log.Printf("[otp][send] user_id=%d email=%s expires_at=%s", user.ID, user.Email, expiresAt.Format(time.RFC3339))
	return nil
}

// Verify — сверяет код с bcrypt-хэшем, считает попытки, TTL.
// При успехе проставляет verified у анкеты и чистит OTP-поля.
func (s *otpService) Verify(email, code string) (*models.User, error) {
	user, err := s.repo.GetByEmail(normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.OTPAttempts >= maxVerifyAttempts {
		return nil, ErrTooManyAttempts
	}
	if user.OTPHash == nil {
		if _, err := s.repo.IncrementOTPAttempts(user.ID); err != nil {
			return nil, err
		}
		return nil, ErrCodeInvalid
	}
	if user.OTPExpiresAt == nil || time.Now().After(*user.OTPExpiresAt) {
		if _, err := s.repo.IncrementOTPAttempts(user.ID); err != nil {
			return nil, err
		}
		return nil, ErrCodeExpired
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.OTPHash), []byte(code)); err != nil {
		attempts, incErr := s.repo.IncrementOTPAttempts(user.ID)
		if incErr != nil {
			return nil, incErr
		}
		log.Printf("[otp][verify] mismatch user_id=%d attempts=%d", user.ID, attempts)
		return nil, ErrCodeInvalid
	}

	if err := s.repo.MarkVerified(user.ID); err != nil {
		return nil, err
	}
	user.Verified = true
	user.OTPHash = nil
	user.OTPExpiresAt = nil
	user.OTPAttempts = 0

	// Бесплатный слот подтверждён самим фактом верификации — сразу приветствуем.
	if user.PaymentConfirmed() && s.emails != nil {
		if err := s.emails.SendWelcomeEmail(user.Email, user.Name); err != nil {
			log.Printf("[otp][verify] warning: welcome email failed user_id=%d: %v", user.ID, err)
		}
	}

	log.Printf("[otp][verify] OK user_id=%d", user.ID)
	return user, nil
}

// Resend — та же генерация и тот же кулдаун, что и Issue.
func (s *otpService) Resend(email string) error {
	user, err := s.repo.GetByEmail(normalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.Issue(user)
}
