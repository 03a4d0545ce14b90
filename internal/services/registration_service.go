package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"blinddating/internal/models"
	"blinddating/internal/repositories"
)

var ErrAlreadyRegistered = errors.New("already registered")

// Первые N подтверждённых анкет в каждой гендерной корзине проходят бесплатно.
// Подсчёт неатомарный (count-then-insert): две одновременные регистрации у
// порога могут обе получить FREE. Осознанно оставлено как есть.
const freeSlotsPerGender = 5

// RegistrationResult — что произошло с анкетой на /create.
// Created — новая запись; Resumed — verified+PENDING, можно продолжать оплату;
// ни то ни другое — существующая неподтверждённая анкета, код выслан заново.
type RegistrationResult struct {
	User    *models.User
	Created bool
	Resumed bool
}

type RegistrationService interface {
	Register(user *models.User) (*RegistrationResult, error)
}

type registrationService struct {
	repo     repositories.UserRepository
	otp      OTPService
	notifier Notifier
}

func NewRegistrationService(repo repositories.UserRepository, otp OTPService, notifier Notifier) RegistrationService {
	return &registrationService{repo: repo, otp: otp, notifier: notifier}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *registrationService) Register(user *models.User) (*RegistrationResult, error) {
	user.Email = normalizeEmail(user.Email)

	existing, err := s.repo.GetByEmail(user.Email)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		confirmed, err := s.repo.CountConfirmedByGender(user.Gender)
		if err != nil {
			return nil, err
		}
		user.PaymentStatus = models.PaymentPending
		if confirmed < freeSlotsPerGender {
			user.PaymentStatus = models.PaymentFree
		}

		if err := s.repo.Create(user); err != nil {
			return nil, err
		}
		log.Printf("[register][create] user_id=%d email=%s gender=%s status=%s (confirmed_in_bucket=%d)",
			user.ID, user.Email, user.Gender, user.PaymentStatus, confirmed)

		if user.PaymentStatus == models.PaymentFree && s.notifier != nil {
			s.notifier.Notify(fmt.Sprintf("🎟 Бесплатный слот занят: %s (%s, %s)", user.Name, user.Email, user.Gender))
		}

		// Анкета уже сохранена; проблемы с выдачей кода не откатывают регистрацию.
		if err := s.otp.Issue(user); err != nil {
			log.Printf("[register][create] warning: otp issue failed user_id=%d: %v", user.ID, err)
		}
		return &RegistrationResult{User: user, Created: true}, nil
	}

	// Оплаченная или бесплатная анкета — дубликат.
	if existing.PaymentConfirmed() {
		return nil, ErrAlreadyRegistered
	}

	// Неподтверждённый email: повторная регистрация идемпотентна,
	// просто шлём новый код (с учётом кулдауна).
	if !existing.Verified {
		if err := s.otp.Issue(existing); err != nil {
			return nil, err
		}
		log.Printf("[register][resend] user_id=%d email=%s", existing.ID, existing.Email)
		return &RegistrationResult{User: existing}, nil
	}

	// Verified + PENDING: отдаём сохранённую анкету, фронт продолжает оплату.
	log.Printf("[register][resume] user_id=%d email=%s", existing.ID, existing.Email)
	return &RegistrationResult{User: existing, Resumed: true}, nil
}
