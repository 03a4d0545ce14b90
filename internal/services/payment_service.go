package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"blinddating/internal/models"
	"blinddating/internal/payments"
	"blinddating/internal/repositories"
)

var (
	ErrAlreadyPaid    = errors.New("user has already made payment")
	ErrPaymentInvalid = errors.New("payment verification failed")
)

type PaymentService interface {
	CreateOrder(ctx context.Context, userID int64) (*payments.Order, error)
	VerifyPayment(ctx context.Context, userID int64, proof payments.Proof) (*models.User, error)
}

type paymentService struct {
	repo     repositories.UserRepository
	gateway  payments.Gateway
	emails   EmailService
	notifier Notifier
	amount   int64 // регистрационный взнос, в минимальных единицах валюты шлюза
}

func NewPaymentService(repo repositories.UserRepository, gateway payments.Gateway, emails EmailService, notifier Notifier, amount int64) PaymentService {
	return &paymentService{
		repo:     repo,
		gateway:  gateway,
		emails:   emails,
		notifier: notifier,
		amount:   amount,
	}
}

// CreateOrder — открывает транзакцию у активного шлюза. Сумма фиксирована
// конфигом, присланный с фронта amount игнорируется.
func (s *paymentService) CreateOrder(ctx context.Context, userID int64) (*payments.Order, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.PaymentStatus == models.PaymentPaid {
		return nil, ErrAlreadyPaid
	}

	order, err := s.gateway.CreateOrder(ctx, s.amount, userID)
	if err != nil {
		return nil, fmt.Errorf("gateway %s: %w", s.gateway.Name(), err)
	}

	switch s.gateway.Name() {
	case "razorpay":
		err = s.repo.SetRazorpayOrderID(userID, order.OrderID)
	case "stripe":
		err = s.repo.SetStripePaymentIntentID(userID, order.OrderID)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("[pay][create] user_id=%d gateway=%s order_id=%s amount=%d %s",
		userID, s.gateway.Name(), order.OrderID, order.Amount, order.Currency)
	return order, nil
}

// VerifyPayment — вердикт шлюза превращается в PAID. Повторный вызов на уже
// оплаченной анкете — успех без повторной проверки и без смены paymentId.
func (s *paymentService) VerifyPayment(ctx context.Context, userID int64, proof payments.Proof) (*models.User, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.PaymentStatus == models.PaymentPaid {
		log.Printf("[pay][verify] already paid user_id=%d payment_id=%v", userID, user.PaymentID)
		return user, nil
	}

	verdict, err := s.gateway.VerifyPayment(ctx, proof)
	if err != nil {
		return nil, fmt.Errorf("gateway %s: %w", s.gateway.Name(), err)
	}
	if !verdict.Valid {
		return nil, ErrPaymentInvalid
	}

	if err := s.repo.MarkPaid(userID, verdict.PaymentID); err != nil {
		return nil, err
	}
	user.PaymentStatus = models.PaymentPaid
	user.PaymentID = &verdict.PaymentID

	if s.emails != nil {
		if err := s.emails.SendWelcomeEmail(user.Email, user.Name); err != nil {
			log.Printf("[pay][verify] warning: welcome email failed user_id=%d: %v", userID, err)
		}
	}
	if s.notifier != nil {
		s.notifier.Notify(fmt.Sprintf("💰 Оплата подтверждена: %s (%s), payment_id=%s", user.Name, user.Email, verdict.PaymentID))
	}

	log.Printf("[pay][verify] OK user_id=%d payment_id=%s", userID, verdict.PaymentID)
	return user, nil
}
