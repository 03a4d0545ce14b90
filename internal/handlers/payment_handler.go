package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"blinddating/internal/payments"
	"blinddating/internal/pdf"
	"blinddating/internal/repositories"
	"blinddating/internal/services"
)

type PaymentHandler struct {
	payments services.PaymentService
	users    repositories.UserRepository
	receipts pdf.Generator
}

func NewPaymentHandler(paymentSvc services.PaymentService, users repositories.UserRepository, receipts pdf.Generator) *PaymentHandler {
	return &PaymentHandler{payments: paymentSvc, users: users, receipts: receipts}
}

// @Summary      Создание платёжной транзакции
// @Description  Открывает order/intent у активного шлюза. Сумма фиксирована на сервере, amount из запроса игнорируется.
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/payments/create-order [post]
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req struct {
		UserID int64   `json:"userId" binding:"required"`
		Amount float64 `json:"amount"` // принимается для совместимости с фронтом
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": err.Error()})
		return
	}

	order, err := h.payments.CreateOrder(c.Request.Context(), req.UserID)
	if err != nil {
		switch err {
		case services.ErrUserNotFound:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		case services.ErrAlreadyPaid:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User has already made payment"})
		default:
			// детали шлюза наружу не отдаём
			log.Printf("[pay][create] error user_id=%d: %v", req.UserID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create payment order"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment order created successfully",
		"data":    order,
	})
}

// @Summary      Подтверждение оплаты
// @Description  Проверяет доказательство провайдера (подпись Razorpay или intent Stripe) и переводит анкету в PAID. Идемпотентно.
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/payments/verify [post]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req struct {
		UserID int64 `json:"userId" binding:"required"`
		payments.Proof
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": err.Error()})
		return
	}

	user, err := h.payments.VerifyPayment(c.Request.Context(), req.UserID, req.Proof)
	if err != nil {
		switch err {
		case services.ErrUserNotFound:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		case services.ErrPaymentInvalid:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Payment verification failed"})
		default:
			log.Printf("[pay][verify] error user_id=%d: %v", req.UserID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Payment verification error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment verified successfully",
		"data": gin.H{
			"userId":        user.ID,
			"paymentStatus": user.PaymentStatus,
			"paymentId":     user.PaymentID,
		},
	})
}

// @Summary      Квитанция о регистрации (PDF)
// @Tags         Payments
// @Produce      application/pdf
// @Param        id  path  int  true  "ID анкеты"
// @Success      200  {file}  binary
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/payments/receipt/{id} [get]
func (h *PaymentHandler) Receipt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		log.Printf("[receipt] store error user_id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}
	if !user.PaymentConfirmed() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Registration is not confirmed yet"})
		return
	}

	paymentID := "-"
	if user.PaymentID != nil {
		paymentID = *user.PaymentID
	}
	path, err := h.receipts.GenerateReceipt(pdf.ReceiptData{
		UserID:        user.ID,
		Name:          user.Name,
		Email:         user.Email,
		College:       user.College,
		PaymentStatus: user.PaymentStatus,
		PaymentID:     paymentID,
		CreatedAt:     user.CreatedAt,
	})
	if err != nil {
		log.Printf("[receipt] generate failed user_id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate receipt"})
		return
	}

	c.FileAttachment(path, fmt.Sprintf("receipt_%d.pdf", user.ID))
}
