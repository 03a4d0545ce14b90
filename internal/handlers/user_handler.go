package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"blinddating/internal/middleware"
	"blinddating/internal/models"
	"blinddating/internal/repositories"
	"blinddating/internal/services"
)

type UserHandler struct {
	registration services.RegistrationService
	otp          services.OTPService
	users        repositories.UserRepository
}

func NewUserHandler(registration services.RegistrationService, otp services.OTPService, users repositories.UserRepository) *UserHandler {
	return &UserHandler{registration: registration, otp: otp, users: users}
}

// Правила как в анкете на фронте: enum-поля, описание/предпочтения 50–1000 символов.
type registerRequest struct {
	Name             string `json:"name" binding:"required,min=2,max=100"`
	Age              int    `json:"age" binding:"required,gte=18,lte=100"`
	Gender           string `json:"gender" binding:"required,oneof=Male Female Other"`
	InterestedIn     string `json:"interestedIn" binding:"required,oneof=Male Female Any"`
	College          string `json:"college" binding:"required,max=100"`
	Phone            string `json:"phone" binding:"required,len=10,numeric"`
	Email            string `json:"email" binding:"required,email"`
	RelationshipGoal string `json:"relationshipGoal" binding:"required,oneof=Casual Serious Marriage"`
	Description      string `json:"description" binding:"required,min=50,max=1000"`
	Preferences      string `json:"preferences" binding:"required,min=50,max=1000"`
	Interests        string `json:"interests" binding:"required,oneof=Yes No"`
}

// @Summary      Регистрация анкеты
// @Description  Создаёт анкету и высылает код подтверждения на email. Повторная отправка для неподтверждённого email идемпотентна.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user  body      registerRequest  true  "Анкета"
// @Success      201   {object}  map[string]interface{}
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      409   {object}  map[string]interface{}
// @Failure      429   {object}  map[string]interface{}
// @Router       /api/users/create [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": err.Error()})
		return
	}

	user := &models.User{
		Name:             req.Name,
		Age:              req.Age,
		Gender:           req.Gender,
		InterestedIn:     req.InterestedIn,
		College:          req.College,
		Phone:            req.Phone,
		Email:            req.Email,
		RelationshipGoal: req.RelationshipGoal,
		Description:      req.Description,
		Preferences:      req.Preferences,
		Interests:        req.Interests,
	}

	result, err := h.registration.Register(user)
	if err != nil {
		switch err {
		case services.ErrAlreadyRegistered:
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "User with this email already exists"})
		case services.ErrResendThrottled:
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "Please wait before requesting another code"})
		default:
			log.Printf("[register] service error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		}
		return
	}

	u := result.User
	switch {
	case result.Created:
		message := "Proceed to payment"
		if u.PaymentStatus == models.PaymentFree {
			message = "You are eligible for free matching 🎉"
		}
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": message,
			"data": gin.H{
				"userId":        u.ID,
				"email":         u.Email,
				"paymentStatus": u.PaymentStatus,
			},
		})
	case result.Resumed:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "User exists with pending payment — proceed to payment",
			"data": gin.H{
				"userId":        u.ID,
				"email":         u.Email,
				"formData":      u,
				"paymentStatus": u.PaymentStatus,
			},
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Verification code sent — please confirm your email",
			"data": gin.H{
				"userId":        u.ID,
				"email":         u.Email,
				"paymentStatus": u.PaymentStatus,
			},
		})
	}
}

// @Summary      Подтверждение email по коду
// @Tags         Users
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      429  {object}  map[string]interface{}
// @Router       /api/users/verify-otp [post]
func (h *UserHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": err.Error()})
		return
	}

	user, err := h.otp.Verify(req.Email, req.OTP)
	if err != nil {
		switch err {
		case services.ErrUserNotFound:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		case services.ErrTooManyAttempts:
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "Too many attempts, please request a new code"})
		case services.ErrCodeExpired:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Code expired, please resend"})
		case services.ErrCodeInvalid:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid code"})
		default:
			log.Printf("[verify-otp] service error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		}
		return
	}

	// Подтверждённый email получает access-токен для /api/users/me.
	claims := &middleware.Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(middleware.JWTKey)
	if err != nil {
		log.Printf("[verify-otp] sign token failed user_id=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Email verified",
		"data": gin.H{
			"userId":        user.ID,
			"email":         user.Email,
			"paymentStatus": user.PaymentStatus,
			"token":         tokenString,
		},
	})
}

// @Summary      Повторная отправка кода
// @Tags         Users
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      429  {object}  map[string]interface{}
// @Router       /api/users/resend-otp [post]
func (h *UserHandler) ResendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": err.Error()})
		return
	}

	if err := h.otp.Resend(req.Email); err != nil {
		switch err {
		case services.ErrUserNotFound:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		case services.ErrResendThrottled:
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "Please wait before requesting another code"})
		default:
			log.Printf("[resend-otp] service error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP sent"})
}

// @Summary      Своя анкета
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := getUserIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}
	user, err := h.users.GetByID(userID)
	if err != nil {
		log.Printf("[me] store error user_id=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}
