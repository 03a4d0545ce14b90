package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"blinddating/internal/models"
	"blinddating/internal/services"
)

type stubRegistration struct {
	result *services.RegistrationResult
	err    error
}

func (s *stubRegistration) Register(*models.User) (*services.RegistrationResult, error) {
	return s.result, s.err
}

type stubOTP struct {
	user      *models.User
	verifyErr error
	resendErr error
}

func (s *stubOTP) Issue(*models.User) error { return nil }
func (s *stubOTP) Verify(string, string) (*models.User, error) {
	return s.user, s.verifyErr
}
func (s *stubOTP) Resend(string) error { return s.resendErr }

func validRegisterBody() map[string]any {
	return map[string]any{
		"name":             "Alice Example",
		"age":              21,
		"gender":           "Female",
		"interestedIn":     "Male",
		"college":          "Example College",
		"phone":            "9876543210",
		"email":            "alice@x.com",
		"relationshipGoal": "Serious",
		"description":      "Long enough description of a person that clears the fifty character floor.",
		"preferences":      "Long enough partner preferences text that clears the fifty character floor.",
		"interests":        "Yes",
	}
}

func performJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newRouter(reg services.RegistrationService, otp services.OTPService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewUserHandler(reg, otp, nil)
	r.POST("/api/users/create", h.Register)
	r.POST("/api/users/verify-otp", h.VerifyOTP)
	r.POST("/api/users/resend-otp", h.ResendOTP)
	return r
}

func TestRegisterValidation(t *testing.T) {
	r := newRouter(&stubRegistration{}, &stubOTP{})

	cases := map[string]func(map[string]any){
		"underage":          func(b map[string]any) { b["age"] = 17 },
		"bad gender":        func(b map[string]any) { b["gender"] = "Unknown" },
		"bad phone":         func(b map[string]any) { b["phone"] = "12345" },
		"bad email":         func(b map[string]any) { b["email"] = "not-an-email" },
		"short description": func(b map[string]any) { b["description"] = "too short" },
		"bad goal":          func(b map[string]any) { b["relationshipGoal"] = "Friends" },
	}
	for name, mutate := range cases {
		body := validRegisterBody()
		mutate(body)
		if w := performJSON(t, r, http.MethodPost, "/api/users/create", body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, w.Code)
		}
	}
}

func TestRegisterCreated(t *testing.T) {
	user := &models.User{ID: 1, Email: "alice@x.com", PaymentStatus: models.PaymentFree}
	r := newRouter(&stubRegistration{result: &services.RegistrationResult{User: user, Created: true}}, &stubOTP{})

	w := performJSON(t, r, http.MethodPost, "/api/users/create", validRegisterBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			UserID        int64  `json:"userId"`
			PaymentStatus string `json:"paymentStatus"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success || resp.Data.UserID != 1 || resp.Data.PaymentStatus != models.PaymentFree {
		t.Fatalf("unexpected response: %s", w.Body.String())
	}
}

func TestRegisterConflictAndThrottle(t *testing.T) {
	r := newRouter(&stubRegistration{err: services.ErrAlreadyRegistered}, &stubOTP{})
	if w := performJSON(t, r, http.MethodPost, "/api/users/create", validRegisterBody()); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	r = newRouter(&stubRegistration{err: services.ErrResendThrottled}, &stubOTP{})
	if w := performJSON(t, r, http.MethodPost, "/api/users/create", validRegisterBody()); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestVerifyOTPIssuesToken(t *testing.T) {
	user := &models.User{ID: 7, Email: "alice@x.com", Verified: true, PaymentStatus: models.PaymentPending}
	r := newRouter(&stubRegistration{}, &stubOTP{user: user})

	w := performJSON(t, r, http.MethodPost, "/api/users/verify-otp", map[string]any{"email": "alice@x.com", "otp": "123456"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatal("expected access token in response")
	}
}

func TestVerifyOTPErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{services.ErrUserNotFound, http.StatusNotFound},
		{services.ErrTooManyAttempts, http.StatusTooManyRequests},
		{services.ErrCodeExpired, http.StatusBadRequest},
		{services.ErrCodeInvalid, http.StatusBadRequest},
	}
	for _, tc := range cases {
		r := newRouter(&stubRegistration{}, &stubOTP{verifyErr: tc.err})
		w := performJSON(t, r, http.MethodPost, "/api/users/verify-otp", map[string]any{"email": "alice@x.com", "otp": "123456"})
		if w.Code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, w.Code)
		}
	}
}

func TestResendOTPErrorMapping(t *testing.T) {
	r := newRouter(&stubRegistration{}, &stubOTP{resendErr: services.ErrResendThrottled})
	w := performJSON(t, r, http.MethodPost, "/api/users/resend-otp", map[string]any{"email": "alice@x.com"})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}

	r = newRouter(&stubRegistration{}, &stubOTP{resendErr: services.ErrUserNotFound})
	w = performJSON(t, r, http.MethodPost, "/api/users/resend-otp", map[string]any{"email": "alice@x.com"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
