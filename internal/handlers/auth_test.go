package handlers_test

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/oda/internal/models"
	"github.com/example/oda/internal/services"
)

func validRegistration() map[string]string {
	return map[string]string{
		"username":         "alice",
		"full_name":        "Alice Example",
		"email":            "a@x.com",
		"phone":            "+15550001111",
		"password":         "secretpass1",
		"password_confirm": "secretpass1",
		"role":             "consumer",
	}
}

func TestRegisterCreatesTwoOTPs(t *testing.T) {
	app, db := setupApp(t)

	before := time.Now()
	resp := postJSON(t, app, "/api/auth/register", validRegistration(), "")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["email"] != "a@x.com" || body["phone"] != "+15550001111" {
		t.Errorf("unexpected response %v", body)
	}
	if body["user_id"] == nil {
		t.Error("response missing user_id")
	}

	var otps []models.OTPVerification
	if err := db.Find(&otps).Error; err != nil {
		t.Fatalf("load otps: %v", err)
	}
	if len(otps) != 2 {
		t.Fatalf("expected exactly 2 OTP records, got %d", len(otps))
	}

	types := map[models.OTPType]models.OTPVerification{}
	for _, otp := range otps {
		types[otp.OTPType] = otp
	}
	if _, ok := types[models.OTPTypeEmail]; !ok {
		t.Error("missing email OTP")
	}
	if _, ok := types[models.OTPTypePhone]; !ok {
		t.Error("missing phone OTP")
	}

	for _, otp := range otps {
		window := otp.ExpiresAt.Sub(before)
		if window < services.OTPValidity-5*time.Second || window > services.OTPValidity+5*time.Second {
			t.Errorf("%s OTP expiry window %v, want about %v", otp.OTPType, window, services.OTPValidity)
		}
	}

	var user models.User
	if err := db.First(&user, "email = ?", "a@x.com").Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.PasswordHash == "secretpass1" {
		t.Error("password stored as plaintext")
	}
	if user.Role != models.RoleConsumer {
		t.Errorf("role = %s, want consumer", user.Role)
	}
}

func TestRegisterValidationErrors(t *testing.T) {
	app, _ := setupApp(t)

	cases := []struct {
		name  string
		patch map[string]string
		field string
	}{
		{"bad phone", map[string]string{"phone": "abc"}, "phone"},
		{"weak password", map[string]string{"password": "12345678", "password_confirm": "12345678"}, "password"},
		{"mismatch", map[string]string{"password_confirm": "different1"}, "password_confirm"},
		{"bad role", map[string]string{"role": "superuser"}, "role"},
		{"bad email", map[string]string{"email": "nope"}, "email"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRegistration()
			for k, v := range tc.patch {
				req[k] = v
			}

			resp := postJSON(t, app, "/api/auth/register", req, "")
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}

			body := decodeBody(t, resp)
			errs, _ := body["errors"].(map[string]interface{})
			if errs[tc.field] == nil {
				t.Errorf("expected field error on %q, got %v", tc.field, body)
			}
		})
	}
}

func TestRegisterRejectsDuplicateContacts(t *testing.T) {
	app, db := setupApp(t)
	createUser(t, db, "bob", "a@x.com", "+15550002222", "secretpass1", models.RoleConsumer, true)

	resp := postJSON(t, app, "/api/auth/register", validRegistration(), "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	errs, _ := body["errors"].(map[string]interface{})
	if errs["email"] == nil {
		t.Errorf("expected duplicate-email error, got %v", body)
	}
}

func TestLoginRequiresVerifiedContact(t *testing.T) {
	app, db := setupApp(t)
	createUser(t, db, "carol", "c@x.com", "+15550003333", "secretpass1", models.RoleConsumer, false)

	// Correct password, but neither contact verified.
	resp := postJSON(t, app, "/api/auth/login", map[string]string{
		"email_or_phone": "c@x.com",
		"password":       "secretpass1",
	}, "")
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 unverified, got %d", resp.StatusCode)
	}

	// Wrong password reads as invalid credentials regardless.
	resp = postJSON(t, app, "/api/auth/login", map[string]string{
		"email_or_phone": "c@x.com",
		"password":       "wrongpass1",
	}, "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 invalid credentials, got %d", resp.StatusCode)
	}
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	app, db := setupApp(t)
	user := createUser(t, db, "dave", "d@x.com", "+15550004444", "secretpass1", models.RoleConsumer, true)
	if err := db.Model(user).Update("is_active", false).Error; err != nil {
		t.Fatalf("disable user: %v", err)
	}

	resp := postJSON(t, app, "/api/auth/login", map[string]string{
		"email_or_phone": "d@x.com",
		"password":       "secretpass1",
	}, "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for disabled account, got %d", resp.StatusCode)
	}
}

func TestLoginByEmailOrPhoneReusesToken(t *testing.T) {
	app, db := setupApp(t)
	createUser(t, db, "erin", "e@x.com", "+15550005555", "secretpass1", models.RoleConsumer, true)

	byEmail := login(t, app, "e@x.com", "secretpass1")
	byPhone := login(t, app, "+15550005555", "secretpass1")

	if byEmail != byPhone {
		t.Error("expected login to reuse the live session token")
	}

	var count int64
	db.Model(&models.AuthToken{}).Count(&count)
	if count != 1 {
		t.Errorf("expected one token row, got %d", count)
	}
}

func TestVerifyOTPFlipsFlagAndConsumes(t *testing.T) {
	app, db := setupApp(t)

	resp := postJSON(t, app, "/api/auth/register", validRegistration(), "")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("register: %d", resp.StatusCode)
	}

	var otp models.OTPVerification
	if err := db.First(&otp, "otp_type = ?", models.OTPTypeEmail).Error; err != nil {
		t.Fatalf("load otp: %v", err)
	}

	verify := map[string]string{
		"contact":  "a@x.com",
		"otp_code": otp.OTPCode,
		"otp_type": "email",
	}
	resp = postJSON(t, app, "/api/auth/verify-otp", verify, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var user models.User
	if err := db.First(&user, "email = ?", "a@x.com").Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if !user.IsEmailVerified {
		t.Error("expected email flag set")
	}
	if user.IsPhoneVerified {
		t.Error("phone flag should stay unset")
	}

	// Replay of the consumed code is not found.
	resp = postJSON(t, app, "/api/auth/verify-otp", verify, "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404 on replay, got %d", resp.StatusCode)
	}
}

func TestVerifyOTPExpired(t *testing.T) {
	app, db := setupApp(t)
	user := createUser(t, db, "frank", "f@x.com", "+15550006666", "secretpass1", models.RoleConsumer, false)

	otp := models.OTPVerification{
		UserID:    user.ID,
		OTPCode:   "654321",
		OTPType:   models.OTPTypeEmail,
		Contact:   "f@x.com",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := db.Create(&otp).Error; err != nil {
		t.Fatalf("create otp: %v", err)
	}

	resp := postJSON(t, app, "/api/auth/verify-otp", map[string]string{
		"contact":  "f@x.com",
		"otp_code": "654321",
		"otp_type": "email",
	}, "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 expired, got %d", resp.StatusCode)
	}
}

func TestResendOTP(t *testing.T) {
	app, db := setupApp(t)

	resp := postJSON(t, app, "/api/auth/resend-otp", map[string]string{
		"contact":  "missing@x.com",
		"otp_type": "email",
	}, "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404 for unknown contact, got %d", resp.StatusCode)
	}

	createUser(t, db, "gina", "g@x.com", "+15550007777", "secretpass1", models.RoleConsumer, false)
	resp = postJSON(t, app, "/api/auth/resend-otp", map[string]string{
		"contact":  "g@x.com",
		"otp_type": "email",
	}, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var count int64
	db.Model(&models.OTPVerification{}).Where("contact = ?", "g@x.com").Count(&count)
	if count != 1 {
		t.Errorf("expected a fresh OTP record, got %d", count)
	}
}

func TestRefreshTokenRevokesOldSession(t *testing.T) {
	app, db := setupApp(t)
	createUser(t, db, "hank", "h@x.com", "+15550008888", "secretpass1", models.RoleConsumer, true)
	token := login(t, app, "h@x.com", "secretpass1")

	resp := postJSON(t, app, "/api/auth/refresh-token", nil, token)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	newToken, _ := body["token"].(string)
	if newToken == "" || newToken == token {
		t.Fatal("expected a fresh token on refresh")
	}

	// Old token is no longer accepted on protected routes.
	resp = getJSON(t, app, "/api/profile", token)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("old token: expected 401, got %d", resp.StatusCode)
	}
	resp = getJSON(t, app, "/api/profile", newToken)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("new token: expected 200, got %d", resp.StatusCode)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	app, db := setupApp(t)
	createUser(t, db, "iris", "i@x.com", "+15550009999", "secretpass1", models.RoleConsumer, true)
	token := login(t, app, "i@x.com", "secretpass1")

	resp := postJSON(t, app, "/api/auth/logout", nil, token)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = getJSON(t, app, "/api/profile", token)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app, _ := setupApp(t)

	resp := getJSON(t, app, "/api/profile", "")
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
}
