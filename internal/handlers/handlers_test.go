package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/oda/internal/config"
	"github.com/example/oda/internal/database"
	"github.com/example/oda/internal/handlers"
	"github.com/example/oda/internal/models"
	"github.com/example/oda/internal/routes"
	"github.com/example/oda/internal/utils"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		AppPort:      "0",
		JWTSecret:    "handlers-test-secret",
		TokenExpires: time.Hour,
		UploadsDir:   t.TempDir(),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})
	routes.Register(app, db, cfg)

	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}, token string) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func getJSON(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	return body
}

// createUser inserts a user directly so tests can control verification
// flags without walking the OTP flow.
func createUser(t *testing.T, db *gorm.DB, username, email, phone, password string, role models.Role, emailVerified bool) *models.User {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := &models.User{
		Username:        username,
		Email:           email,
		Phone:           phone,
		PasswordHash:    hash,
		Role:            role,
		IsEmailVerified: emailVerified,
		IsActive:        true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func login(t *testing.T, app *fiber.App, identifier, password string) string {
	t.Helper()

	resp := postJSON(t, app, "/api/auth/login", map[string]string{
		"email_or_phone": identifier,
		"password":       password,
	}, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login returned %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login response missing token")
	}
	return token
}

func uploadDocument(t *testing.T, app *fiber.App, token, docType, docName string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("document_type", docType); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.WriteField("document_name", docName); err != nil {
		t.Fatalf("write field: %v", err)
	}
	part, err := writer.CreateFormFile("document_file", "license.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4 test document")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodPost, "/api/business/upload-documents", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	return resp
}

func registerBusiness(t *testing.T, app *fiber.App, token, tin, license string) *http.Response {
	t.Helper()
	return postJSON(t, app, "/api/business/register", map[string]interface{}{
		"business_name":           "Test Grocery",
		"business_type":           "grocery",
		"tin_number":              tin,
		"business_license_number": license,
		"business_address":        "1 Market St",
	}, token)
}
