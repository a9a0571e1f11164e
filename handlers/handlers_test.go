// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"saraha-server/db"
	"saraha-server/middlewares"
	"saraha-server/models"
	"saraha-server/tokens"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	t.Setenv("PHONE_ENCRYPTION_KEY", "12345678901234567890123456789012")
	t.Setenv("SESSION_JWT_SECRET", "test-session-secret")
	t.Setenv("ACTIVATION_JWT_SECRET", "test-activation-secret")
	t.Setenv("MOCK_EMAIL_NOTIFICATIONS", "true")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := conn.AutoMigrate(models.AllModels...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	db.Conn = conn
	InitServices()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = NewRequestValidator()

	e.POST("/auth/register", RegisterHandler)
	e.POST("/auth/login", LoginHandler)
	e.GET("/auth/activate_account/:token", ActivateAccountHandler)
	e.GET("/users", GetAllUsersHandler)
	e.PATCH("/users/change-password", ChangePasswordHandler)
	e.PATCH("/users/update/:id", UpdateProfileHandler)
	e.POST("/users/upload", UploadFileHandler)
	e.GET("/users/:id", GetUserHandler, middlewares.VerifyAuthMiddleware)
	e.POST("/messages", CreateMessageHandler)
	e.GET("/messages/allMessages", GetAllMessagesHandler)
	e.GET("/messages/:messageID", GetMessageHandler)
	e.DELETE("/messages/:messageID", DeleteMessageHandler)
	e.RouteNotFound("/*", NotFoundHandler)

	return e
}

func doRequest(e *echo.Echo, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body %q: %v", rec.Body.String(), err)
	}
	return body
}

func registerUser(t *testing.T, e *echo.Echo, email, phone string) map[string]any {
	t.Helper()
	payload := fmt.Sprintf(`{
		"userName": "john_doe",
		"email": %q,
		"password": "SecurePass123!",
		"confirmPassword": "SecurePass123!",
		"Phone": %q
	}`, email, phone)
	rec := doRequest(e, http.MethodPost, "/auth/register", payload, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Register returned %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("Register response missing user object: %s", rec.Body.String())
	}
	return user
}

func TestRegisterFlow(t *testing.T) {
	e := newTestServer(t)

	user := registerUser(t, e, "john@example.com", "5551234567")

	if user["email"] != "john@example.com" {
		t.Errorf("Expected email john@example.com, got %v", user["email"])
	}
	if user["confirmedEmail"] != false {
		t.Error("New account should start unconfirmed")
	}

	password, _ := user["password"].(string)
	if password == "" || password == "SecurePass123!" {
		t.Error("Response should carry the stored hash, not the plaintext password")
	}

	phone, _ := user["Phone"].(string)
	if phone == "" || phone == "5551234567" {
		t.Error("Registration response should carry the encrypted phone")
	}
}

func TestRegisterDuplicateEmailResponse(t *testing.T) {
	e := newTestServer(t)
	registerUser(t, e, "john@example.com", "")

	payload := `{
		"userName": "other_name",
		"email": "john@example.com",
		"password": "OtherPass456!",
		"confirmPassword": "OtherPass456!"
	}`
	rec := doRequest(e, http.MethodPost, "/auth/register", payload, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["Error"] != "Email is already exist, try new one" {
		t.Errorf("Unexpected error message: %v", body["Error"])
	}
	if body["status"] != float64(http.StatusBadRequest) {
		t.Errorf("Expected status 400 in body, got %v", body["status"])
	}
}

func TestRegisterPasswordMismatchResponse(t *testing.T) {
	e := newTestServer(t)

	payload := `{
		"userName": "john_doe",
		"email": "john@example.com",
		"password": "SecurePass123!",
		"confirmPassword": "SomethingElse"
	}`
	rec := doRequest(e, http.MethodPost, "/auth/register", payload, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["Error"] != "Password must match" {
		t.Errorf("Unexpected error message: %v", body["Error"])
	}
}

func TestRegisterValidationRejectsBadPhone(t *testing.T) {
	e := newTestServer(t)

	payload := `{
		"userName": "john_doe",
		"email": "john@example.com",
		"password": "SecurePass123!",
		"confirmPassword": "SecurePass123!",
		"Phone": "not-a-number"
	}`
	rec := doRequest(e, http.MethodPost, "/auth/register", payload, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for non-numeric phone, got %d", rec.Code)
	}
}

func TestLoginFlow(t *testing.T) {
	e := newTestServer(t)
	registerUser(t, e, "john@example.com", "")

	rec := doRequest(e, http.MethodPost, "/auth/login",
		`{"email": "john@example.com", "password": "SecurePass123!"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Login returned %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["message"] != "Login successful" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
	if body["status"] != float64(http.StatusOK) {
		t.Errorf("Expected status 200 in body, got %v", body["status"])
	}

	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("Login should return a token")
	}
	if _, err := tokens.NewTokenService().VerifySessionToken(token); err != nil {
		t.Errorf("Returned token should verify: %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	e := newTestServer(t)
	registerUser(t, e, "john@example.com", "")

	rec := doRequest(e, http.MethodPost, "/auth/login",
		`{"email": "nobody@example.com", "password": "whatever1"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown user, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["Error"] != "User not found" {
		t.Errorf("Unexpected error message: %v", body["Error"])
	}

	rec = doRequest(e, http.MethodPost, "/auth/login",
		`{"email": "john@example.com", "password": "WrongPass"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for wrong password, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["Error"] != "Invalid Credentials" {
		t.Errorf("Unexpected error message: %v", body["Error"])
	}
}

func TestActivateAccountFlow(t *testing.T) {
	e := newTestServer(t)
	registerUser(t, e, "john@example.com", "")

	token, err := tokens.NewTokenService().IssueActivationToken("john@example.com")
	if err != nil {
		t.Fatalf("IssueActivationToken failed: %v", err)
	}

	// The emailed link carries the token as "token=<jwt>" in the path.
	rec := doRequest(e, http.MethodGet, "/auth/activate_account/token="+token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Activate returned %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["message"] != "Account activated successfully" {
		t.Errorf("Unexpected message: %v", body["message"])
	}

	var user models.User
	if err := db.Conn.Where("email = ?", "john@example.com").First(&user).Error; err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	if !user.ConfirmedEmail {
		t.Error("Account should be confirmed after activation")
	}

	// The bare token form works too.
	rec = doRequest(e, http.MethodGet, "/auth/activate_account/"+token, "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Bare-token activation returned %d", rec.Code)
	}
}

func TestActivateAccountInvalidToken(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/auth/activate_account/token=garbage", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["Error"] != "Invalid or expired activation token" {
		t.Errorf("Unexpected error message: %v", body["Error"])
	}
}

func TestActivateAccountVanishedUser(t *testing.T) {
	e := newTestServer(t)

	token, err := tokens.NewTokenService().IssueActivationToken("gone@example.com")
	if err != nil {
		t.Fatalf("IssueActivationToken failed: %v", err)
	}

	rec := doRequest(e, http.MethodGet, "/auth/activate_account/token="+token, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for vanished user, got %d", rec.Code)
	}
}

func TestGetAllUsersDecryptsPhones(t *testing.T) {
	e := newTestServer(t)
	registerUser(t, e, "john@example.com", "5551234567")
	registerUser(t, e, "jane@example.com", "")

	rec := doRequest(e, http.MethodGet, "/users", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("List users returned %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["message"] != "List of users" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
	if body["count"] != float64(2) {
		t.Errorf("Expected count 2, got %v", body["count"])
	}

	users, _ := body["users"].([]any)
	if len(users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(users))
	}
	first, _ := users[0].(map[string]any)
	if first["Phone"] != "5551234567" {
		t.Errorf("Expected decrypted phone 5551234567, got %v", first["Phone"])
	}
	second, _ := users[1].(map[string]any)
	if _, present := second["Phone"]; present {
		t.Errorf("User without a phone should omit the field, got %v", second["Phone"])
	}
}

func TestGetUserRequiresAuth(t *testing.T) {
	e := newTestServer(t)
	user := registerUser(t, e, "john@example.com", "5551234567")
	userID := uint(user["id"].(float64))

	target := fmt.Sprintf("/users/%d", userID)

	rec := doRequest(e, http.MethodGet, target, "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rec.Code)
	}

	rec = doRequest(e, http.MethodGet, target, "", map[string]string{
		"Authorization": "Bearer not-a-token",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for invalid token, got %d", rec.Code)
	}

	token, err := tokens.NewTokenService().IssueSessionToken(userID)
	if err != nil {
		t.Fatalf("IssueSessionToken failed: %v", err)
	}
	rec = doRequest(e, http.MethodGet, target, "", map[string]string{
		"Authorization": "Bearer " + token,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 with valid token, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["message"] != "User retrieved successfully" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
	profile, _ := body["user"].(map[string]any)
	if profile["Phone"] != "5551234567" {
		t.Errorf("Expected decrypted phone in profile, got %v", profile["Phone"])
	}
}

func TestChangePasswordFlow(t *testing.T) {
	e := newTestServer(t)
	registerUser(t, e, "john@example.com", "")

	rec := doRequest(e, http.MethodPatch, "/users/change-password", `{
		"email": "john@example.com",
		"currentPassword": "WrongCurrent1",
		"newPassword": "NewPass456!"
	}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for wrong current password, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["Error"] != "Current password is incorrect" {
		t.Errorf("Unexpected error message: %v", body["Error"])
	}

	// The failed attempt must not have touched the stored hash.
	rec = doRequest(e, http.MethodPost, "/auth/login",
		`{"email": "john@example.com", "password": "SecurePass123!"}`, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Original password should still work, got %d", rec.Code)
	}

	rec = doRequest(e, http.MethodPatch, "/users/change-password", `{
		"email": "john@example.com",
		"currentPassword": "SecurePass123!",
		"newPassword": "NewPass456!"
	}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Change password returned %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["message"] != "Password changed successfully" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
	if _, present := body["user"]; !present {
		t.Error("Change password response should carry the updated record")
	}

	rec = doRequest(e, http.MethodPost, "/auth/login",
		`{"email": "john@example.com", "password": "NewPass456!"}`, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Login with new password returned %d", rec.Code)
	}
}

func TestChangePasswordRejectsSamePassword(t *testing.T) {
	e := newTestServer(t)
	registerUser(t, e, "john@example.com", "")

	rec := doRequest(e, http.MethodPatch, "/users/change-password", `{
		"email": "john@example.com",
		"currentPassword": "SecurePass123!",
		"newPassword": "SecurePass123!"
	}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 when new password equals current, got %d", rec.Code)
	}
}

func TestUpdateProfileFlow(t *testing.T) {
	e := newTestServer(t)
	user := registerUser(t, e, "john@example.com", "")
	userID := uint(user["id"].(float64))

	rec := doRequest(e, http.MethodPatch, fmt.Sprintf("/users/update/%d", userID), `{
		"email": "john.new@example.com",
		"userName": "john_doe_2"
	}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Update profile returned %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["message"] != "Profile updated successfully" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
	profile, _ := body["user"].(map[string]any)
	if profile["email"] != "john.new@example.com" || profile["userName"] != "john_doe_2" {
		t.Errorf("Profile not updated: %v", profile)
	}

	rec = doRequest(e, http.MethodPatch, "/users/update/999", `{
		"email": "nobody@example.com",
		"userName": "nobody_here"
	}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown user, got %d", rec.Code)
	}
}

func TestMessageLifecycle(t *testing.T) {
	e := newTestServer(t)
	john := registerUser(t, e, "john@example.com", "")
	jane := registerUser(t, e, "jane@example.com", "")
	johnID := uint(john["id"].(float64))
	janeID := uint(jane["id"].(float64))

	rec := doRequest(e, http.MethodPost, "/messages", fmt.Sprintf(`{
		"sender": %d,
		"receiver": %d,
		"content": "Hello!"
	}`, johnID, janeID), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create message returned %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["message"] != "Message created successfully" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
	created, _ := body["data"].(map[string]any)
	if created["mid"] == "" || created["mid"] == nil {
		t.Error("Created message should carry a mid")
	}
	messageID := uint(created["id"].(float64))

	rec = doRequest(e, http.MethodGet,
		fmt.Sprintf("/messages/allMessages?flag=inbox&receiver=%d", janeID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("List inbox returned %d: %s", rec.Code, rec.Body.String())
	}
	body = decodeBody(t, rec)
	if body["message"] != fmt.Sprintf("Inbox messages for %d", janeID) {
		t.Errorf("Unexpected message: %v", body["message"])
	}
	if inbox, _ := body["data"].([]any); len(inbox) != 1 {
		t.Errorf("Expected 1 inbox message, got %d", len(inbox))
	}

	rec = doRequest(e, http.MethodGet,
		fmt.Sprintf("/messages/allMessages?flag=outbox&sender=%d", johnID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("List outbox returned %d: %s", rec.Code, rec.Body.String())
	}
	body = decodeBody(t, rec)
	if body["message"] != fmt.Sprintf("Outbox messages for %d", johnID) {
		t.Errorf("Unexpected message: %v", body["message"])
	}

	rec = doRequest(e, http.MethodGet, fmt.Sprintf("/messages/%d", messageID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Get message returned %d: %s", rec.Code, rec.Body.String())
	}
	body = decodeBody(t, rec)
	if body["message"] != "Get single message" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
	data, _ := body["data"].(map[string]any)
	sender, _ := data["sender"].(map[string]any)
	if sender["userName"] != "john_doe" || sender["email"] != "john@example.com" {
		t.Errorf("Sender not projected: %v", sender)
	}
	if _, present := sender["id"]; present {
		t.Error("Sender projection should not expose the id")
	}

	rec = doRequest(e, http.MethodDelete, fmt.Sprintf("/messages/%d", messageID), "", nil)
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("Expected 501 for delete, got %d", rec.Code)
	}
}

func TestCreateMessageUnknownReceiver(t *testing.T) {
	e := newTestServer(t)
	john := registerUser(t, e, "john@example.com", "")
	johnID := uint(john["id"].(float64))

	rec := doRequest(e, http.MethodPost, "/messages", fmt.Sprintf(`{
		"sender": %d,
		"receiver": 999,
		"content": "Hello?"
	}`, johnID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["Error"] != "Receiver not found" {
		t.Errorf("Unexpected error message: %v", body["Error"])
	}
}

func TestListMessagesRequiresFlag(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/messages/allMessages", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without flag, got %d", rec.Code)
	}

	rec = doRequest(e, http.MethodGet, "/messages/allMessages?flag=drafts", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown flag, got %d", rec.Code)
	}
}

func TestGetMessageBadID(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/messages/abc", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["Error"] != "Message ID validation" {
		t.Errorf("Unexpected error message: %v", body["Error"])
	}

	rec = doRequest(e, http.MethodGet, "/messages/999", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown message, got %d", rec.Code)
	}
}

func TestConfigReadOnceAtStartup(t *testing.T) {
	e := newTestServer(t)
	user := registerUser(t, e, "john@example.com", "")
	userID := uint(user["id"].(float64))

	rec := doRequest(e, http.MethodPost, "/auth/login",
		`{"email": "john@example.com", "password": "SecurePass123!"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Login returned %d: %s", rec.Code, rec.Body.String())
	}
	token, _ := decodeBody(t, rec)["token"].(string)

	// Key material is captured when the services are built; changing the
	// environment afterwards must not affect a running process.
	t.Setenv("SESSION_JWT_SECRET", "rotated-after-boot")

	rec = doRequest(e, http.MethodGet, fmt.Sprintf("/users/%d", userID), "", map[string]string{
		"Authorization": "Bearer " + token,
	})
	if rec.Code != http.StatusOK {
		t.Errorf("Token issued at startup should still verify, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUnmatchedRoute(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/no/such/route", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["Error"] != "Route not found" {
		t.Errorf("Unexpected error message: %v", body["Error"])
	}
	if body["status"] != float64(http.StatusNotFound) {
		t.Errorf("Expected status 404 in body, got %v", body["status"])
	}
}
