package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/postboard/internal/auth"
	"github.com/crucial707/postboard/internal/clock"
	"github.com/crucial707/postboard/internal/repo"
	"github.com/lib/pq"
)

var userColumns = []string{"id", "username", "email", "sex", "password"}

func testTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService([]byte("test-secret"), "HS256", time.Hour, clock.NewStub(time.Unix(1_700_000_000, 0)))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return tokens
}

func TestAuthHandler_Signup(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users \(username, email, sex, password\)`).
		WithArgs("alice", "alice@example.com", "FEMALE", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "alice", "alice@example.com", "FEMALE", "$2a$hash"))
	mock.ExpectCommit()

	tokens := testTokens(t)
	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Tokens: tokens}

	body, _ := json.Marshal(map[string]string{
		"username": "alice", "email": "alice@example.com", "sex": "FEMALE", "password": "pw-a",
	})
	req := httptest.NewRequest("POST", "/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Signup status: got %d, want 201 (body %s)", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "password") || strings.Contains(rr.Body.String(), "$2a$") {
		t.Errorf("response leaks the password hash: %s", rr.Body.String())
	}
	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		User        struct {
			ID  int    `json:"id"`
			Sex string `json:"sex"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.TokenType != "bearer" || out.User.ID != 1 || out.User.Sex != "FEMALE" {
		t.Errorf("unexpected response: %+v", out)
	}
	if id, err := tokens.Validate(out.AccessToken); err != nil || id != 1 {
		t.Errorf("token does not identify the new user: id=%d err=%v", id, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signup_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Tokens: testTokens(t)}

	body, _ := json.Marshal(map[string]string{
		"username": "alice", "email": "alice@example.com", "sex": "FEMALE", "password": "pw-a",
	})
	req := httptest.NewRequest("POST", "/signup", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Signup status: got %d, want 400", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signup_Validation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Tokens: testTokens(t)}

	body, _ := json.Marshal(map[string]string{
		"username": "alice", "email": "not-an-email", "sex": "OTHER", "password": "pw-a",
	})
	req := httptest.NewRequest("POST", "/signup", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Signup status: got %d, want 400", rr.Code)
	}
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Fields["email"] == "" || out.Fields["sex"] == "" {
		t.Errorf("expected email and sex field errors, got %v", out.Fields)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signup_PasswordTooManyBytes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Tokens: testTokens(t)}

	// 72 characters, 144 bytes.
	body, _ := json.Marshal(map[string]string{
		"username": "alice", "email": "alice@example.com", "sex": "FEMALE", "password": strings.Repeat("é", 72),
	})
	req := httptest.NewRequest("POST", "/signup", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Signup status: got %d, want 400 (body %s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Fields["password"] != "must be at most 72 bytes" {
		t.Errorf("password field error: got %q", out.Fields["password"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signup_BodyTooLarge(t *testing.T) {
	h := &AuthHandler{Tokens: testTokens(t)}

	body := `{"username": "` + strings.Repeat("a", 64) + `"}`
	req := httptest.NewRequest("POST", "/signup", strings.NewReader(body))
	rr := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rr, req.Body, 16)
	h.Signup(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Signup status: got %d, want 413", rr.Code)
	}
}

func expectUserByName(t *testing.T, mock sqlmock.Sqlmock, id int, username, password string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	mock.ExpectQuery(`SELECT id, username, email, sex, password\s+FROM users\s+WHERE username = \$1`).
		WithArgs(username).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id, username, username+"@example.com", "MALE", hash))
}

func TestAuthHandler_Login(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectUserByName(t, mock, 2, "bob", "pw-b")

	tokens := testTokens(t)
	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Tokens: tokens}

	body, _ := json.Marshal(map[string]string{"username": "bob", "password": "pw-b"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Login status: got %d, want 200", rr.Code)
	}
	var out tokenResponse
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if id, err := tokens.Validate(out.AccessToken); err != nil || id != 2 {
		t.Errorf("token does not identify bob: id=%d err=%v", id, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login_Form(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectUserByName(t, mock, 2, "bob", "pw-b")

	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Tokens: testTokens(t)}

	form := url.Values{"username": {"bob"}, "password": {"pw-b"}, "grant_type": {"password"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Login status: got %d, want 200", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectUserByName(t, mock, 2, "bob", "pw-b")

	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Tokens: testTokens(t)}

	body, _ := json.Marshal(map[string]string{"username": "bob", "password": "pw-a"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Login status: got %d, want 401", rr.Code)
	}
	if rr.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Errorf("missing WWW-Authenticate header")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login_UnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Tokens: testTokens(t)}

	body, _ := json.Marshal(map[string]string{"username": "ghost", "password": "x"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Login status: got %d, want 401", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := &AuthHandler{Tokens: testTokens(t)}

	req := httptest.NewRequest("POST", "/login", bytes.NewReader([]byte("not json")))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Login status: got %d, want 400", rr.Code)
	}
}
