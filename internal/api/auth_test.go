package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cuistot/backend/internal/middleware"
	"github.com/pageza/cuistot/backend/internal/testhelpers"
)

type authBody struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
	Token string `json:"token"`
}

func sessionCookie(rr interface{ Result() *http.Response }) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	return nil
}

func TestRegisterLoginLogout(t *testing.T) {
	app := newTestApp(t, nil)

	rr := app.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username":     "julia",
		"email":        "Julia@Example.com",
		"password":     "secret123",
		"confirmation": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var registered authBody
	decodeBody(t, rr, &registered)
	assert.Equal(t, "julia", registered.User.Username)
	assert.Equal(t, "julia@example.com", registered.User.Email)
	assert.NotEmpty(t, registered.Token)
	assert.NotContains(t, rr.Body.String(), "password")

	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	rr = app.do(http.MethodPost, "/api/auth", map[string]string{
		"email":    "julia@example.com",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var login authBody
	decodeBody(t, rr, &login)
	assert.Equal(t, registered.User.ID, login.User.ID)

	rr = app.do(http.MethodGet, "/api/auth", nil, login.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"username":"julia"`)

	rr = app.do(http.MethodDelete, "/api/auth", nil, login.Token)
	require.Equal(t, http.StatusNoContent, rr.Code)
	cleared := sessionCookie(rr)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	app := newTestApp(t, nil)
	user := testhelpers.CreateUser(t, app.db)

	for _, body := range []map[string]string{
		{"email": user.Email, "password": "wrong-password"},
		{"email": "nobody@example.com", "password": testhelpers.DefaultPassword},
	} {
		rr := app.do(http.MethodPost, "/api/auth", body, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, sessionCookie(rr))
	}
}

func TestRegister_Validation(t *testing.T) {
	app := newTestApp(t, nil)
	existing := testhelpers.CreateUser(t, app.db)

	tests := []struct {
		name  string
		body  map[string]string
		field string
		msg   string
	}{
		{
			name:  "confirmation mismatch",
			body:  map[string]string{"username": "marcel", "email": "marcel@example.com", "password": "secret123", "confirmation": "secret124"},
			field: "confirmation",
			msg:   "must match password",
		},
		{
			name:  "bad email",
			body:  map[string]string{"username": "marcel", "email": "marcel", "password": "secret123", "confirmation": "secret123"},
			field: "email",
			msg:   "must be a valid email address",
		},
		{
			name:  "short password",
			body:  map[string]string{"username": "marcel", "email": "marcel@example.com", "password": "abc", "confirmation": "abc"},
			field: "password",
			msg:   "must be at least 6 characters",
		},
		{
			name:  "username taken",
			body:  map[string]string{"username": existing.Username, "email": "other@example.com", "password": "secret123", "confirmation": "secret123"},
			field: "username",
			msg:   "is already taken",
		},
		{
			name:  "email taken",
			body:  map[string]string{"username": "marcel", "email": existing.Email, "password": "secret123", "confirmation": "secret123"},
			field: "email",
			msg:   "is already taken",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := app.do(http.MethodPost, "/api/auth/register", tt.body, "")
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			var body errorBody
			decodeBody(t, rr, &body)
			assert.Equal(t, "validation failed", body.Error)
			assert.Equal(t, tt.msg, body.Fields[tt.field])
		})
	}
}

func TestAuth_SessionGuards(t *testing.T) {
	app := newTestApp(t, nil)
	user := testhelpers.CreateUser(t, app.db)
	token := app.tokenFor(user)

	rr := app.do(http.MethodPost, "/api/auth", map[string]string{"email": user.Email, "password": testhelpers.DefaultPassword}, token)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = app.do(http.MethodGet, "/api/auth", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, rr.Body.String())

	rr = app.do(http.MethodGet, "/api/auth", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
