package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"quillpress/internal/access"
	"quillpress/internal/db"
	"quillpress/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withUser(u *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u != nil {
			c.Set(CheckUserKey, u)
		}
		c.Next()
	}
}

func TestRequire(t *testing.T) {
	cases := []struct {
		name   string
		user   *models.User
		action access.Action
		want   int
	}{
		{name: "anonymous public", action: access.ActionListComments, want: http.StatusOK},
		{name: "anonymous protected", action: access.ActionReact, want: http.StatusUnauthorized},
		{name: "user protected", user: &models.User{ID: 1, Role: models.RoleUser}, action: access.ActionReact, want: http.StatusOK},
		{name: "user admin-only", user: &models.User{ID: 1, Role: models.RoleUser}, action: access.ActionModerate, want: http.StatusForbidden},
		{name: "anonymous admin-only", action: access.ActionModerate, want: http.StatusUnauthorized},
		{name: "admin admin-only", user: &models.User{ID: 2, Role: models.RoleAdmin}, action: access.ActionModerate, want: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", withUser(tc.user), Require(tc.action), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tc.want, w.Code)
			if tc.want != http.StatusOK {
				assert.JSONEq(t, `{"error":{"code":"permission","message":"`+map[int]string{
					http.StatusUnauthorized: "Authentication required",
					http.StatusForbidden:    "You do not have permission to perform this action",
				}[tc.want]+`"}}`, w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestLoadUserFromSession(t *testing.T) {
	conn, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	active := models.User{Name: "alice", Email: "alice@example.com", Password: "x", Role: models.RoleUser, IsActive: true}
	require.NoError(t, conn.Create(&active).Error)
	banned := models.User{Name: "mallory", Email: "mallory@example.com", Password: "x", Role: models.RoleUser, IsActive: true}
	require.NoError(t, conn.Create(&banned).Error)
	require.NoError(t, conn.Model(&banned).Update("is_active", false).Error)

	r := gin.New()
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("secret"))))
	r.Use(LoadUser(conn))
	r.GET("/as/:name", func(c *gin.Context) {
		session := sessions.Default(c)
		if c.Param("name") == "alice" {
			session.Set(SessionUserKey, active.ID)
		} else {
			session.Set(SessionUserKey, banned.ID)
		}
		require.NoError(t, session.Save())
		c.Status(http.StatusOK)
	})
	r.GET("/me", func(c *gin.Context) {
		if u := CurrentUser(c); u != nil {
			c.String(http.StatusOK, u.Name)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	for name, want := range map[string]string{"alice": "alice", "mallory": "anonymous"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/as/"+name, nil))
		require.Equal(t, http.StatusOK, w.Code)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		for _, ck := range w.Result().Cookies() {
			req.AddCookie(ck)
		}
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Body.String(), name)
	}
}
