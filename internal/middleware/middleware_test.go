package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mihaja/univ-housing/internal/utils"
)

func runWith(mw echo.MiddlewareFunc, setup func(c echo.Context)) int {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	_ = h(c)
	return rec.Code
}

func TestRequireRole_AllowsListedRole(t *testing.T) {
	code := runWith(RequireRole("STUDENT"), func(c echo.Context) {
		c.Set("role", "STUDENT")
	})
	if code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
}

func TestRequireRole_RejectsOtherRole(t *testing.T) {
	code := runWith(RequireRole("ADMIN"), func(c echo.Context) {
		c.Set("role", "STUDENT")
	})
	if code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", code)
	}
}

func TestRequireRole_RejectsMissingRole(t *testing.T) {
	code := runWith(RequireRole("ADMIN", "STUDENT"), nil)
	if code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", code)
	}
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	code := runWith(JWTAuth("secret"), nil)
	if code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", code)
	}
}

func TestJWTAuth_ValidTokenSetsContext(t *testing.T) {
	at, err := utils.NewAccessToken("secret", 42, "ADMIN", 15)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotRole interface{}
	h := JWTAuth("secret")(func(c echo.Context) error {
		gotRole = c.Get("role")
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotRole != "ADMIN" {
		t.Errorf("role = %v, want ADMIN", gotRole)
	}
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other", 42, "ADMIN", 15)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	code := runWith(JWTAuth("secret"), func(c echo.Context) {
		c.Request().Header.Set("Authorization", "Bearer "+at.Token)
	})
	if code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", code)
	}
}
