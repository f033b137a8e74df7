package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/qanda/internal/config"
	"github.com/sujalbistaa/qanda/internal/forms"
	"github.com/sujalbistaa/qanda/internal/store"
	"github.com/sujalbistaa/qanda/internal/ws"
)

const flashCookie = "flash"

// Env carries the dependencies every handler needs.
type Env struct {
	Store *store.Store
	Hub   *ws.Hub
	Cfg   *config.Config
}

// render adds the caller and any pending flash message to data.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if id, ok := CurrentIdentity(c); ok {
		data["User"] = id.User
	} else {
		data["User"] = nil
	}
	data["Flash"] = popFlash(c)
	c.HTML(status, name, data)
}

func renderError(c *gin.Context, status int, message string) {
	render(c, status, "error.html", gin.H{
		"Code":    status,
		"Title":   http.StatusText(status),
		"Message": message,
	})
}

// fail maps a store error to the page the user sees.
func (e *Env) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		renderError(c, http.StatusNotFound, "The page you are looking for does not exist.")
	case errors.Is(err, store.ErrForbidden):
		renderError(c, http.StatusForbidden, "You are not allowed to do that.")
	default:
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		renderError(c, http.StatusInternalServerError, "Something went wrong on our side.")
	}
}

// pathID parses the :id route parameter. Anything but a positive integer
// is a 404, same as a route that does not match.
func (e *Env) pathID(c *gin.Context) (uint, bool) {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		e.fail(c, store.ErrNotFound)
		return 0, false
	}
	return id, true
}

func parseUint(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, strconv.ErrRange
	}
	return uint(id), nil
}

// caller is only used behind RequireLogin, so the identity is always there.
func caller(c *gin.Context) *Identity {
	id, _ := CurrentIdentity(c)
	return id
}

// authorize enforces authorship when the ownership check is switched on.
func (e *Env) authorize(c *gin.Context, authoredBy func(uint) bool) error {
	if !e.Cfg.EnforceOwnership {
		return nil
	}
	if !authoredBy(caller(c).User.ID) {
		return store.ErrForbidden
	}
	return nil
}

func setFlash(c *gin.Context, msg string) {
	c.SetCookie(flashCookie, msg, 60, "/", "", false, true)
}

func popFlash(c *gin.Context) string {
	msg, err := c.Cookie(flashCookie)
	if err != nil || msg == "" {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	return msg
}

func (e *Env) setSessionCookie(c *gin.Context, sid string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, sid, int(e.Cfg.SessionTTL.Seconds()), "/", "", e.Cfg.CookieSecure, true)
}

func (e *Env) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", e.Cfg.CookieSecure, true)
}

func detailPath(id uint) string {
	return fmt.Sprintf("/question/%d/", id)
}

// formErrors never hands a nil map to a template.
func formErrors(errs forms.FieldErrors) forms.FieldErrors {
	if errs == nil {
		return forms.FieldErrors{}
	}
	return errs
}
