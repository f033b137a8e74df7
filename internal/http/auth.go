package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/qanda/internal/forms"
	"github.com/sujalbistaa/qanda/internal/store"
)

func (e *Env) RegisterPage(c *gin.Context) {
	render(c, http.StatusOK, "register.html", gin.H{
		"Form":   forms.RegisterInput{},
		"Errors": formErrors(nil),
	})
}

func (e *Env) Register(c *gin.Context) {
	var input forms.RegisterInput
	errs := forms.Bind(c, &input)
	if errs == nil {
		_, err := e.Store.CreateUser(input.Username, input.Email, input.Password1)
		switch {
		case errors.Is(err, store.ErrUsernameTaken):
			errs = forms.FieldErrors{}
			errs.Add("username", "A user with that username already exists.")
		case err != nil:
			e.fail(c, err)
			return
		}
	}
	if errs != nil {
		render(c, http.StatusOK, "register.html", gin.H{
			"Form":   forms.RegisterInput{Username: input.Username, Email: input.Email},
			"Errors": errs,
		})
		return
	}

	log.Printf("User registered: %s", input.Username)
	setFlash(c, "Account created successfully")
	c.Redirect(http.StatusFound, loginPath)
}

func (e *Env) LoginPage(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{
		"Next":     c.Query("next"),
		"Username": "",
		"Error":    "",
	})
}

func (e *Env) Login(c *gin.Context) {
	var input forms.LoginInput
	next := c.PostForm("next")
	if next == "" {
		next = c.Query("next")
	}

	invalid := func() {
		render(c, http.StatusOK, "login.html", gin.H{
			"Next":     next,
			"Username": input.Username,
			"Error":    "Incorrect username or password",
		})
	}

	if errs := forms.Bind(c, &input); errs != nil {
		invalid()
		return
	}
	user, err := e.Store.Authenticate(input.Username, input.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		log.Printf("Failed login for user %s", input.Username)
		invalid()
		return
	}
	if err != nil {
		e.fail(c, err)
		return
	}

	if _, err := e.Store.PruneSessions(); err != nil {
		log.Printf("Session prune error: %v", err)
	}
	session, err := e.Store.CreateSession(user.ID, e.Cfg.SessionTTL)
	if err != nil {
		e.fail(c, err)
		return
	}
	e.setSessionCookie(c, session.ID)

	log.Printf("User logged in: %s", user.Username)
	target := "/"
	if safe, ok := safeNext(next); ok {
		target = safe
	}
	c.Redirect(http.StatusFound, target)
}

func (e *Env) Logout(c *gin.Context) {
	if id, ok := CurrentIdentity(c); ok {
		if err := e.Store.DeleteSession(id.SessionID); err != nil {
			log.Printf("Session delete error: %v", err)
		}
	}
	e.clearSessionCookie(c)
	c.Redirect(http.StatusFound, loginPath)
}

// ownAccount checks that the :id parameter names the caller.
func (e *Env) ownAccount(c *gin.Context) (*Identity, bool) {
	id, ok := e.pathID(c)
	if !ok {
		return nil, false
	}
	me := caller(c)
	if id != me.User.ID {
		e.fail(c, store.ErrForbidden)
		return nil, false
	}
	return me, true
}

func (e *Env) DisableAccountPage(c *gin.Context) {
	if _, ok := e.ownAccount(c); !ok {
		return
	}
	render(c, http.StatusOK, "disable_account.html", nil)
}

// DisableAccount deactivates the caller's own account and logs them out.
func (e *Env) DisableAccount(c *gin.Context) {
	me, ok := e.ownAccount(c)
	if !ok {
		return
	}
	if err := e.Store.DeactivateUser(me.User.ID); err != nil {
		e.fail(c, err)
		return
	}

	log.Printf("User disabled account: %s", me.User.Username)
	e.clearSessionCookie(c)
	setFlash(c, "Profile successfully disabled. Contact admin to reactivate it.")
	c.Redirect(http.StatusFound, loginPath)
}

// ActivateUser is the admin-token endpoint that undoes DisableAccount.
func (e *Env) ActivateUser(c *gin.Context) {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	if err := e.Store.ActivateUser(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("Error activating user %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "message": "User activated"})
}
