// Package forms decodes and validates the HTML forms the forum accepts.
// Each action has its own input struct; Bind returns either nothing (the
// struct is ready to use) or the field-level errors to show the user.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NonFieldKey collects errors that belong to the form as a whole.
const NonFieldKey = "__all__"

// FieldErrors maps a form field name to its messages.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Get returns the messages for field, for use in templates.
func (e FieldErrors) Get(field string) []string {
	return e[field]
}

func (e FieldErrors) Any() bool {
	return len(e) > 0
}

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], "; "))
	}
	return strings.Join(parts, ", ")
}

// Input is implemented by every form struct. Normalize runs after decoding
// and before validation.
type Input interface {
	Normalize()
}

type QuestionInput struct {
	Topic       string `form:"topic" validate:"required,max=200"`
	Description string `form:"description" validate:"required"`
}

func (in *QuestionInput) Normalize() {
	in.Topic = strings.TrimSpace(in.Topic)
	in.Description = strings.TrimSpace(in.Description)
}

type AnswerInput struct {
	Reply string `form:"reply" validate:"required"`
}

func (in *AnswerInput) Normalize() {
	in.Reply = strings.TrimSpace(in.Reply)
}

type LoginInput struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func (in *LoginInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
}

// RegisterInput mirrors a classic sign-up form with a password confirmation.
type RegisterInput struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required"`
}

func (in *RegisterInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
}

// Check adds the cross-field rules the tags cannot express.
func (in *RegisterInput) Check(errs FieldErrors) {
	if in.Password1 != "" && in.Password2 != "" && in.Password1 != in.Password2 {
		errs.Add("password2", "The two password fields didn't match.")
		return
	}
	if in.Password2 != "" {
		for _, msg := range CheckPassword(in.Username, in.Password2) {
			errs.Add("password2", msg)
		}
	}
}

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// CheckPassword returns every strength rule password breaks.
func CheckPassword(username, password string) []string {
	var msgs []string
	if utf8.RuneCountInString(password) < MinPasswordLength {
		msgs = append(msgs, fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}
	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		msgs = append(msgs, "This password is entirely numeric.")
	}
	if username != "" && strings.EqualFold(username, password) {
		msgs = append(msgs, "The password is too similar to the username.")
	}
	return msgs
}

var (
	validate        = newValidator()
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// Bind decodes the request form into in, normalizes it and validates it.
// A nil result means in is valid.
func Bind(c *gin.Context, in Input) FieldErrors {
	errs := FieldErrors{}
	if err := c.ShouldBindWith(in, binding.Form); err != nil {
		errs.Add(NonFieldKey, "The form could not be read.")
		return errs
	}
	return Validate(in)
}

// Validate normalizes and checks an already-decoded input.
func Validate(in Input) FieldErrors {
	in.Normalize()
	errs := FieldErrors{}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			errs.Add(NonFieldKey, err.Error())
			return errs
		}
		for _, fe := range verrs {
			errs.Add(fe.Field(), message(fe))
		}
	}
	if r, ok := in.(*RegisterInput); ok {
		r.Check(errs)
	}
	if errs.Any() {
		return errs
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}
	return fmt.Sprintf("Invalid value (%s).", fe.Tag())
}
