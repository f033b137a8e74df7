package forms

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func formContext(values url.Values) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req
	return c
}

func TestBindQuestion(t *testing.T) {
	testCases := []struct {
		name       string
		values     url.Values
		wantFields []string
	}{
		{
			name:   "valid",
			values: url.Values{"topic": {"  This is a test question  "}, "description": {"body"}},
		},
		{
			name:       "missing both",
			values:     url.Values{},
			wantFields: []string{"topic", "description"},
		},
		{
			name:       "whitespace only topic",
			values:     url.Values{"topic": {"   "}, "description": {"body"}},
			wantFields: []string{"topic"},
		},
		{
			name:       "topic too long",
			values:     url.Values{"topic": {strings.Repeat("x", 201)}, "description": {"body"}},
			wantFields: []string{"topic"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var in QuestionInput
			errs := Bind(formContext(tc.values), &in)
			if len(tc.wantFields) == 0 {
				if errs != nil {
					t.Fatalf("Expected no errors, got %v", errs)
				}
				if in.Topic != "This is a test question" {
					t.Errorf("Expected trimmed topic, got %q", in.Topic)
				}
				return
			}
			if errs == nil {
				t.Fatal("Expected errors, got none")
			}
			for _, f := range tc.wantFields {
				if len(errs.Get(f)) == 0 {
					t.Errorf("Expected an error on %s, got %v", f, errs)
				}
			}
			if len(errs) != len(tc.wantFields) {
				t.Errorf("Expected errors on %v only, got %v", tc.wantFields, errs)
			}
		})
	}
}

func TestBindAnswer(t *testing.T) {
	var in AnswerInput
	if errs := Bind(formContext(url.Values{"reply": {"This is a test answer"}}), &in); errs != nil {
		t.Fatalf("Expected valid answer, got %v", errs)
	}
	if in.Reply != "This is a test answer" {
		t.Errorf("Unexpected reply %q", in.Reply)
	}

	var empty AnswerInput
	errs := Bind(formContext(url.Values{"reply": {"\n\t"}}), &empty)
	if errs == nil || errs.Get("reply")[0] != "This field is required." {
		t.Errorf("Expected required error on reply, got %v", errs)
	}
}

func TestValidateRegister(t *testing.T) {
	valid := RegisterInput{
		Username:  "testuser",
		Email:     "test@example.com",
		Password1: "A9q5W1z7S5xE3d",
		Password2: "A9q5W1z7S5xE3d",
	}

	testCases := []struct {
		name   string
		mutate func(in *RegisterInput)
		field  string
	}{
		{"valid", func(in *RegisterInput) {}, ""},
		{"no email is fine", func(in *RegisterInput) { in.Email = "" }, ""},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"bad username chars", func(in *RegisterInput) { in.Username = "test user!" }, "username"},
		{"accented username", func(in *RegisterInput) { in.Username = "José_Ñandú" }, ""},
		{"cyrillic username", func(in *RegisterInput) { in.Username = "Иван.Петров" }, ""},
		{"username symbols", func(in *RegisterInput) { in.Username = "a.b+c-d@e_1" }, ""},
		{"emoji username", func(in *RegisterInput) { in.Username = "user😀" }, "username"},
		{"long username", func(in *RegisterInput) { in.Username = strings.Repeat("u", 151) }, "username"},
		{"mismatch", func(in *RegisterInput) { in.Password2 = "A9q5W1z7S5xE3e" }, "password2"},
		{"short", func(in *RegisterInput) { in.Password1, in.Password2 = "a1b2", "a1b2" }, "password2"},
		{"numeric", func(in *RegisterInput) { in.Password1, in.Password2 = "1234567890", "1234567890" }, "password2"},
		{"same as username", func(in *RegisterInput) { in.Password1, in.Password2 = "TestUser", "TestUser" }, "password2"},
		{"missing password", func(in *RegisterInput) { in.Password1 = "" }, "password1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			errs := Validate(&in)
			if tc.field == "" {
				if errs != nil {
					t.Errorf("Expected no errors, got %v", errs)
				}
				return
			}
			if len(errs.Get(tc.field)) == 0 {
				t.Errorf("Expected error on %s, got %v", tc.field, errs)
			}
		})
	}
}

func TestCheckPasswordCollectsAllRules(t *testing.T) {
	msgs := CheckPassword("1234", "1234")
	if len(msgs) != 3 {
		t.Errorf("Expected 3 messages, got %d: %v", len(msgs), msgs)
	}
}

func TestFieldErrorsError(t *testing.T) {
	errs := FieldErrors{}
	errs.Add("topic", "required")
	errs.Add("description", "required")
	if got := errs.Error(); got != "description: required, topic: required" {
		t.Errorf("Unexpected Error(): %q", got)
	}
}
