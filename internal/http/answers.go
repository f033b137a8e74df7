package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/qanda/internal/forms"
	"github.com/sujalbistaa/qanda/internal/models"
)

func (e *Env) loadAnswer(c *gin.Context) (*models.Answer, bool) {
	id, ok := e.pathID(c)
	if !ok {
		return nil, false
	}
	a, err := e.Store.GetAnswer(id)
	if err == nil {
		err = e.authorize(c, a.AuthoredBy)
	}
	if err != nil {
		e.fail(c, err)
		return nil, false
	}
	return a, true
}

func (e *Env) EditAnswerPage(c *gin.Context) {
	a, ok := e.loadAnswer(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "edit_answer.html", gin.H{
		"Answer": a,
		"Form":   forms.AnswerInput{Reply: a.Reply},
		"Errors": formErrors(nil),
	})
}

// EditAnswer saves the new reply and returns to the parent question.
func (e *Env) EditAnswer(c *gin.Context) {
	a, ok := e.loadAnswer(c)
	if !ok {
		return
	}
	var input forms.AnswerInput
	if errs := forms.Bind(c, &input); errs != nil {
		render(c, http.StatusOK, "edit_answer.html", gin.H{"Answer": a, "Form": input, "Errors": errs})
		return
	}
	if err := e.Store.UpdateAnswer(a.ID, input.Reply); err != nil {
		e.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, detailPath(a.QuestionID))
}

func (e *Env) DeleteAnswerPage(c *gin.Context) {
	a, ok := e.loadAnswer(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "delete_answer.html", gin.H{"Answer": a})
}

func (e *Env) DeleteAnswer(c *gin.Context) {
	a, ok := e.loadAnswer(c)
	if !ok {
		return
	}
	if err := e.Store.DeleteAnswer(a.ID); err != nil {
		e.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}
