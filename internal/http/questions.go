package http

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/qanda/internal/forms"
	"github.com/sujalbistaa/qanda/internal/models"
	"github.com/sujalbistaa/qanda/internal/store"
)

// Index lists questions newest first, PageSize per page.
func (e *Env) Index(c *gin.Context) {
	number, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		e.fail(c, store.ErrNotFound)
		return
	}
	page, err := e.Store.ListQuestions(number)
	if err != nil {
		e.fail(c, err)
		return
	}
	render(c, http.StatusOK, "index.html", gin.H{"Page": page})
}

func (e *Env) AskQuestionPage(c *gin.Context) {
	render(c, http.StatusOK, "question_form.html", gin.H{
		"Form":   forms.QuestionInput{},
		"Errors": formErrors(nil),
	})
}

func (e *Env) AskQuestion(c *gin.Context) {
	var input forms.QuestionInput
	if errs := forms.Bind(c, &input); errs != nil {
		render(c, http.StatusOK, "question_form.html", gin.H{"Form": input, "Errors": errs})
		return
	}
	me := caller(c)
	id, err := e.Store.CreateQuestion(me.User.ID, input.Topic, input.Description)
	if err != nil {
		e.fail(c, err)
		return
	}

	e.Hub.Publish("new_question", gin.H{"id": id, "topic": input.Topic, "author": me.User.Username})
	c.Redirect(http.StatusFound, detailPath(id))
}

type answerView struct {
	models.Answer
	Editable bool
}

func (e *Env) renderDetail(c *gin.Context, q *models.Question, input forms.AnswerInput, errs forms.FieldErrors) {
	me := caller(c)
	answers, err := e.Store.AnswersForQuestion(q.ID)
	if err != nil {
		e.fail(c, err)
		return
	}
	views := make([]answerView, 0, len(answers))
	for _, a := range answers {
		views = append(views, answerView{Answer: a, Editable: e.canModify(me, a.AuthoredBy)})
	}

	upvotes, err := e.Store.CountVotes(q.ID, store.Upvote)
	if err != nil {
		e.fail(c, err)
		return
	}
	downvotes, err := e.Store.CountVotes(q.ID, store.Downvote)
	if err != nil {
		e.fail(c, err)
		return
	}
	upvoted, err := e.Store.HasVoted(q.ID, me.User.ID, store.Upvote)
	if err != nil {
		e.fail(c, err)
		return
	}
	downvoted, err := e.Store.HasVoted(q.ID, me.User.ID, store.Downvote)
	if err != nil {
		e.fail(c, err)
		return
	}

	render(c, http.StatusOK, "detail.html", gin.H{
		"Question":    q,
		"Editable":    e.canModify(me, q.AuthoredBy),
		"Answers":     views,
		"AnswerCount": len(views),
		"Upvotes":     upvotes,
		"Downvotes":   downvotes,
		"Upvoted":     upvoted,
		"Downvoted":   downvoted,
		"Form":        input,
		"Errors":      formErrors(errs),
	})
}

func (e *Env) canModify(me *Identity, authoredBy func(uint) bool) bool {
	return !e.Cfg.EnforceOwnership || authoredBy(me.User.ID)
}

// Detail shows one question with its answers and the caller's vote state.
func (e *Env) Detail(c *gin.Context) {
	id, ok := e.pathID(c)
	if !ok {
		return
	}
	q, err := e.Store.GetQuestion(id)
	if err != nil {
		e.fail(c, err)
		return
	}
	e.renderDetail(c, q, forms.AnswerInput{}, nil)
}

// PostAnswer adds a reply and redirects back so a refresh does not resubmit.
func (e *Env) PostAnswer(c *gin.Context) {
	id, ok := e.pathID(c)
	if !ok {
		return
	}
	q, err := e.Store.GetQuestion(id)
	if err != nil {
		e.fail(c, err)
		return
	}
	var input forms.AnswerInput
	if errs := forms.Bind(c, &input); errs != nil {
		e.renderDetail(c, q, input, errs)
		return
	}
	me := caller(c)
	a, err := e.Store.CreateAnswer(q.ID, me.User.ID, input.Reply)
	if err != nil {
		e.fail(c, err)
		return
	}

	e.Hub.Publish("new_answer", gin.H{"id": a.ID, "questionId": q.ID, "author": me.User.Username})
	c.Redirect(http.StatusFound, detailPath(q.ID))
}

func (e *Env) Upvote(c *gin.Context)   { e.toggleVote(c, store.Upvote) }
func (e *Env) Downvote(c *gin.Context) { e.toggleVote(c, store.Downvote) }

func (e *Env) toggleVote(c *gin.Context, d store.Direction) {
	id, ok := e.pathID(c)
	if !ok {
		return
	}
	me := caller(c)
	voted, err := e.Store.ToggleVote(id, me.User.ID, d)
	if err != nil {
		e.fail(c, err)
		return
	}

	upvotes, uerr := e.Store.CountVotes(id, store.Upvote)
	downvotes, derr := e.Store.CountVotes(id, store.Downvote)
	if uerr == nil && derr == nil {
		e.Hub.Publish("vote", gin.H{"id": id, "upvotes": upvotes, "downvotes": downvotes})
	}
	log.Printf("User %s toggled %s on question %d (now %t)", me.User.Username, d, id, voted)
	c.Redirect(http.StatusFound, detailPath(id))
}

// Search matches the query against question topics. The query comes from
// the "searched" form field on POST, or ?searched= / ?q= on GET.
func (e *Env) Search(c *gin.Context) {
	query := c.PostForm("searched")
	if c.Request.Method == http.MethodGet {
		query = c.Query("searched")
		if query == "" {
			query = c.Query("q")
		}
	}
	query = strings.TrimSpace(query)

	questions, err := e.Store.SearchQuestions(query)
	if err != nil {
		e.fail(c, err)
		return
	}
	render(c, http.StatusOK, "search.html", gin.H{
		"Searched":  query,
		"Questions": questions,
	})
}

// Profile lists everything the caller has asked and answered.
func (e *Env) Profile(c *gin.Context) {
	me := caller(c)
	questions, err := e.Store.QuestionsByAuthor(me.User.ID)
	if err != nil {
		e.fail(c, err)
		return
	}
	answers, err := e.Store.AnswersByAuthor(me.User.ID)
	if err != nil {
		e.fail(c, err)
		return
	}
	render(c, http.StatusOK, "profile.html", gin.H{
		"Questions": questions,
		"Answers":   answers,
	})
}

// loadQuestion fetches the :id question and applies the ownership rule.
func (e *Env) loadQuestion(c *gin.Context) (*models.Question, bool) {
	id, ok := e.pathID(c)
	if !ok {
		return nil, false
	}
	q, err := e.Store.GetQuestion(id)
	if err == nil {
		err = e.authorize(c, q.AuthoredBy)
	}
	if err != nil {
		e.fail(c, err)
		return nil, false
	}
	return q, true
}

func (e *Env) EditQuestionPage(c *gin.Context) {
	q, ok := e.loadQuestion(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "edit_question.html", gin.H{
		"Question": q,
		"Form":     forms.QuestionInput{Topic: q.Topic, Description: q.Description},
		"Errors":   formErrors(nil),
	})
}

func (e *Env) EditQuestion(c *gin.Context) {
	q, ok := e.loadQuestion(c)
	if !ok {
		return
	}
	var input forms.QuestionInput
	if errs := forms.Bind(c, &input); errs != nil {
		render(c, http.StatusOK, "edit_question.html", gin.H{"Question": q, "Form": input, "Errors": errs})
		return
	}
	if err := e.Store.UpdateQuestion(q.ID, input.Topic, input.Description); err != nil {
		e.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, detailPath(q.ID))
}

func (e *Env) DeleteQuestionPage(c *gin.Context) {
	q, ok := e.loadQuestion(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "delete_question.html", gin.H{"Question": q})
}

func (e *Env) DeleteQuestion(c *gin.Context) {
	q, ok := e.loadQuestion(c)
	if !ok {
		return
	}
	if err := e.Store.DeleteQuestion(q.ID); err != nil {
		e.fail(c, err)
		return
	}

	e.Hub.Publish("delete_question", gin.H{"id": q.ID})
	c.Redirect(http.StatusFound, "/")
}
