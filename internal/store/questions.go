package store

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/sujalbistaa/qanda/internal/models"
)

// PageSize is the number of questions per index page.
const PageSize = 7

// Direction picks one of the two voter sets on a question.
type Direction int

const (
	Upvote Direction = iota
	Downvote
)

func (d Direction) association() string {
	if d == Downvote {
		return "Downvoters"
	}
	return "Upvoters"
}

func (d Direction) joinTable() string {
	if d == Downvote {
		return "question_downvotes"
	}
	return "question_upvotes"
}

func (d Direction) String() string {
	if d == Downvote {
		return "downvote"
	}
	return "upvote"
}

// Page is one slice of the newest-first question list.
type Page struct {
	Number    int
	NumPages  int
	Total     int64
	Questions []models.Question
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.NumPages }
func (p Page) Prev() int     { return p.Number - 1 }
func (p Page) Next() int     { return p.Number + 1 }

// ListQuestions returns page number (1-based) of all questions, newest
// first. The first page always exists; any other page outside the range
// is ErrNotFound.
func (s *Store) ListQuestions(number int) (*Page, error) {
	var total int64
	if err := s.db.Model(&models.Question{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	numPages := int((total + PageSize - 1) / PageSize)
	if numPages == 0 {
		numPages = 1
	}
	if number < 1 || number > numPages {
		return nil, ErrNotFound
	}

	page := &Page{Number: number, NumPages: numPages, Total: total}
	err := s.db.Preload("Author").
		Order("created_at desc, id desc").
		Offset((number - 1) * PageSize).
		Limit(PageSize).
		Find(&page.Questions).Error
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return page, nil
}

// CreateQuestion stores a question written by authorID and returns its id.
func (s *Store) CreateQuestion(authorID uint, topic, description string) (uint, error) {
	q := models.Question{
		AuthorID:    &authorID,
		Topic:       topic,
		TopicFold:   models.FoldTopic(topic),
		Description: description,
	}
	if err := s.db.Create(&q).Error; err != nil {
		return 0, fmt.Errorf("create question: %w", err)
	}
	return q.ID, nil
}

func (s *Store) GetQuestion(id uint) (*models.Question, error) {
	var q models.Question
	if err := s.db.Preload("Author").First(&q, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

// UpdateQuestion rewrites topic and description. CreatedAt never changes.
func (s *Store) UpdateQuestion(id uint, topic, description string) error {
	res := s.db.Model(&models.Question{}).Where("id = ?", id).Updates(map[string]any{
		"topic":       topic,
		"topic_fold":  models.FoldTopic(topic),
		"description": description,
	})
	if res.Error != nil {
		return fmt.Errorf("update question: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteQuestion removes the question, its answers and both vote sets.
func (s *Store) DeleteQuestion(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var q models.Question
		if err := tx.First(&q, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return fmt.Errorf("delete answers: %w", err)
		}
		for _, d := range []Direction{Upvote, Downvote} {
			if err := tx.Model(&q).Association(d.association()).Clear(); err != nil {
				return fmt.Errorf("clear %ss: %w", d, err)
			}
		}
		if err := tx.Delete(&q).Error; err != nil {
			return fmt.Errorf("delete question: %w", err)
		}
		return nil
	})
}

// ToggleVote adds userID to the direction's voter set, or removes them if
// already there. It returns whether the user is in the set afterwards.
// The other direction's set is left alone.
func (s *Store) ToggleVote(questionID, userID uint, d Direction) (bool, error) {
	voted := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var q models.Question
		if err := tx.First(&q, questionID).Error; err != nil {
			return notFound(err)
		}
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return notFound(err)
		}

		present, err := hasVoted(tx, questionID, userID, d)
		if err != nil {
			return err
		}
		assoc := tx.Model(&q).Association(d.association())
		if present {
			if err := assoc.Delete(&user); err != nil {
				return fmt.Errorf("remove %s: %w", d, err)
			}
			return nil
		}
		if err := assoc.Append(&user); err != nil {
			return fmt.Errorf("add %s: %w", d, err)
		}
		voted = true
		return nil
	})
	return voted, err
}

// HasVoted reports whether userID is in the direction's voter set.
func (s *Store) HasVoted(questionID, userID uint, d Direction) (bool, error) {
	return hasVoted(s.db, questionID, userID, d)
}

func hasVoted(db *gorm.DB, questionID, userID uint, d Direction) (bool, error) {
	var count int64
	err := db.Table(d.joinTable()).
		Where("question_id = ? AND user_id = ?", questionID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check %s: %w", d, err)
	}
	return count > 0, nil
}

// CountVotes is the size of the direction's voter set.
func (s *Store) CountVotes(questionID uint, d Direction) (int64, error) {
	var count int64
	err := s.db.Table(d.joinTable()).Where("question_id = ?", questionID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count %ss: %w", d, err)
	}
	return count, nil
}

// SearchQuestions matches query against topics as a case-insensitive
// substring. A blank query matches nothing.
func (s *Store) SearchQuestions(query string) ([]models.Question, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Question{}, nil
	}
	pattern := "%" + escapeLike(models.FoldTopic(query)) + "%"
	var questions []models.Question
	err := s.db.Preload("Author").
		Where(`topic_fold LIKE ? ESCAPE '\'`, pattern).
		Order("id").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("search questions: %w", err)
	}
	return questions, nil
}

func (s *Store) QuestionsByAuthor(userID uint) ([]models.Question, error) {
	var questions []models.Question
	if err := s.db.Where("author_id = ?", userID).Order("id").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("questions by author: %w", err)
	}
	return questions, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
