package store

import (
	"fmt"

	"github.com/sujalbistaa/qanda/internal/models"
)

// CreateAnswer stores a reply to questionID and returns it.
func (s *Store) CreateAnswer(questionID, authorID uint, reply string) (*models.Answer, error) {
	var count int64
	if err := s.db.Model(&models.Question{}).Where("id = ?", questionID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check question: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	a := models.Answer{
		AuthorID:   &authorID,
		QuestionID: questionID,
		Reply:      reply,
	}
	if err := s.db.Create(&a).Error; err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}
	return &a, nil
}

func (s *Store) GetAnswer(id uint) (*models.Answer, error) {
	var a models.Answer
	if err := s.db.Preload("Author").First(&a, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *Store) UpdateAnswer(id uint, reply string) error {
	res := s.db.Model(&models.Answer{}).Where("id = ?", id).Update("reply", reply)
	if res.Error != nil {
		return fmt.Errorf("update answer: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAnswer(id uint) error {
	res := s.db.Delete(&models.Answer{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete answer: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AnswersForQuestion returns the replies in the order they were posted.
func (s *Store) AnswersForQuestion(questionID uint) ([]models.Answer, error) {
	var answers []models.Answer
	err := s.db.Preload("Author").Where("question_id = ?", questionID).Order("id").Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("answers for question: %w", err)
	}
	return answers, nil
}

func (s *Store) AnswersByAuthor(userID uint) ([]models.Answer, error) {
	var answers []models.Answer
	if err := s.db.Where("author_id = ?", userID).Order("id").Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("answers by author: %w", err)
	}
	return answers, nil
}
