package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnswerOptionInput struct {
	Text            string  `json:"text" binding:"required"`
	JumpToTimestamp float64 `json:"jumpToTimestamp"`
	IsCorrect       *bool   `json:"isCorrect"`
}

type AnswerOptionPatch struct {
	Text            *string  `json:"text"`
	JumpToTimestamp *float64 `json:"jumpToTimestamp"`
	IsCorrect       *bool    `json:"isCorrect"`
}

func (s *Service) ListAnswerOptions(ctx context.Context, who Identity, questionID string) ([]AnswerOption, error) {
	db := s.db.WithContext(ctx)
	videoID, err := videoOfQuestion(questionID)(db)
	if err != nil {
		return nil, err
	}
	if _, err := readableVideo(db, who, videoID); err != nil {
		return nil, err
	}
	var opts []AnswerOption
	if err := db.Where("question_id = ?", questionID).Order("sort_order, id").Find(&opts).Error; err != nil {
		return nil, fmt.Errorf("list answer options: %w", err)
	}
	return opts, nil
}

func (s *Service) CreateAnswerOption(ctx context.Context, who Identity, questionID string, in AnswerOptionInput) (string, error) {
	o := AnswerOption{
		ID:              uuid.New().String(),
		QuestionID:      questionID,
		Text:            in.Text,
		IsCorrect:       in.IsCorrect,
		JumpToTimestamp: in.JumpToTimestamp,
	}
	var videoID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := authorize(tx, who, videoOfQuestion(questionID))
		if err != nil {
			return err
		}
		videoID = v.ID
		order, err := nextOrder(tx, &AnswerOption{}, "question_id", questionID)
		if err != nil {
			return err
		}
		o.Order = order
		return tx.Create(&o).Error
	})
	if err != nil {
		return "", err
	}
	s.invalidate(ctx, videoID)
	return o.ID, nil
}

func (s *Service) UpdateAnswerOption(ctx context.Context, who Identity, optionID string, patch AnswerOptionPatch) error {
	var videoID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := authorize(tx, who, videoOfAnswerOption(optionID))
		if err != nil {
			return err
		}
		videoID = v.ID
		updates := map[string]any{}
		if patch.Text != nil {
			updates["text"] = *patch.Text
		}
		if patch.JumpToTimestamp != nil {
			updates["jump_to_timestamp"] = *patch.JumpToTimestamp
		}
		if patch.IsCorrect != nil {
			updates["is_correct"] = *patch.IsCorrect
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&AnswerOption{}).Where("id = ?", optionID).Updates(updates).Error
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, videoID)
	return nil
}

func (s *Service) DeleteAnswerOption(ctx context.Context, who Identity, optionID string) error {
	var videoID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := authorize(tx, who, videoOfAnswerOption(optionID))
		if err != nil {
			return err
		}
		videoID = v.ID
		return tx.Where("id = ?", optionID).Delete(&AnswerOption{}).Error
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, videoID)
	return nil
}

func (s *Service) ReorderAnswerOptions(ctx context.Context, who Identity, optionIDs []string) error {
	var videos []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		videos, err = reorder(tx, who, &AnswerOption{}, optionIDs, videoOfAnswerOption)
		return err
	})
	if err != nil {
		return err
	}
	for _, id := range videos {
		s.invalidate(ctx, id)
	}
	return nil
}
