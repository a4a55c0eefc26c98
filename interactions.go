package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InteractionInput struct {
	Timestamp  float64 `json:"timestamp"`
	QuestionID string  `json:"questionId" binding:"required"`
}

type InteractionPatch struct {
	Timestamp  *float64 `json:"timestamp"`
	QuestionID *string  `json:"questionId"`
}

func (s *Service) ListInteractionPoints(ctx context.Context, who Identity, videoID string) ([]InteractionPoint, error) {
	db := s.db.WithContext(ctx)
	if _, err := readableVideo(db, who, videoID); err != nil {
		return nil, err
	}
	var ips []InteractionPoint
	if err := db.Where("video_id = ?", videoID).Order("timestamp, id").Find(&ips).Error; err != nil {
		return nil, fmt.Errorf("list interaction points: %w", err)
	}
	return ips, nil
}

// ListInteractionsWithQuestions builds the projection the player needs for a
// whole viewing: every interaction point, timestamp ascending, joined with its
// question and ordered answer options. Points whose question is gone are skipped.
func (s *Service) ListInteractionsWithQuestions(ctx context.Context, who Identity, videoID string) ([]InteractionView, error) {
	db := s.db.WithContext(ctx)
	v, err := readableVideo(db, who, videoID)
	if err != nil {
		return nil, err
	}
	published := v.Status == StatusPublished
	var gen int64
	if published {
		if views, ok := s.cache.Get(ctx, videoID); ok {
			return views, nil
		}
		gen = s.cache.Generation(ctx, videoID)
	}

	var ips []InteractionPoint
	if err := db.Where("video_id = ?", videoID).Order("timestamp, id").Find(&ips).Error; err != nil {
		return nil, fmt.Errorf("list interaction points: %w", err)
	}
	questionIDs := make([]string, 0, len(ips))
	for _, ip := range ips {
		questionIDs = append(questionIDs, ip.QuestionID)
	}
	var qs []Question
	if len(questionIDs) > 0 {
		if err := db.Preload("AnswerOptions", orderedOptions).Where("id IN ?", questionIDs).Find(&qs).Error; err != nil {
			return nil, fmt.Errorf("load questions: %w", err)
		}
	}
	byID := make(map[string]Question, len(qs))
	for _, q := range qs {
		byID[q.ID] = q
	}

	views := make([]InteractionView, 0, len(ips))
	for _, ip := range ips {
		q, ok := byID[ip.QuestionID]
		if !ok {
			continue
		}
		opts := q.AnswerOptions
		if opts == nil {
			opts = []AnswerOption{}
		}
		views = append(views, InteractionView{
			ID:        ip.ID,
			VideoID:   ip.VideoID,
			Timestamp: ip.Timestamp,
			Question: QuestionView{
				ID:             q.ID,
				Type:           q.Type,
				Text:           q.Text,
				MediaStorageID: q.MediaStorageID,
				AnswerOptions:  opts,
			},
		})
	}
	if published {
		s.cache.Set(ctx, videoID, gen, views)
	}
	return views, nil
}

// questionInVideo enforces that an interaction only references its own video's questions.
func questionInVideo(tx *gorm.DB, questionID, videoID string) error {
	var q Question
	if err := tx.Select("id", "video_id").First(&q, "id = ?", questionID).Error; err != nil {
		return notFoundOr(err, "question")
	}
	if q.VideoID != videoID {
		return fmt.Errorf("%w: question %s for this video", ErrNotFound, questionID)
	}
	return nil
}

func (s *Service) CreateInteractionPoint(ctx context.Context, who Identity, videoID string, in InteractionInput) (string, error) {
	ip := InteractionPoint{
		ID:         uuid.New().String(),
		VideoID:    videoID,
		Timestamp:  in.Timestamp,
		QuestionID: in.QuestionID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := authorize(tx, who, videoByID(videoID)); err != nil {
			return err
		}
		if err := questionInVideo(tx, in.QuestionID, videoID); err != nil {
			return err
		}
		return tx.Create(&ip).Error
	})
	if err != nil {
		return "", err
	}
	s.invalidate(ctx, videoID)
	return ip.ID, nil
}

func (s *Service) UpdateInteractionPoint(ctx context.Context, who Identity, interactionID string, patch InteractionPatch) error {
	var videoID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := authorize(tx, who, videoOfInteraction(interactionID))
		if err != nil {
			return err
		}
		videoID = v.ID
		updates := map[string]any{}
		if patch.Timestamp != nil {
			updates["timestamp"] = *patch.Timestamp
		}
		if patch.QuestionID != nil {
			if err := questionInVideo(tx, *patch.QuestionID, v.ID); err != nil {
				return err
			}
			updates["question_id"] = *patch.QuestionID
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&InteractionPoint{}).Where("id = ?", interactionID).Updates(updates).Error
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, videoID)
	return nil
}

func (s *Service) DeleteInteractionPoint(ctx context.Context, who Identity, interactionID string) error {
	var videoID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := authorize(tx, who, videoOfInteraction(interactionID))
		if err != nil {
			return err
		}
		videoID = v.ID
		return tx.Where("id = ?", interactionID).Delete(&InteractionPoint{}).Error
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, videoID)
	return nil
}
