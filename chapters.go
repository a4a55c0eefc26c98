package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChapterInput struct {
	Label     string  `json:"label" binding:"required"`
	Timestamp float64 `json:"timestamp"`
}

type ChapterPatch struct {
	Label     *string  `json:"label"`
	Timestamp *float64 `json:"timestamp"`
}

func (s *Service) ListChapters(ctx context.Context, who Identity, videoID string) ([]Chapter, error) {
	db := s.db.WithContext(ctx)
	if _, err := readableVideo(db, who, videoID); err != nil {
		return nil, err
	}
	var chs []Chapter
	if err := db.Where("video_id = ?", videoID).Order("sort_order, id").Find(&chs).Error; err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return chs, nil
}

func (s *Service) CreateChapter(ctx context.Context, who Identity, videoID string, in ChapterInput) (string, error) {
	ch := Chapter{
		ID:        uuid.New().String(),
		VideoID:   videoID,
		Label:     in.Label,
		Timestamp: in.Timestamp,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := authorize(tx, who, videoByID(videoID)); err != nil {
			return err
		}
		order, err := nextOrder(tx, &Chapter{}, "video_id", videoID)
		if err != nil {
			return err
		}
		ch.Order = order
		return tx.Create(&ch).Error
	})
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (s *Service) UpdateChapter(ctx context.Context, who Identity, chapterID string, patch ChapterPatch) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := authorize(tx, who, videoOfChapter(chapterID)); err != nil {
			return err
		}
		updates := map[string]any{}
		if patch.Label != nil {
			updates["label"] = *patch.Label
		}
		if patch.Timestamp != nil {
			updates["timestamp"] = *patch.Timestamp
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&Chapter{}).Where("id = ?", chapterID).Updates(updates).Error
	})
}

func (s *Service) DeleteChapter(ctx context.Context, who Identity, chapterID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := authorize(tx, who, videoOfChapter(chapterID)); err != nil {
			return err
		}
		return tx.Where("id = ?", chapterID).Delete(&Chapter{}).Error
	})
}

func (s *Service) ReorderChapters(ctx context.Context, who Identity, chapterIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := reorder(tx, who, &Chapter{}, chapterIDs, videoOfChapter)
		return err
	})
}
