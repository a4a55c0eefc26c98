package main

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// DeleteVideo removes the video and everything hanging off it, then releases
// its media blobs (video file, thumbnail, question media).
func (s *Service) DeleteVideo(ctx context.Context, who Identity, videoID string) error {
	var release []*string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := authorize(tx, who, videoByID(videoID))
		if err != nil {
			return err
		}
		release = append(release, v.StorageID, v.ThumbnailStorageID)

		if err := tx.Where("video_id = ?", v.ID).Delete(&Chapter{}).Error; err != nil {
			return fmt.Errorf("delete chapters: %w", err)
		}

		var questions []Question
		if err := tx.Select("id", "media_storage_id").Where("video_id = ?", v.ID).Find(&questions).Error; err != nil {
			return fmt.Errorf("load questions: %w", err)
		}
		questionIDs := make([]string, 0, len(questions))
		for _, q := range questions {
			questionIDs = append(questionIDs, q.ID)
			release = append(release, q.MediaStorageID)
		}
		if err := deleteQuestionRows(tx, questionIDs); err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", v.ID).Delete(&InteractionPoint{}).Error; err != nil {
			return fmt.Errorf("delete interaction points: %w", err)
		}

		var sessionIDs []string
		if err := tx.Model(&ViewerSession{}).Where("video_id = ?", v.ID).Pluck("id", &sessionIDs).Error; err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}
		if len(sessionIDs) > 0 {
			if err := tx.Where("session_id IN ?", sessionIDs).Delete(&SessionAnswer{}).Error; err != nil {
				return fmt.Errorf("delete session answers: %w", err)
			}
		}
		if err := tx.Where("video_id = ?", v.ID).Delete(&ViewerSession{}).Error; err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}

		if err := tx.Where("id = ?", v.ID).Delete(&Video{}).Error; err != nil {
			return fmt.Errorf("delete video: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, videoID)
	s.releaseBlobs(ctx, release...)
	s.log.Info().Str("video_id", videoID).Int("blobs", countSet(release)).Msg("video deleted")
	return nil
}

// DeleteQuestion removes the question, its answer options and every
// interaction point that references it. Sibling questions are untouched.
func (s *Service) DeleteQuestion(ctx context.Context, who Identity, questionID string) error {
	var (
		videoID string
		media   *string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := authorize(tx, who, videoOfQuestion(questionID))
		if err != nil {
			return err
		}
		videoID = v.ID

		var q Question
		if err := tx.Select("id", "media_storage_id").First(&q, "id = ?", questionID).Error; err != nil {
			return notFoundOr(err, "question")
		}
		media = q.MediaStorageID

		if err := tx.Where("question_id = ?", questionID).Delete(&InteractionPoint{}).Error; err != nil {
			return fmt.Errorf("delete interaction points: %w", err)
		}
		return deleteQuestionRows(tx, []string{questionID})
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, videoID)
	s.releaseBlobs(ctx, media)
	return nil
}

// deleteQuestionRows deletes the questions and their answer options.
func deleteQuestionRows(tx *gorm.DB, questionIDs []string) error {
	if len(questionIDs) == 0 {
		return nil
	}
	if err := tx.Where("question_id IN ?", questionIDs).Delete(&AnswerOption{}).Error; err != nil {
		return fmt.Errorf("delete answer options: %w", err)
	}
	if err := tx.Where("id IN ?", questionIDs).Delete(&Question{}).Error; err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	return nil
}

func countSet(ids []*string) int {
	n := 0
	for _, id := range ids {
		if id != nil && *id != "" {
			n++
		}
	}
	return n
}
