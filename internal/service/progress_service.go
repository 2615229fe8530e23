// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"

	"pytutor-go/internal/apperr"
	"pytutor-go/internal/model"
	"pytutor-go/internal/repository"
)

// ProgressUpdate 是一次课程进度上报。
type ProgressUpdate struct {
	Lesson    string
	Completed bool
	Score     int
}

// BadgeUpdate 是一次徽章授予。
type BadgeUpdate struct {
	Name string
}

// UserData 汇总用户的整体进度与徽章。
type UserData struct {
	Progress float64       `json:"progress"`
	Badges   []model.Badge `json:"badges"`
}

// ProgressService 定义了学习进度相关的业务操作。
type ProgressService interface {
	// SaveProgress 更新进度和/或授予徽章，两者至少提供其一。
	SaveProgress(ctx context.Context, userID string, progress *ProgressUpdate, badge *BadgeUpdate) error
	// GetUserData 返回用户的整体进度（各课程分数均值，无记录时为 0）与徽章列表。
	GetUserData(ctx context.Context, userID string) (*UserData, error)
}

type progressService struct {
	repo repository.ProgressRepository
}

// NewProgressService 创建一个新的 ProgressService 实例。
func NewProgressService(repo repository.ProgressRepository) ProgressService {
	return &progressService{repo: repo}
}

// SaveProgress 按 (userID, lesson) / (userID, name) 幂等地 upsert 进度与徽章。
func (s *progressService) SaveProgress(ctx context.Context, userID string, progress *ProgressUpdate, badge *BadgeUpdate) error {
	if progress == nil && badge == nil {
		return apperr.NewValidation("progress 和 badge 至少需要提供一项")
	}

	if progress != nil {
		p := &model.Progress{
			UserID:    userID,
			Lesson:    progress.Lesson,
			Completed: progress.Completed,
			Score:     progress.Score,
		}
		if err := s.repo.UpsertProgress(ctx, p); err != nil {
			return err
		}
	}

	if badge != nil {
		b := &model.Badge{
			UserID: userID,
			Name:   badge.Name,
		}
		if err := s.repo.UpsertBadge(ctx, b); err != nil {
			return err
		}
	}

	return nil
}

// GetUserData 汇总整体进度与徽章。
func (s *progressService) GetUserData(ctx context.Context, userID string) (*UserData, error) {
	progresses, err := s.repo.FindProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := s.repo.FindBadgesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if badges == nil {
		badges = []model.Badge{}
	}

	var overall float64
	if len(progresses) > 0 {
		var total int
		for _, p := range progresses {
			total += p.Score
		}
		overall = float64(total) / float64(len(progresses))
	}

	return &UserData{Progress: overall, Badges: badges}, nil
}
