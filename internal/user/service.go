// Package user はプロフィール管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/unimart/internal/model"
	"github.com/hitoshi/unimart/internal/repository"
)

// TextSanitizer はプロフィール文字列のサニタイズインターフェース。
type TextSanitizer interface {
	Sanitize(input string) string
}

// Service はプロフィール管理のサービス層。
type Service struct {
	userRepo  repository.UserRepository
	sanitizer TextSanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, sanitizer TextSanitizer) *Service {
	return &Service{
		userRepo:  userRepo,
		sanitizer: sanitizer,
	}
}

// UpdateProfile はプロフィールの部分更新を行う。nilフィールドは変更しない。
// 変更できるのは表示名・電話番号・Instagramのみ。メールアドレスと学籍番号、
// 既存出品の出品者スナップショットには影響しない。
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch model.ProfilePatch) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	if patch.Name != nil {
		name := s.sanitizer.Sanitize(*patch.Name)
		if name == "" {
			return nil, model.NewMissingFieldError("表示名")
		}
		user.Name = name
	}
	if patch.Phone != nil {
		user.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Instagram != nil {
		user.Instagram = s.sanitizer.Sanitize(strings.TrimPrefix(*patch.Instagram, "@"))
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
	}

	slog.Info("profile updated", slog.String("user_id", userID))
	return user, nil
}
