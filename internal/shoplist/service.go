package shoplist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/foodgram/internal/repository"
)

// DownloadObserver はダウンロードの記録先のインターフェース。
type DownloadObserver interface {
	ObserveShoppingListDownload(lines int)
}

// Report はダウンロード用に整形された買い物リスト。
type Report struct {
	Filename    string
	ContentType string
	Body        []byte
	Lines       int
}

// Service は買い物リストのダウンロードを提供する。
type Service struct {
	repo     repository.ShoppingListRepository
	observer DownloadObserver
	logger   *slog.Logger
}

// NewService はServiceを生成する。observerはnilでもよい。
func NewService(repo repository.ShoppingListRepository, observer DownloadObserver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, observer: observer, logger: logger}
}

// Export はユーザーの買い物リストを集計して指定形式で返す。
// 買い物リストが空の場合はヘッダ行のみのレポートを返す。
func (s *Service) Export(ctx context.Context, userID int64, format Format) (*Report, error) {
	rows, err := s.repo.ListCartIngredients(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("買い物リストの取得に失敗しました: %w", err)
	}

	lines := Aggregate(rows)
	body, err := Render(lines, format)
	if err != nil {
		return nil, err
	}

	if s.observer != nil {
		s.observer.ObserveShoppingListDownload(len(lines))
	}
	s.logger.Debug("shopping list exported",
		slog.Int64("user_id", userID),
		slog.Int("rows", len(rows)),
		slog.Int("lines", len(lines)),
		slog.String("format", string(format)),
	)

	return &Report{
		Filename:    format.Filename(),
		ContentType: format.ContentType(),
		Body:        body,
		Lines:       len(lines),
	}, nil
}
