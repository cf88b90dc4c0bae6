// Package services – ItemService
//
// ItemService manages the content items that plans are locked onto. It
// normalizes titles and topics and coordinates repository calls for create,
// read, and paginated listing.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-certified-backend/internal/domain"
)

// ItemRepo defines the repository contract required by ItemService and
// PlanService.
type ItemRepo interface {
	// CreateItem inserts a new unlocked item.
	CreateItem(ctx context.Context, db *gorm.DB, title, topic string, sourceURL *string) (*domain.Item, error)

	// GetItem fetches an item by ID.
	GetItem(ctx context.Context, db *gorm.DB, id string) (*domain.Item, error)

	// CountItems returns the total number of items for pagination.
	CountItems(ctx context.Context, db *gorm.DB) (int64, error)

	// ListItemsPage returns a page of items, newest first.
	ListItemsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Item, error)

	// SetItemLock stores a lock, the canonical plan, and decision notes.
	SetItemLock(ctx context.Context, db *gorm.DB, id string, lock domain.Lock, planJSON, notes string) error

	// ItemsStats returns the item count and the latest update time.
	ItemsStats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error)
}

// ItemService provides item-level operations.
type ItemService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the item repository used by this service.
	Repo ItemRepo

	// TitleMaxLen caps stored titles and topics by rune length.
	TitleMaxLen int
}

// NewItemService constructs an ItemService with default limits.
func NewItemService(db *gorm.DB, r ItemRepo) *ItemService {
	return &ItemService{DB: db, Repo: r, TitleMaxLen: 200}
}

// Create inserts a new item. The topic is required; a blank title falls
// back to the topic.
func (s *ItemService) Create(ctx context.Context, title, topic string, sourceURL *string) (*domain.Item, error) {
	topic = normalizeTitle(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	title = normalizeTitle(title)
	if title == "" {
		title = topic
	}
	if sourceURL != nil {
		u := strings.TrimSpace(*sourceURL)
		if u == "" {
			sourceURL = nil
		} else {
			sourceURL = &u
		}
	}
	return s.Repo.CreateItem(ctx, s.DB, s.clip(title), s.clip(topic), sourceURL)
}

// Get returns an item or ErrItemNotFound.
func (s *ItemService) Get(ctx context.Context, id string) (*domain.Item, error) {
	it, err := s.Repo.GetItem(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return it, nil
}

// ListPage returns a page of items and the total count. Invalid page or
// pageSize values fall back to defaults.
func (s *ItemService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Item, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountItems(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Item{}, 0, nil
	}

	items, err := s.Repo.ListItemsPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// Stats returns the item count and latest update time, used for list ETags.
func (s *ItemService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return s.Repo.ItemsStats(ctx, s.DB)
}

// clip truncates to the configured maximum rune length.
func (s *ItemService) clip(v string) string {
	if s.TitleMaxLen > 0 && utf8.RuneCountInString(v) > s.TitleMaxLen {
		return string([]rune(v)[:s.TitleMaxLen])
	}
	return v
}

// normalizeTitle trims whitespace and collapses multiple spaces to one.
func normalizeTitle(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)
