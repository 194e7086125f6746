package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nara/internal/model"
	"nara/internal/repository"
	"nara/internal/storage"
	"nara/internal/validate"
)

const (
	defaultPer = 12
	maxPer     = 100
)

// ShowcaseInput is the create/edit form of a showcase entry.
type ShowcaseInput struct {
	Title       string   `json:"title" validate:"required,max=120"`
	Description string   `json:"description" validate:"max=2000"`
	URL         string   `json:"url" validate:"required,http_url,max=500"`
	RepoURL     string   `json:"repo_url" validate:"omitempty,http_url,max=500"`
	Tags        []string `json:"tags" validate:"max=8,dive,max=32"`
}

// ImageUpload is an optional screenshot attached to a create or update.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// ShowcaseQuery selects a page of the public gallery.
type ShowcaseQuery struct {
	Search string
	Tag    string
	Sort   string
	Limit  int
	Offset int
}

// ShowcaseListResult is the service-level DTO for paginated showcases.
type ShowcaseListResult struct {
	Items []model.Showcase `json:"data"`
	Total int              `json:"total"`
}

// ShowcaseService manages the showcase gallery.
type ShowcaseService interface {
	// List returns published entries only.
	List(ctx context.Context, q ShowcaseQuery) (*ShowcaseListResult, error)
	// ListMine returns the user's entries, published or not.
	ListMine(ctx context.Context, userID string, limit, offset int) (*ShowcaseListResult, error)
	// Get hides unpublished entries from everyone but the owner and admins.
	Get(ctx context.Context, viewer *model.User, id string) (*model.Showcase, error)
	Create(ctx context.Context, author *model.User, in ShowcaseInput, img *ImageUpload) (*model.Showcase, error)
	Update(ctx context.Context, actor *model.User, id string, in ShowcaseInput, img *ImageUpload) (*model.Showcase, error)
	Delete(ctx context.Context, actor *model.User, id string) error
	SetPublished(ctx context.Context, actor *model.User, id string, published bool) (*model.Showcase, error)
	Vote(ctx context.Context, voter *model.User, id string) (int, error)
	Unvote(ctx context.Context, voter *model.User, id string) (int, error)
	HasVoted(ctx context.Context, userID, id string) (bool, error)
	// ImageURL returns a presigned URL for the screenshot, or "" when there is none.
	ImageURL(ctx context.Context, s *model.Showcase) (string, error)
	// Image streams the screenshot from storage. The caller closes the reader.
	Image(ctx context.Context, s *model.Showcase) (io.ReadCloser, storage.ObjectInfo, error)
}

type showcaseService struct {
	repo  repository.ShowcaseRepository
	store storage.Storage
	log   zerolog.Logger
	now   func() time.Time
}

// NewShowcaseService constructs a new ShowcaseService.
func NewShowcaseService(repo repository.ShowcaseRepository, store storage.Storage, log zerolog.Logger) ShowcaseService {
	return &showcaseService{
		repo:  repo,
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPer
	}
	if limit > maxPer {
		limit = maxPer
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *showcaseService) List(ctx context.Context, q ShowcaseQuery) (*ShowcaseListResult, error) {
	limit, offset := pageBounds(q.Limit, q.Offset)
	sort := repository.SortNew
	if q.Sort == repository.SortTop {
		sort = repository.SortTop
	}
	res, err := s.repo.List(ctx, repository.ShowcaseFilter{
		PublishedOnly: true,
		Search:        strings.TrimSpace(q.Search),
		Tag:           normalizeTag(q.Tag),
		Sort:          sort,
		Page:          repository.PageQuery{Limit: limit, Offset: offset},
	})
	if err != nil {
		return nil, err
	}
	return &ShowcaseListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *showcaseService) ListMine(ctx context.Context, userID string, limit, offset int) (*ShowcaseListResult, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	limit, offset = pageBounds(limit, offset)
	res, err := s.repo.List(ctx, repository.ShowcaseFilter{
		UserID: userID,
		Sort:   repository.SortNew,
		Page:   repository.PageQuery{Limit: limit, Offset: offset},
	})
	if err != nil {
		return nil, err
	}
	return &ShowcaseListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *showcaseService) Get(ctx context.Context, viewer *model.User, id string) (*model.Showcase, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	sc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !sc.Published && !canManage(viewer, sc) {
		return nil, ErrNotFound
	}
	return sc, nil
}

func (s *showcaseService) Create(ctx context.Context, author *model.User, in ShowcaseInput, img *ImageUpload) (*model.Showcase, error) {
	if author == nil {
		return nil, ErrUnauthorized
	}
	in = normalizeInput(in)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	key, err := s.upload(ctx, img)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &model.Showcase{
		ID:          uuid.NewString(),
		UserID:      author.ID,
		Title:       in.Title,
		Description: in.Description,
		URL:         in.URL,
		RepoURL:     in.RepoURL,
		ImageKey:    key,
		Tags:        in.Tags,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return nil, s.rollback(ctx, key, err)
	}
	return created, nil
}

func (s *showcaseService) Update(ctx context.Context, actor *model.User, id string, in ShowcaseInput, img *ImageUpload) (*model.Showcase, error) {
	current, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	in = normalizeInput(in)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	key, err := s.upload(ctx, img)
	if err != nil {
		return nil, err
	}
	oldKey := current.ImageKey
	if key == "" {
		key = oldKey
	}

	current.Title = in.Title
	current.Description = in.Description
	current.URL = in.URL
	current.RepoURL = in.RepoURL
	current.Tags = in.Tags
	current.ImageKey = key

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		if key != oldKey {
			return nil, s.rollback(ctx, key, notFound(err))
		}
		return nil, notFound(err)
	}
	if oldKey != "" && key != oldKey {
		if err := s.store.Delete(ctx, oldKey); err != nil {
			s.log.Warn().Err(err).Str("key", oldKey).Msg("showcase_image_cleanup_failed")
		}
	}
	return updated, nil
}

func (s *showcaseService) Delete(ctx context.Context, actor *model.User, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return notFound(s.repo.SoftDelete(ctx, id))
}

func (s *showcaseService) SetPublished(ctx context.Context, actor *model.User, id string, published bool) (*model.Showcase, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	sc, err := s.repo.SetPublished(ctx, id, published)
	if err != nil {
		return nil, notFound(err)
	}
	return sc, nil
}

func (s *showcaseService) Vote(ctx context.Context, voter *model.User, id string) (int, error) {
	if err := s.votable(ctx, voter, id); err != nil {
		return 0, err
	}
	n, err := s.repo.Vote(ctx, id, voter.ID)
	if err != nil {
		return 0, notFound(err)
	}
	return n, nil
}

func (s *showcaseService) Unvote(ctx context.Context, voter *model.User, id string) (int, error) {
	if err := s.votable(ctx, voter, id); err != nil {
		return 0, err
	}
	n, err := s.repo.Unvote(ctx, id, voter.ID)
	if err != nil {
		return 0, notFound(err)
	}
	return n, nil
}

func (s *showcaseService) HasVoted(ctx context.Context, userID, id string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.repo.HasVoted(ctx, id, userID)
}

func (s *showcaseService) ImageURL(ctx context.Context, sc *model.Showcase) (string, error) {
	if sc == nil || sc.ImageKey == "" {
		return "", nil
	}
	return s.store.PresignGet(ctx, sc.ImageKey, storage.PresignTTL)
}

func (s *showcaseService) Image(ctx context.Context, sc *model.Showcase) (io.ReadCloser, storage.ObjectInfo, error) {
	if sc == nil || sc.ImageKey == "" {
		return nil, storage.ObjectInfo{}, ErrNotFound
	}
	body, info, err := s.store.Get(ctx, sc.ImageKey)
	if err != nil {
		return nil, storage.ObjectInfo{}, fmt.Errorf("get image %s: %w", sc.ImageKey, err)
	}
	if info.ContentType == "" {
		info.ContentType = storage.ContentTypeForExt(path.Ext(sc.ImageKey))
	}
	return body, info, nil
}

func (s *showcaseService) votable(ctx context.Context, voter *model.User, id string) error {
	if voter == nil {
		return ErrUnauthorized
	}
	if id == "" {
		return ErrIDRequired
	}
	sc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if !sc.Published {
		return ErrNotPublished
	}
	return nil
}

// owned loads a showcase the actor may modify.
func (s *showcaseService) owned(ctx context.Context, actor *model.User, id string) (*model.Showcase, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	sc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !canManage(actor, sc) {
		return nil, ErrForbidden
	}
	return sc, nil
}

func (s *showcaseService) upload(ctx context.Context, img *ImageUpload) (string, error) {
	if img == nil || img.Reader == nil {
		return "", nil
	}
	if img.Size > storage.MaxImageSize {
		return "", validate.Field("image", "must be at most 5 MB")
	}
	ext, err := storage.ImageExt(img.ContentType, img.Filename)
	if err != nil {
		return "", validate.Field("image", "must be a PNG, JPEG, GIF or WebP image")
	}
	key := storage.NewShowcaseKey(ext)
	if _, err := s.store.Put(ctx, key, img.Reader, storage.PutObjectOptions{
		Size:        img.Size,
		ContentType: storage.ContentTypeForExt(ext),
		Metadata:    map[string]string{"original-filename": img.Filename},
	}); err != nil {
		return "", fmt.Errorf("upload to storage: %w", err)
	}
	return key, nil
}

// rollback removes a freshly uploaded object after the database write failed.
func (s *showcaseService) rollback(ctx context.Context, key string, cause error) error {
	if key == "" {
		return cause
	}
	if delErr := s.store.Delete(ctx, key); delErr != nil {
		return fmt.Errorf("db save failed: %v; rollback delete failed: %v", cause, delErr)
	}
	if errors.Is(cause, ErrNotFound) {
		return cause
	}
	return fmt.Errorf("db save failed: %w", cause)
}

func canManage(u *model.User, sc *model.Showcase) bool {
	return u != nil && (sc.OwnedBy(u.ID) || u.IsAdmin())
}

func normalizeInput(in ShowcaseInput) ShowcaseInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.URL = strings.TrimSpace(in.URL)
	in.RepoURL = strings.TrimSpace(in.RepoURL)
	in.Tags = NormalizeTags(in.Tags)
	return in
}

// NormalizeTags lowercases, trims and de-duplicates tags, keeping their first-seen order.
// Commas split a single entry into several tags.
func NormalizeTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		for _, t := range strings.Split(r, ",") {
			t = normalizeTag(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
