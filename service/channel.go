package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"video-platform/dto"
	"video-platform/entities"
	"video-platform/pkg/metrics"
	"video-platform/pkg/storage"
	"video-platform/repository"
)

const (
	MinChannelNameLength = 3
	MaxChannelNameLength = 50
)

type ChannelService interface {
	Create(ctx context.Context, userId uuid.UUID, req dto.CreateChannelRequest) (*entities.Channel, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.Channel, error)
	GetMine(ctx context.Context, userId uuid.UUID) (*entities.Channel, error)
	Update(ctx context.Context, id, userId uuid.UUID, req dto.UpdateChannelRequest) (*entities.Channel, error)
	UploadAvatar(ctx context.Context, id, userId uuid.UUID, data []byte) (*entities.Channel, error)
	Delete(ctx context.Context, id, userId uuid.UUID) error
}

type channelService struct {
	repo    repository.Repository
	storage storage.Storage
}

func NewChannelService(repo repository.Repository, store storage.Storage) ChannelService {
	return &channelService{repo: repo, storage: store}
}

func validateChannelName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < MinChannelNameLength || n > MaxChannelNameLength {
		return "", validationError("channel name must be between %d and %d characters", MinChannelNameLength, MaxChannelNameLength)
	}
	return name, nil
}

func avatarPrefix(channelId uuid.UUID) string {
	return path.Join("avatars", channelId.String())
}

func (s *channelService) Create(ctx context.Context, userId uuid.UUID, req dto.CreateChannelRequest) (*entities.Channel, error) {
	name, err := validateChannelName(req.Name)
	if err != nil {
		return nil, err
	}
	if _, err := validateDescription(req.Description); err != nil {
		return nil, err
	}

	_, err = s.repo.FindChannelByUserId(ctx, userId)
	if err == nil {
		return nil, ErrChannelExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	channel := &entities.Channel{
		UserId:      userId,
		Name:        name,
		Description: req.Description,
	}
	if err := s.repo.CreateChannel(ctx, channel); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrChannelExists
		}
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("channel_id", channel.ID.String()).Msg("channel created")
	return channel, nil
}

func (s *channelService) Get(ctx context.Context, id uuid.UUID) (*entities.Channel, error) {
	channel, err := s.repo.FindChannelById(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("channel")
	}
	return channel, err
}

func (s *channelService) GetMine(ctx context.Context, userId uuid.UUID) (*entities.Channel, error) {
	channel, err := s.repo.FindChannelByUserId(ctx, userId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("channel")
	}
	return channel, err
}

func (s *channelService) findOwned(ctx context.Context, id, userId uuid.UUID, action string) (*entities.Channel, error) {
	channel, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if channel.UserId != userId {
		return nil, forbidden(action)
	}
	return channel, nil
}

func (s *channelService) Update(ctx context.Context, id, userId uuid.UUID, req dto.UpdateChannelRequest) (*entities.Channel, error) {
	if _, err := s.findOwned(ctx, id, userId, "update your own channel"); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name, err := validateChannelName(*req.Name)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if req.Description != nil {
		if _, err := validateDescription(req.Description); err != nil {
			return nil, err
		}
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return nil, validationError("nothing to update")
	}

	if err := s.repo.UpdateChannel(ctx, id, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("channel")
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *channelService) UploadAvatar(ctx context.Context, id, userId uuid.UUID, data []byte) (*entities.Channel, error) {
	channel, err := s.findOwned(ctx, id, userId, "change the avatar of your own channel")
	if err != nil {
		return nil, err
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return nil, validationError("avatar must be a jpeg, png or webp image")
	}

	key := storage.GenerateKey(avatarPrefix(id), "avatar"+mt.Extension())
	url, err := s.storage.Put(ctx, key, data, mt.String())
	if err != nil {
		metrics.StorageErrorsTotal.WithLabelValues("put").Inc()
		zerolog.Ctx(ctx).Error().Err(err).Str("channel_id", id.String()).Msg("failed to store avatar")
		return nil, fmt.Errorf("%w: could not store avatar", ErrUpstreamUnavailable)
	}

	if err := s.repo.UpdateChannel(ctx, id, map[string]any{
		"avatar_url": url,
		"avatar_key": key,
	}); err != nil {
		_ = s.storage.Delete(ctx, key)
		return nil, err
	}
	if channel.AvatarKey != "" {
		if err := s.storage.Delete(ctx, channel.AvatarKey); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("key", channel.AvatarKey).Msg("failed to delete previous avatar")
		}
	}

	return s.Get(ctx, id)
}

// Delete removes the channel with all of its videos. Stored files are removed best effort.
func (s *channelService) Delete(ctx context.Context, id, userId uuid.UUID) error {
	if _, err := s.findOwned(ctx, id, userId, "delete your own channel"); err != nil {
		return err
	}

	videoIds, err := s.repo.FindVideoIdsByChannel(ctx, id)
	if err != nil {
		return err
	}
	prefixes := []string{avatarPrefix(id) + "/"}
	for _, videoId := range videoIds {
		prefixes = append(prefixes, entities.VideoStoragePrefix(videoId))
	}
	for _, prefix := range prefixes {
		if err := s.storage.DeletePrefix(ctx, prefix); err != nil {
			metrics.StorageErrorsTotal.WithLabelValues("delete").Inc()
			zerolog.Ctx(ctx).Warn().Err(err).Str("prefix", prefix).Msg("failed to delete stored objects")
		}
	}

	if err := s.repo.DeleteChannel(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("channel")
		}
		return err
	}

	zerolog.Ctx(ctx).Info().Str("channel_id", id.String()).Int("videos", len(videoIds)).Msg("channel deleted")
	return nil
}
