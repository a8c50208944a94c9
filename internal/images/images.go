// Package images uploads raw images to blob storage and announces each
// upload with a BlobCreated event so the webhook can classify it.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/glimpse/internal/events"
	"github.com/JaimeStill/glimpse/pkg/formatting"
	"github.com/JaimeStill/glimpse/pkg/storage"
)

// ErrPublish indicates the blob was stored but the notification failed.
var ErrPublish = errors.New("publish blob created event")

// Upload describes a stored image.
type Upload struct {
	Container string `json:"container"`
	Blob      string `json:"blob"`
	EventID   string `json:"event_id"`
	Size      int    `json:"size"`
}

// System stores images and publishes their BlobCreated events.
type System struct {
	blobs     storage.System
	publisher events.Publisher
	logger    *slog.Logger
}

// New creates an image System.
func New(blobs storage.System, publisher events.Publisher, logger *slog.Logger) *System {
	return &System{
		blobs:     blobs,
		publisher: publisher,
		logger:    logger.With("system", "images"),
	}
}

// Upload writes data to container/key and publishes a BlobCreated event.
// An empty container selects the configured default.
func (s *System) Upload(ctx context.Context, container, key string, data []byte) (*Upload, error) {
	target := s.blobs.In(container)

	if err := target.Upload(ctx, key, bytes.NewReader(data), http.DetectContentType(data)); err != nil {
		return nil, err
	}

	ev, err := events.NewBlobCreated(target.Container(), key)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPublish, err)
	}

	s.logger.Info(
		"image uploaded",
		"container", target.Container(),
		"blob", key,
		"size", formatting.FormatBytes(int64(len(data)), 1),
		"event_id", ev.ID,
	)

	return &Upload{
		Container: target.Container(),
		Blob:      key,
		EventID:   ev.ID,
		Size:      len(data),
	}, nil
}

// Open returns a reader for a stored image. The caller must close it.
func (s *System) Open(ctx context.Context, container, key string) (io.ReadCloser, error) {
	return s.blobs.In(container).Download(ctx, key)
}
