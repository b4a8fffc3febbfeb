package offers

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventmarket/backend/internal/access"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
	"github.com/eventmarket/backend/pkg/storage"
)

// Attachments is the object storage used for offer files. *storage.S3 implements it.
type Attachments interface {
	AttachmentsBucket() string
	PresignExpire() time.Duration
	GeneratePresignedUploadURL(ctx context.Context, bucket, key, contentType string, expires time.Duration) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, contentLength int64) (string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)
}

// UploadURL is a presigned PUT for one attachment.
type UploadURL struct {
	UploadURL   string `json:"uploadUrl"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	ExpiresIn   int    `json:"expiresIn"`
}

// DownloadURL is a presigned GET for one attachment.
type DownloadURL struct {
	DownloadURL string `json:"downloadUrl"`
	Key         string `json:"key"`
	ExpiresIn   int    `json:"expiresIn"`
}

// Attachment describes a stored offer file.
type Attachment struct {
	Key         string `json:"key"`
	Location    string `json:"location,omitempty"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Filename    string `json:"filename"`
}

// WithAttachments enables offer attachments backed by files.
func (s *Service) WithAttachments(files Attachments) *Service {
	s.files = files
	return s
}

func (s *Service) attachmentsEnabled() error {
	if s.files == nil {
		return apperr.New(apperr.Unavailable, "attachment storage is not configured")
	}
	return nil
}

// ownOffer loads an offer of eventID that belongs to the calling provider.
func (s *Service) ownOffer(ctx context.Context, actor access.Actor, eventID, offerID uuid.UUID) (*models.EventOffer, error) {
	o, err := s.offerInEvent(ctx, eventID, offerID)
	if err != nil {
		return nil, err
	}
	if err := access.IsOfferProvider(actor, o); err != nil {
		return nil, err
	}
	return o, nil
}

func checkFile(filename, contentType string, size int64) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", apperr.BadRequestf("filename is required")
	}
	if size > storage.MaxAttachmentSize {
		return "", apperr.BadRequestf("file size exceeds 10MB limit")
	}
	if !storage.ValidateAttachmentType(contentType, filename) {
		return "", apperr.BadRequestf("invalid file type: only pdf, images, csv, xlsx and docx are allowed")
	}
	if _, ok := storage.AllowedAttachmentTypes[strings.ToLower(contentType)]; ok {
		return strings.ToLower(contentType), nil
	}
	return storage.ContentTypeForFilename(filename), nil
}

// AttachmentUploadURL presigns an upload for an attachment of the provider's own offer.
func (s *Service) AttachmentUploadURL(ctx context.Context, actor access.Actor, eventID, offerID uuid.UUID,
	filename, contentType string, size int64) (*UploadURL, error) {
	if err := s.attachmentsEnabled(); err != nil {
		return nil, err
	}
	if _, err := s.ownOffer(ctx, actor, eventID, offerID); err != nil {
		return nil, err
	}
	ct, err := checkFile(filename, contentType, size)
	if err != nil {
		return nil, err
	}
	key := storage.OfferAttachmentKey(eventID.String(), offerID.String(), filename, s.now())
	expire := s.files.PresignExpire()
	url, err := s.files.GeneratePresignedUploadURL(ctx, s.files.AttachmentsBucket(), key, ct, expire)
	if err != nil {
		s.logger.Error("presign upload failed", zap.Error(err), zap.String("key", key))
		return nil, apperr.Wrap(apperr.Unavailable, err, "attachment storage unavailable")
	}
	return &UploadURL{UploadURL: url, Key: key, ContentType: ct, ExpiresIn: int(expire.Seconds())}, nil
}

// UploadAttachment stores an attachment server-side.
func (s *Service) UploadAttachment(ctx context.Context, actor access.Actor, eventID, offerID uuid.UUID,
	filename, contentType string, size int64, body io.Reader) (*Attachment, error) {
	if err := s.attachmentsEnabled(); err != nil {
		return nil, err
	}
	if _, err := s.ownOffer(ctx, actor, eventID, offerID); err != nil {
		return nil, err
	}
	ct, err := checkFile(filename, contentType, size)
	if err != nil {
		return nil, err
	}
	key := storage.OfferAttachmentKey(eventID.String(), offerID.String(), filename, s.now())
	loc, err := s.files.Upload(ctx, s.files.AttachmentsBucket(), key, ct, body, size)
	if err != nil {
		s.logger.Error("attachment upload failed", zap.Error(err), zap.String("key", key))
		return nil, apperr.Wrap(apperr.Unavailable, err, "failed to upload file to storage")
	}
	return &Attachment{Key: key, Location: loc, ContentType: ct, Size: size, Filename: filename}, nil
}

// AttachmentDownloadURL presigns a download. The event's manager and the offer's provider may read.
func (s *Service) AttachmentDownloadURL(ctx context.Context, actor access.Actor, eventID, offerID uuid.UUID, key string) (*DownloadURL, error) {
	if err := s.attachmentsEnabled(); err != nil {
		return nil, err
	}
	o, err := s.offerInEvent(ctx, eventID, offerID)
	if err != nil {
		return nil, err
	}
	if access.IsOfferProvider(actor, o) != nil {
		event, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if err := access.CanManageEvent(actor, event); err != nil {
			return nil, err
		}
	}
	if !strings.HasPrefix(key, storage.OfferAttachmentPrefix(eventID.String(), offerID.String())) {
		return nil, apperr.NotFoundf("attachment not found")
	}
	bucket := s.files.AttachmentsBucket()
	exists, err := s.files.ObjectExists(ctx, bucket, key)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, err, "attachment storage unavailable")
	}
	if !exists {
		return nil, apperr.NotFoundf("attachment not found")
	}
	expire := s.files.PresignExpire()
	url, err := s.files.GeneratePresignedDownloadURL(ctx, bucket, key, expire)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, err, "attachment storage unavailable")
	}
	return &DownloadURL{DownloadURL: url, Key: key, ExpiresIn: int(expire.Seconds())}, nil
}

// DeleteAttachment removes an attachment of the provider's own offer.
func (s *Service) DeleteAttachment(ctx context.Context, actor access.Actor, eventID, offerID uuid.UUID, key string) error {
	if err := s.attachmentsEnabled(); err != nil {
		return err
	}
	if _, err := s.ownOffer(ctx, actor, eventID, offerID); err != nil {
		return err
	}
	if !strings.HasPrefix(key, storage.OfferAttachmentPrefix(eventID.String(), offerID.String())) {
		return apperr.NotFoundf("attachment not found")
	}
	if err := s.files.DeleteObject(ctx, s.files.AttachmentsBucket(), key); err != nil {
		return apperr.Wrap(apperr.Unavailable, err, "attachment storage unavailable")
	}
	return nil
}
