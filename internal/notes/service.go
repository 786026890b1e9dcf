package notes

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/mind-engage/studyhub/internal/logger"
	"github.com/mind-engage/studyhub/internal/storage"
)

// UploadPrefix is the blob key prefix and URL path for stored files.
const UploadPrefix = "uploads"

var allowedTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"text/plain": ".txt",
}

// sniffed containers some generators produce for otherwise valid files
var containerOf = map[string]string{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "application/zip",
	"application/msword": "application/x-ole-storage",
}

func baseType(contentType string) string {
	return strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
}

// AllowedType reports whether a declared content type may be uploaded.
// Parameters such as "; charset=utf-8" are ignored.
func AllowedType(contentType string) bool {
	_, ok := allowedTypes[baseType(contentType)]
	return ok
}

// sniff checks the leading bytes against the declared type and returns a
// reader that still yields the whole body.
func sniff(declared string, body io.Reader) (io.Reader, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]
	got := mimetype.Detect(head)
	want := baseType(declared)
	if !detectedAs(got, want) && !(containerOf[want] != "" && detectedAs(got, containerOf[want])) {
		return nil, ErrInvalidType
	}
	return io.MultiReader(bytes.NewReader(head), body), nil
}

// detectedAs reports whether m or one of its parents is want, so a CSV still
// counts as text/plain.
func detectedAs(m *mimetype.MIME, want string) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(want) {
			return true
		}
	}
	return false
}

type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Title       string
	Summary     string
	Category    string
	Student     string
	OwnerID     string
}

type Service struct {
	Store     Store
	Blobs     storage.BlobStore
	PublicURL string
	Log       *logger.Logger
	Now       func() time.Time
}

func NewService(store Store, blobs storage.BlobStore, publicURL string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		Store:     store,
		Blobs:     blobs,
		PublicURL: strings.TrimSuffix(publicURL, "/"),
		Log:       log,
		Now:       time.Now,
	}
}

// Upload stores the file and records a pending note for it.
func (s *Service) Upload(ctx context.Context, in Upload, body io.Reader) (Note, error) {
	if body == nil || in.FileName == "" {
		return Note{}, ErrNoFile
	}
	if !AllowedType(in.ContentType) {
		return Note{}, ErrInvalidType
	}
	body, err := sniff(in.ContentType, body)
	if err != nil {
		return Note{}, err
	}
	original := safeName(in.FileName)
	stored := uuid.NewString() + "-" + original
	key := path.Join(UploadPrefix, stored)
	if _, err := s.Blobs.Put(key, body); err != nil {
		return Note{}, err
	}

	now := s.Now()
	n := Note{
		ID:         uuid.NewString(),
		Title:      orDefault(in.Title, strings.TrimSuffix(original, filepath.Ext(original))),
		Type:       baseType(in.ContentType),
		Size:       humanize.IBytes(uint64(max(in.Size, 0))),
		UploadDate: now.UTC().Format("2006-01-02"),
		Summary:    orDefault(in.Summary, DefaultSummary),
		Category:   orDefault(in.Category, DefaultCategory),
		FileURL:    s.PublicURL + "/" + key,
		FileName:   stored,
		Student:    orDefault(in.Student, DefaultStudent),
		OwnerID:    in.OwnerID,
		Status:     StatusPending,
		CreatedAt:  now.Unix(),
		UpdatedAt:  now.Unix(),
	}
	if err := s.Store.Create(ctx, n); err != nil {
		if derr := s.Blobs.Delete(key); derr != nil {
			s.Log.Warn("orphaned upload", "key", key, "err", derr)
		}
		return Note{}, err
	}
	s.Log.Info("note uploaded", "id", n.ID, "student", n.Student, "size", n.Size)
	return n, nil
}

// Delete removes a note and its file. Owners may delete their own pending
// notes; anyAllowed lifts both restrictions.
func (s *Service) Delete(ctx context.Context, id, callerID string, anyAllowed bool) error {
	n, err := s.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !anyAllowed && (callerID == "" || n.OwnerID != callerID || n.Status != StatusPending) {
		return ErrForbidden
	}
	if err := s.Blobs.Delete(path.Join(UploadPrefix, n.FileName)); err != nil && !errors.Is(err, storage.ErrBadKey) {
		return err
	}
	return s.Store.Delete(ctx, id)
}

// Open returns a stored upload by its file name.
func (s *Service) Open(name string) (io.ReadCloser, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, storage.ErrBadKey
	}
	return s.Blobs.Get(path.Join(UploadPrefix, name))
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.Store.Stats(ctx, StartOfDay(s.Now()))
}

func safeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == '/' {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
