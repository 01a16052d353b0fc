package storage

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/talent-sift/internal/pkg/apperror"
)

// sniffLen - сколько байт читаем для определения типа (docx распознаётся по содержимому zip).
const sniffLen = 8192

// parallelSaves ограничивает число одновременно записываемых файлов одного запуска.
const parallelSaves = 4

var allowedResumeTypes = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"rtf":  "application/rtf",
	"txt":  "text/plain",
}

// ErrUnsupportedResume - файл не похож на резюме допустимого формата.
var ErrUnsupportedResume = apperror.New(apperror.ErrCodeValidation, "Unsupported resume format (allowed: pdf, doc, docx, rtf, txt)")

// Upload - резюме из формы до сохранения.
type Upload struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// StoredResume - сохранённое резюме. Path относителен корня хранилища.
type StoredResume struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// ResumeStorage отвечает за файловое хранилище резюме.
type ResumeStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewResumeStorage создаёт файловое хранилище.
func NewResumeStorage(rootPath string, maxUploadMB int64) (*ResumeStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &ResumeStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save проверяет формат и сохраняет файл в каталог запуска.
func (s *ResumeStorage) Save(ctx context.Context, runID, originalName string, r io.Reader) (StoredResume, error) {
	if err := ctx.Err(); err != nil {
		return StoredResume{}, err
	}

	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return StoredResume{}, fmt.Errorf("storage: ошибка чтения файла: %w", err)
	}

	safeName := sanitizeFilename(originalName)
	contentType, ok := DetectResumeType(head, safeName)
	if !ok {
		return StoredResume{}, ErrUnsupportedResume
	}

	runDir := filepath.Join(s.rootPath, sanitizeFilename(runID))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return StoredResume{}, fmt.Errorf("storage: не удалось создать каталог запуска: %w", err)
	}

	fileName := fmt.Sprintf("%d_%s", time.Now().UnixNano(), safeName)
	targetPath := filepath.Join(runDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return StoredResume{}, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: br, N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return StoredResume{}, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return StoredResume{}, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("Resume %s exceeds %d bytes", safeName, s.maxUploadBytes))
	}

	if err := f.Close(); err != nil {
		return StoredResume{}, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		return StoredResume{}, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return StoredResume{
		Name:        safeName,
		Path:        filepath.Join(sanitizeFilename(runID), fileName),
		Size:        written,
		ContentType: contentType,
	}, nil
}

// SaveAll сохраняет резюме запуска параллельно. Порядок результата совпадает с входным.
// При ошибке уже сохранённые файлы удаляются.
func (s *ResumeStorage) SaveAll(ctx context.Context, runID string, uploads []Upload) ([]StoredResume, error) {
	stored := make([]StoredResume, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelSaves)
	for i, u := range uploads {
		i, u := i, u
		g.Go(func() error {
			rc, err := u.Open()
			if err != nil {
				return fmt.Errorf("storage: не удалось открыть %s: %w", u.Name, err)
			}
			defer rc.Close()

			res, err := s.Save(gctx, runID, u.Name, rc)
			if err != nil {
				return err
			}
			stored[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, res := range stored {
			if res.Path != "" {
				_ = s.Delete(context.Background(), res.Path)
			}
		}
		return nil, err
	}
	return stored, nil
}

// Open открывает сохранённый файл на чтение.
func (s *ResumeStorage) Open(relativePath string) (io.ReadCloser, error) {
	f, err := os.Open(s.resolve(relativePath))
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось открыть файл: %w", err)
	}
	return f, nil
}

// Delete удаляет файл из хранилища.
func (s *ResumeStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.resolve(relativePath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

func (s *ResumeStorage) resolve(relativePath string) string {
	return filepath.Join(s.rootPath, filepath.Clean("/"+relativePath))
}

// DetectResumeType определяет MIME по содержимому. Текст принимается только по расширению .txt.
func DetectResumeType(head []byte, name string) (string, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")

	kind, err := filetype.Match(head)
	if err == nil && kind != filetype.Unknown {
		if mime, ok := allowedResumeTypes[kind.Extension]; ok {
			return mime, true
		}
		// Старые сборки docx распознаются просто как zip.
		if kind.Extension == "zip" && ext == "docx" {
			return allowedResumeTypes["docx"], true
		}
		return "", false
	}

	if bytes.HasPrefix(head, []byte("{\\rtf")) {
		return allowedResumeTypes["rtf"], true
	}
	if ext == "txt" && len(head) > 0 && bytes.IndexByte(head, 0) < 0 {
		return allowedResumeTypes["txt"], true
	}
	return "", false
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" || name == "." {
		name = "resume"
	}
	return name
}
