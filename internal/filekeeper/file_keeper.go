package filekeeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/drstein77/ordercalc/internal/models"
)

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

type document struct {
	Products []models.Product `json:"products"`
	History  []models.Order   `json:"history"`
	Theme    string           `json:"theme,omitempty"`
}

// FileKeeper stores everything in one JSON document. Each save rewrites the
// whole file through a temporary file and a rename.
type FileKeeper struct {
	mx   sync.Mutex
	path string
	log  Log
}

func NewFileKeeper(path string, log Log) (*FileKeeper, error) {
	if path == "" {
		return nil, errors.New("data file path is empty")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	log.Info("Using data file", zap.String("path", path))
	return &FileKeeper{path: path, log: log}, nil
}

func (kp *FileKeeper) LoadProducts(_ context.Context) ([]models.Product, error) {
	doc, err := kp.read()
	if err != nil {
		return nil, err
	}
	return doc.Products, nil
}

func (kp *FileKeeper) SaveProducts(_ context.Context, products []models.Product) error {
	return kp.update(func(doc *document) { doc.Products = products })
}

func (kp *FileKeeper) LoadHistory(_ context.Context) ([]models.Order, error) {
	doc, err := kp.read()
	if err != nil {
		return nil, err
	}
	return doc.History, nil
}

func (kp *FileKeeper) SaveHistory(_ context.Context, history []models.Order) error {
	return kp.update(func(doc *document) { doc.History = history })
}

func (kp *FileKeeper) LoadTheme(_ context.Context) (string, error) {
	doc, err := kp.read()
	if err != nil {
		return "", err
	}
	return doc.Theme, nil
}

func (kp *FileKeeper) SaveTheme(_ context.Context, theme string) error {
	return kp.update(func(doc *document) { doc.Theme = theme })
}

// Ping reports whether the data file directory is writable.
func (kp *FileKeeper) Ping(_ context.Context) bool {
	f, err := os.CreateTemp(filepath.Dir(kp.path), ".ping-*")
	if err != nil {
		kp.log.Error("Data directory is not writable", zap.Error(err))
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

func (kp *FileKeeper) Close() bool {
	kp.log.Info("Data file closed", zap.String("path", kp.path))
	return true
}

func (kp *FileKeeper) read() (document, error) {
	kp.mx.Lock()
	defer kp.mx.Unlock()
	return kp.readLocked()
}

func (kp *FileKeeper) readLocked() (document, error) {
	var doc document
	data, err := os.ReadFile(kp.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("failed to read data file: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to decode data file: %w", err)
	}
	return doc, nil
}

func (kp *FileKeeper) update(apply func(*document)) error {
	kp.mx.Lock()
	defer kp.mx.Unlock()

	doc, err := kp.readLocked()
	if err != nil {
		return err
	}
	apply(&doc)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode data file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(kp.path), filepath.Base(kp.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.Rename(tmp.Name(), kp.path); err != nil {
		return fmt.Errorf("failed to replace data file: %w", err)
	}
	return nil
}
