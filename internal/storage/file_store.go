package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Record представляет строку в JSON-файле хранилища
type Record struct {
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}

// FileStore реализует интерфейс Store поверх файла JSON-строк.
// Каждая запись дописывается в конец файла, при чтении побеждает последняя запись по ключу.
type FileStore struct {
	store    map[string]string
	filePath string
	logger   *zap.Logger
	mutex    sync.RWMutex
	closed   bool
}

// NewFileStore создаёт новый экземпляр FileStore и загружает существующий файл
func NewFileStore(filePath string, logger *zap.Logger) (*FileStore, error) {
	s := &FileStore{
		store:    make(map[string]string),
		filePath: filePath,
		logger:   logger,
	}

	// Создаём директорию, если не существует
	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record Record
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			// Пропускаем некорректные строки и логируем это
			s.logger.Warn("Skipping invalid JSON line", zap.String("line", string(scanner.Bytes())), zap.Error(err))
			continue
		}
		if record.Deleted {
			delete(s.store, record.Key)
			continue
		}
		s.store[record.Key] = record.Value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return s, nil
}

// Get возвращает значение по ключу, если оно существует
func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.closed {
		return "", false, ErrClosed
	}
	value, exists := s.store[key]
	return value, exists, nil
}

// Set дописывает запись в файл и обновляет память только после успешной записи
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.appendRecords(Record{Key: key, Value: value}); err != nil {
		return err
	}
	s.store[key] = value
	return nil
}

// Delete дописывает в файл отметки удаления для существующих ключей
func (s *FileStore) Delete(_ context.Context, keys ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return ErrClosed
	}
	var records []Record
	for _, key := range keys {
		if _, exists := s.store[key]; exists {
			records = append(records, Record{Key: key, Deleted: true})
		}
	}
	if len(records) == 0 {
		return nil
	}
	if err := s.appendRecords(records...); err != nil {
		return err
	}
	for _, record := range records {
		delete(s.store, record.Key)
	}
	return nil
}

// Compact перезаписывает файл актуальным состоянием без истории
func (s *FileStore) Compact() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return ErrClosed
	}

	keys := make([]string, 0, len(s.store))
	for key := range s.store {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), filepath.Base(s.filePath)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, key := range keys {
		data, err := json.Marshal(Record{Key: key, Value: s.store[key]})
		if err != nil {
			tmp.Close()
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.filePath)
}

// Close сжимает файл и закрывает хранилище
func (s *FileStore) Close() error {
	if err := s.Compact(); err != nil && !errors.Is(err, ErrClosed) {
		s.logger.Warn("Failed to compact storage file", zap.String("path", s.filePath), zap.Error(err))
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closed = true
	return nil
}

// appendRecords дописывает записи в файл; вызывается под мьютексом
func (s *FileStore) appendRecords(records ...Record) error {
	file, err := os.OpenFile(s.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		data = append(data, '\n')
		if _, err := file.Write(data); err != nil {
			return err
		}
	}
	return file.Sync()
}
