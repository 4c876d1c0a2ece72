package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"interviewer-ai/internal/config"
	"interviewer-ai/internal/session"
)

const logVersion = "1.0"

// CorruptLogError сигнализирует о нарушении журнала: пропуск или нарушение
// порядка номеров, либо нечитаемая запись. История никогда не усекается
// молча — поврежденная сессия не восстанавливается.
type CorruptLogError struct {
	Path   string
	Line   int
	Reason string
}

func (e *CorruptLogError) Error() string {
	return fmt.Sprintf("журнал %s: строка %d: %s", e.Path, e.Line, e.Reason)
}

// header — первая запись файла журнала: метаданные сессии и снапшот гайда.
// Все последующие строки — события с номерами от 1 без пропусков.
type header struct {
	Type      string                 `json:"type"`
	Version   string                 `json:"version"`
	SessionID string                 `json:"session_id"`
	SubjectID string                 `json:"subject_id"`
	CreatedAt time.Time              `json:"created_at"`
	Consent   config.ConsentStatus   `json:"consent"`
	Guide     *config.InterviewGuide `json:"guide"`
}

// Writer выполняет долговечную дозапись журнала одной сессии.
// Каждый Append сбрасывается на диск до возврата: событие, о котором
// Append отчитался, не теряется при падении процесса.
type Writer struct {
	mu      sync.Mutex
	f       *os.File
	path    string
	nextSeq int
}

func sessionPath(dir, id string) string {
	return filepath.Join(dir, fmt.Sprintf("session_%s.jsonl", id))
}

// Create создает файл журнала для только что запущенной сессии и пишет
// заголовок со снапшотом гайда
func Create(dir string, sess *session.Session) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", dir, err)
	}

	path := sessionPath(dir, sess.ID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла журнала %s: %w", path, err)
	}

	h := header{
		Type:      "session",
		Version:   logVersion,
		SessionID: sess.ID,
		SubjectID: sess.SubjectID,
		CreatedAt: sess.CreatedAt,
		Consent:   sess.Consent,
		Guide:     sess.Guide,
	}
	data, err := json.Marshal(h)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка сериализации заголовка: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка записи заголовка %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка сброса журнала %s: %w", path, err)
	}

	return &Writer{f: f, path: path, nextSeq: 1}, nil
}

// Append дописывает одно событие и сбрасывает его на диск до возврата.
// Событие с номером не по порядку отклоняется с CorruptLogError.
func (w *Writer) Append(ev session.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return fmt.Errorf("журнал %s закрыт", w.path)
	}
	if ev.Seq != w.nextSeq {
		return &CorruptLogError{
			Path:   w.path,
			Line:   w.nextSeq + 1,
			Reason: fmt.Sprintf("ожидался номер события %d, получен %d", w.nextSeq, ev.Seq),
		}
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("ошибка сериализации события: %w", err)
	}
	if _, err := w.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("ошибка записи события %d в %s: %w", ev.Seq, w.path, err)
	}
	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("ошибка сброса журнала %s: %w", w.path, err)
	}

	w.nextSeq++
	return nil
}

// Close закрывает файл журнала
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

// Path возвращает путь файла журнала
func (w *Writer) Path() string {
	return w.path
}

// List возвращает id всех сессий в директории
func List(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", dir, err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "session_") || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, "session_"), ".jsonl"))
	}
	return ids, nil
}
