package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"interviewer-ai/internal/session"
)

// LoadSession восстанавливает сессию, проигрывая журнал событий с записи 1
// в порядке номеров. Это единственный механизм восстановления: отдельного
// формата снапшота состояния нет.
func LoadSession(dir, id string) (*session.Session, error) {
	path := sessionPath(dir, id)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия журнала %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("ошибка чтения журнала %s: %w", path, err)
		}
		return nil, &CorruptLogError{Path: path, Line: 1, Reason: "отсутствует заголовок"}
	}
	var h header
	if err := json.Unmarshal(scanner.Bytes(), &h); err != nil {
		return nil, &CorruptLogError{Path: path, Line: 1, Reason: fmt.Sprintf("нечитаемый заголовок: %v", err)}
	}
	if h.Type != "session" || h.Guide == nil {
		return nil, &CorruptLogError{Path: path, Line: 1, Reason: "заголовок не является записью сессии"}
	}

	// Заголовок пишется сразу после успешного старта, поэтому базовое
	// состояние восстановленной сессии — awaiting_question на позиции (0,0)
	sess := session.New(h.SessionID, h.SubjectID, h.Consent, h.Guide)
	sess.CreatedAt = h.CreatedAt
	sess.State = session.StateAwaitingQuestion

	line := 1
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev session.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, &CorruptLogError{Path: path, Line: line, Reason: fmt.Sprintf("нечитаемое событие: %v", err)}
		}
		if ev.Seq != sess.NextSeq() {
			return nil, &CorruptLogError{
				Path:   path,
				Line:   line,
				Reason: fmt.Sprintf("ожидался номер события %d, получен %d", sess.NextSeq(), ev.Seq),
			}
		}
		if err := sess.Apply(ev); err != nil {
			return nil, &CorruptLogError{Path: path, Line: line, Reason: fmt.Sprintf("событие не применяется: %v", err)}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала %s: %w", path, err)
	}

	return sess, nil
}

// Resume восстанавливает сессию и открывает ее журнал на дозапись
func Resume(dir, id string) (*session.Session, *Writer, error) {
	sess, err := LoadSession(dir, id)
	if err != nil {
		return nil, nil, err
	}

	path := sessionPath(dir, id)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка открытия журнала %s на дозапись: %w", path, err)
	}

	return sess, &Writer{f: f, path: path, nextSeq: sess.NextSeq()}, nil
}
