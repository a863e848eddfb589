// Package notify доставляет пользователю сообщения об ошибках и состоянии.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Kind различает блокирующие и фоновые сообщения
type Kind int

const (
	// KindAlert требует внимания пользователя: действие не выполнено
	KindAlert Kind = iota
	// KindNotice информирует, не прерывая работу
	KindNotice
)

func (k Kind) String() string {
	if k == KindAlert {
		return "alert"
	}
	return "notice"
}

// Notifier принимает сообщения для пользователя
type Notifier interface {
	Alert(msg string)
	Notice(msg string)
}

// WriterNotifier печатает сообщения в io.Writer
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier создаёт Notifier, пишущий в w
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Alert(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "error: %s\n", msg)
}

func (n *WriterNotifier) Notice(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "note: %s\n", msg)
}

// Message описывает сообщение, сохранённое Recorder
type Message struct {
	Kind Kind
	Text string
}

// Recorder запоминает сообщения; используется в тестах и интерактивной оболочке
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Alert(msg string) {
	r.add(KindAlert, msg)
}

func (r *Recorder) Notice(msg string) {
	r.add(KindNotice, msg)
}

func (r *Recorder) add(kind Kind, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Kind: kind, Text: msg})
}

// Messages возвращает копию накопленных сообщений
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Alerts возвращает тексты блокирующих сообщений
func (r *Recorder) Alerts() []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Kind == KindAlert {
			out = append(out, m.Text)
		}
	}
	return out
}

// Reset очищает накопленные сообщения
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}

type nop struct{}

func (nop) Alert(string)  {}
func (nop) Notice(string) {}

// Nop возвращает Notifier, отбрасывающий сообщения
func Nop() Notifier {
	return nop{}
}
