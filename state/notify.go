package state

import "log"

// Level is the severity of a user-visible notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "Info"
	case LevelWarning:
		return "Warning"
	case LevelError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Notification is a user-visible message a layer sends to the host. Persistent
// notifications stay on screen until dismissed.
type Notification struct {
	Title      string
	Level      Level
	Body       string
	Persistent bool
}

// Notify queues a notification for the host. It never blocks; if the host is
// not draining the queue the notification is logged and dropped.
func (s *State) Notify(title string, level Level, body string, persistent bool) {
	n := Notification{Title: title, Level: level, Body: body, Persistent: persistent}
	select {
	case s.notifications <- n:
	default:
		log.Printf("State: notification queue full, dropping %s: %s", level, title)
	}
}

// Notifications is the host's side of the notification queue.
func (s *State) Notifications() <-chan Notification {
	return s.notifications
}
