package payment

import "fmt"

type Status int

const (
	StatusNotStarted Status = iota
	StatusSubmitting
	StatusAwaitingConfirmation
	StatusCompleted
	StatusFailed
	StatusTimedOut
	StatusError
)

var statusNames = [...]string{
	StatusNotStarted:           "NotStarted",
	StatusSubmitting:           "Submitting",
	StatusAwaitingConfirmation: "AwaitingConfirmation",
	StatusCompleted:            "Completed",
	StatusFailed:               "Failed",
	StatusTimedOut:             "TimedOut",
	StatusError:                "Error",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "Unknown"
	}
	return statusNames[s]
}

// Terminal сообщает, что из состояния нет автоматических переходов.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusTimedOut, StatusError:
		return true
	default:
		return false
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseStatus возвращает статус по имени, как его печатает String.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return Status(s), nil
		}
	}
	return 0, fmt.Errorf("unknown payment status %q", name)
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
