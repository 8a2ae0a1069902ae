package models

import "time"

// Level is the estimated difficulty of a question, ordered
// beginner < intermediate < advanced.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Role is the platform role of a user.
type Role string

const (
	RoleAsker     Role = "asker"
	RoleResponder Role = "responder"
	RoleAdmin     Role = "admin"
)

// AssignmentStatus tracks one responder's progress on one thread.
// notified -> viewed -> answering -> answered, or declined (terminal).
type AssignmentStatus string

const (
	AssignmentNotified  AssignmentStatus = "notified"
	AssignmentViewed    AssignmentStatus = "viewed"
	AssignmentAnswering AssignmentStatus = "answering"
	AssignmentAnswered  AssignmentStatus = "answered"
	AssignmentDeclined  AssignmentStatus = "declined"
)

// ResponderProfile describes a user who has opted in to answering
// questions. The count and average fields are derived snapshots,
// recomputed from source records by the stats job.
type ResponderProfile struct {
	UserID          string    `json:"user_id"`
	Role            Role      `json:"role"`
	ExpertiseTags   []string  `json:"expertise_tags"`
	LevelPreference *Level    `json:"level_preference,omitempty"`
	AnswerCount     int       `json:"answer_count"`
	ThanksCount     int       `json:"thanks_count"`
	AvgResponseTime *int      `json:"avg_response_time,omitempty"` // minutes
	TelegramChatID  *int64    `json:"telegram_chat_id,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ThreadAssignment records that one responder was notified about one
// thread. At most one exists per (thread, responder) pair.
type ThreadAssignment struct {
	ID          string           `json:"id"`
	ThreadID    string           `json:"thread_id"`
	ResponderID string           `json:"responder_id"`
	Status      AssignmentStatus `json:"status"`
	NotifiedAt  time.Time        `json:"notified_at"`
	AnsweredAt  *time.Time       `json:"answered_at,omitempty"`
}

// Notification is an in-app notification record for one user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ThreadID  string    `json:"thread_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageType distinguishes question and answer messages.
type MessageType string

const (
	MessageQuestion MessageType = "question"
	MessageAnswer   MessageType = "answer"
)

// Message is the slice of a thread message the stats job needs:
// original answers authored by a responder count toward answerCount.
type Message struct {
	ID         string      `json:"id"`
	ThreadID   string      `json:"thread_id"`
	SenderID   string      `json:"sender_id"`
	Type       MessageType `json:"type"`
	IsOriginal bool        `json:"is_original"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Feedback is a reaction from an asker to a responder. Only the
// "thanks" kind feeds the track-record statistics.
type Feedback struct {
	ID         string    `json:"id"`
	ThreadID   string    `json:"thread_id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
}

const FeedbackThanks = "thanks"

// ResponderStats is the derived snapshot written back onto a profile.
type ResponderStats struct {
	AnswerCount     int
	ThanksCount     int
	AvgResponseTime *int // minutes, nil when no answered assignments exist
}
