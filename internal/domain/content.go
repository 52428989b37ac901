package domain

import "time"

type Content struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags,omitempty"`
	Author    string    `json:"author,omitempty"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type ContentInput struct {
	Title     string   `json:"title" validate:"required,max=200"`
	Summary   string   `json:"summary,omitempty" validate:"max=500"`
	Body      string   `json:"body" validate:"required"`
	Category  string   `json:"category" validate:"required,oneof=article video guide faq"`
	Tags      []string `json:"tags,omitempty" validate:"dive,required"`
	Published bool     `json:"published"`
}

type ContactMessage struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}
