package domain

import (
	"net/mail"
	"strings"
)

// Course is a catalog course or an enrolled course.
type Course struct {
	ID          string  `json:"id"`
	Code        string  `json:"code,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Duration    string  `json:"duration,omitempty"`
	Fee         float64 `json:"fee,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// Enrollment links a student to a course.
type Enrollment struct {
	ID          string  `json:"id"`
	Course      Course  `json:"course"`
	Status      string  `json:"status,omitempty"`
	EnrolledOn  string  `json:"enrolledOn,omitempty"`
	CompletedOn string  `json:"completedOn,omitempty"`
	Progress    float64 `json:"progress,omitempty"`
	Batch       string  `json:"batch,omitempty"`
	Instructor  string  `json:"instructor,omitempty"`
	Certificate string  `json:"certificateNumber,omitempty"`
}

// Fee is a single fee line of a student account.
type Fee struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Paid        float64 `json:"paid"`
	DueDate     string  `json:"dueDate,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// Balance returns the unpaid amount.
func (f Fee) Balance() float64 {
	return f.Amount - f.Paid
}

// Certificate is an issued course certificate.
type Certificate struct {
	ID                string `json:"id,omitempty"`
	CertificateNumber string `json:"certificateNumber"`
	StudentName       string `json:"studentName"`
	CourseName        string `json:"courseName"`
	IssueDate         string `json:"issueDate,omitempty"`
	Grade             string `json:"grade,omitempty"`
	Status            string `json:"status,omitempty"`
}

// ContactMessage is the payload of the public contact form.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// Validate checks the contact form before it is sent.
func (m ContactMessage) Validate() error {
	switch {
	case strings.TrimSpace(m.Name) == "":
		return ErrValidation.WithDetails("Name is required.")
	case strings.TrimSpace(m.Email) == "":
		return ErrValidation.WithDetails("Email is required.")
	case strings.TrimSpace(m.Message) == "":
		return ErrValidation.WithDetails("Message is required.")
	}
	if _, err := mail.ParseAddress(m.Email); err != nil || !IsEmail(m.Email) {
		return ErrValidation.WithDetails("Email address is not valid.")
	}
	return nil
}
