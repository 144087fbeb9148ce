package domain

import "strings"

// User is the identity returned by the login endpoint.
type User struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Student is the student profile attached to an authenticated user.
type Student struct {
	ID             string `json:"id"`
	StudentCode    string `json:"studentCode,omitempty"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	FullName       string `json:"fullName,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Program        string `json:"program,omitempty"`
	Batch          string `json:"batch,omitempty"`
	EnrollmentDate string `json:"enrollmentDate,omitempty"`
	Address        string `json:"address,omitempty"`
}

// DisplayName returns the best available human-readable name.
func (s *Student) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.FullName != "" {
		return s.FullName
	}
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// AuthenticatedUser is the in-memory view of the logged-in account.
// It is never written to the token store.
type AuthenticatedUser struct {
	User    User     `json:"user"`
	Student *Student `json:"student,omitempty"`
}

// DisplayName returns the name shown in greetings and status output.
func (u *AuthenticatedUser) DisplayName() string {
	if u == nil {
		return ""
	}
	if name := u.Student.DisplayName(); name != "" {
		return name
	}
	if u.User.FullName != "" {
		return u.User.FullName
	}
	if u.User.UserName != "" {
		return u.User.UserName
	}
	return u.User.Email
}

// StudentSnapshot is the lightweight, non-authoritative copy of student
// fields kept in durable storage for display continuity across restarts.
type StudentSnapshot struct {
	UserID      string `json:"userId,omitempty"`
	UserName    string `json:"userName,omitempty"`
	StudentID   string `json:"studentId,omitempty"`
	StudentCode string `json:"studentCode,omitempty"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Program     string `json:"program,omitempty"`
}

// NewStudentSnapshot extracts the snapshot fields from an authenticated user.
func NewStudentSnapshot(u *AuthenticatedUser) StudentSnapshot {
	snap := StudentSnapshot{
		UserID:   u.User.ID,
		UserName: u.User.UserName,
		Email:    u.User.Email,
		Name:     u.DisplayName(),
	}
	if s := u.Student; s != nil {
		snap.StudentID = s.ID
		snap.StudentCode = s.StudentCode
		snap.Program = s.Program
		if s.Email != "" {
			snap.Email = s.Email
		}
	}
	return snap
}

// User rebuilds a partial authenticated user from the snapshot.
func (s StudentSnapshot) User() *AuthenticatedUser {
	u := &AuthenticatedUser{
		User: User{
			ID:       s.UserID,
			UserName: s.UserName,
			Email:    s.Email,
			FullName: s.Name,
		},
	}
	if s.StudentID != "" || s.StudentCode != "" {
		u.Student = s.Student()
	}
	return u
}

// Student rebuilds the partial student profile held by the snapshot.
func (s StudentSnapshot) Student() *Student {
	return &Student{
		ID:          s.StudentID,
		StudentCode: s.StudentCode,
		FullName:    s.Name,
		Email:       s.Email,
		Program:     s.Program,
	}
}
