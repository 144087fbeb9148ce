package service

import (
	"context"
	"net/http"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/connection"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
)

// PortalService reads the logged-in student's own records. Every call goes
// through the dispatcher with the bearer token attached.
type PortalService struct {
	requester Requester
	endpoints Endpoints
}

// NewPortalService creates a PortalService.
func NewPortalService(requester Requester, endpoints Endpoints) *PortalService {
	return &PortalService{
		requester: requester,
		endpoints: endpoints.WithDefaults(),
	}
}

// Profile returns the student profile.
func (s *PortalService) Profile(ctx context.Context) (*domain.Student, error) {
	var student domain.Student
	if _, err := s.get(ctx, s.endpoints.Profile, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Courses returns the student's enrollments.
func (s *PortalService) Courses(ctx context.Context) ([]domain.Enrollment, error) {
	var out []domain.Enrollment
	if _, err := s.get(ctx, s.endpoints.Courses, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Fees returns the student's fee lines.
func (s *PortalService) Fees(ctx context.Context) ([]domain.Fee, error) {
	var out []domain.Fee
	if _, err := s.get(ctx, s.endpoints.Fees, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Certificates returns the certificates issued to the student.
func (s *PortalService) Certificates(ctx context.Context) ([]domain.Certificate, error) {
	var out []domain.Certificate
	if _, err := s.get(ctx, s.endpoints.Certificates, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PortalService) get(ctx context.Context, path string, v any) (domain.Result, error) {
	return fetch(ctx, s.requester, &connection.Request{Method: http.MethodGet, Path: path}, v)
}
