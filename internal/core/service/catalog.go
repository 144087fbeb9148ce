package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/connection"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
)

const defaultContactSent = "Thank you for contacting us. We will get back to you soon."

// CatalogService serves the public pages. Its requests never carry a
// bearer token.
type CatalogService struct {
	requester Requester
	endpoints Endpoints
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(requester Requester, endpoints Endpoints) *CatalogService {
	return &CatalogService{
		requester: requester,
		endpoints: endpoints.WithDefaults(),
	}
}

// Courses returns the public course catalog.
func (s *CatalogService) Courses(ctx context.Context) ([]domain.Course, error) {
	var out []domain.Course
	_, err := fetch(ctx, s.requester, &connection.Request{
		Method:    http.MethodGet,
		Path:      s.endpoints.Catalog,
		Anonymous: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyCertificate looks up a certificate by number.
func (s *CatalogService) VerifyCertificate(ctx context.Context, number string) (*domain.Certificate, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, domain.ErrValidation.WithDetails("Certificate number is required.")
	}

	var cert domain.Certificate
	_, err := fetch(ctx, s.requester, &connection.Request{
		Method:    http.MethodGet,
		Path:      strings.TrimRight(s.endpoints.VerifyCertificate, "/") + "/" + url.PathEscape(number),
		Anonymous: true,
	}, &cert)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrCertificateNotFound.WithCause(err)
	}
	if err != nil {
		return nil, err
	}
	if cert.CertificateNumber == "" {
		return nil, domain.ErrCertificateNotFound
	}
	return &cert, nil
}

// SubmitContact sends the contact form and returns the confirmation text.
func (s *CatalogService) SubmitContact(ctx context.Context, msg domain.ContactMessage) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	msg.Email = strings.TrimSpace(msg.Email)
	res, err := fetch(ctx, s.requester, &connection.Request{
		Method:    http.MethodPost,
		Path:      s.endpoints.Contact,
		Body:      msg,
		Anonymous: true,
	}, nil)
	if err != nil {
		return "", err
	}
	if res.Message != "" {
		return res.Message, nil
	}
	return defaultContactSent, nil
}
