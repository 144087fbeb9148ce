package service

import (
	"context"
	"errors"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/connection"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
)

// Endpoints holds the backend paths used by the services.
type Endpoints struct {
	Login             string `koanf:"login" yaml:"login"`
	Refresh           string `koanf:"refresh" yaml:"refresh"`
	Revoke            string `koanf:"revoke" yaml:"revoke"`
	ChangePassword    string `koanf:"change_password" yaml:"change_password"`
	Profile           string `koanf:"profile" yaml:"profile"`
	Courses           string `koanf:"courses" yaml:"courses"`
	Fees              string `koanf:"fees" yaml:"fees"`
	Certificates      string `koanf:"certificates" yaml:"certificates"`
	Catalog           string `koanf:"catalog" yaml:"catalog"`
	VerifyCertificate string `koanf:"verify_certificate" yaml:"verify_certificate"`
	Contact           string `koanf:"contact" yaml:"contact"`
}

// DefaultEndpoints returns the paths of the institute backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:             "/api/Auth/student/login",
		Refresh:           connection.DefaultRefreshPath,
		Revoke:            "/api/Auth/revoke-token",
		ChangePassword:    "/api/auth/change-password",
		Profile:           "/api/students/profile",
		Courses:           "/api/students/courses",
		Fees:              "/api/students/fees",
		Certificates:      "/api/students/certificates",
		Catalog:           "/api/courses",
		VerifyCertificate: "/api/certificates/verify",
		Contact:           "/api/contact",
	}
}

// WithDefaults fills empty paths from DefaultEndpoints.
func (e Endpoints) WithDefaults() Endpoints {
	d := DefaultEndpoints()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&e.Login, d.Login)
	fill(&e.Refresh, d.Refresh)
	fill(&e.Revoke, d.Revoke)
	fill(&e.ChangePassword, d.ChangePassword)
	fill(&e.Profile, d.Profile)
	fill(&e.Courses, d.Courses)
	fill(&e.Fees, d.Fees)
	fill(&e.Certificates, d.Certificates)
	fill(&e.Catalog, d.Catalog)
	fill(&e.VerifyCertificate, d.VerifyCertificate)
	fill(&e.Contact, d.Contact)
	return e
}

// Requester performs backend requests. *connection.Dispatcher implements it.
type Requester interface {
	Do(ctx context.Context, req *connection.Request) (*connection.Response, error)
}

// TokenStore is the part of the token store the auth service uses.
type TokenStore interface {
	HasToken() bool
	GetAccessToken() string
	GetRefreshToken() string
	SetTokens(tokens domain.Tokens) error
	ClearTokens() error
}

// SnapshotStore persists the student snapshot.
type SnapshotStore interface {
	Save(ctx context.Context, snap domain.StudentSnapshot) error
	Load(ctx context.Context) (domain.StudentSnapshot, bool, error)
	Clear(ctx context.Context) error
}

// fetch performs req and decodes the envelope data into v.
func fetch(ctx context.Context, r Requester, req *connection.Request, v any) (domain.Result, error) {
	resp, err := r.Do(ctx, req)
	if err != nil {
		return domain.Result{}, normalize(err)
	}
	res := resp.Result()
	if !res.OK() {
		return res, res.Err
	}
	if v != nil {
		if err := res.Decode(v); err != nil {
			return res, err
		}
	}
	return res, nil
}

// normalize maps anything that is not already a domain error to ErrServer.
func normalize(err error) error {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	return domain.ErrServer.WithCause(err)
}
