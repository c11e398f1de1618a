// Package config holds the application configuration container loaded by
// go-config from config/app.json plus environment overrides.
package config

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
)

type AppConfig struct {
	Server      Server      `json:"server"`
	Auth        Auth        `json:"auth"`
	Persistence Persistence `json:"persistence"`
	Uploads     Uploads     `json:"uploads"`
	Forum       Forum       `json:"forum"`
}

func (a *AppConfig) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Auth),
		validation.Field(&a.Server),
		validation.Field(&a.Persistence),
	)
}

func (a *AppConfig) GetServer() Server           { return a.Server }
func (a *AppConfig) GetAuth() Auth               { return a.Auth }
func (a *AppConfig) GetPersistence() Persistence { return a.Persistence }
func (a *AppConfig) GetUploads() Uploads         { return a.Uploads }
func (a *AppConfig) GetForum() Forum             { return a.Forum }

type Server struct {
	Port       int    `json:"port"`
	CORSOrigin string `json:"cors_origin"`
}

func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Min(0), validation.Max(65535)),
	)
}

func (s Server) GetPort() int {
	if s.Port == 0 {
		return 3000
	}
	return s.Port
}

func (s Server) GetAddr() string {
	return fmt.Sprintf(":%d", s.GetPort())
}

func (s Server) GetCORSOrigin() string {
	if s.CORSOrigin == "" {
		return "*"
	}
	return s.CORSOrigin
}

// Auth carries the session authority options. It satisfies the root package's
// Config interface.
type Auth struct {
	SigningKey      string   `json:"signing_key"`
	SigningMethod   string   `json:"signing_method"`
	ContextKey      string   `json:"context_key"`
	TokenExpiration int      `json:"token_expiration"`
	TokenLookup     string   `json:"token_lookup"`
	AuthScheme      string   `json:"auth_scheme"`
	Issuer          string   `json:"issuer"`
	Audience        []string `json:"audience"`
	AdminEmail      string   `json:"admin_email"`
}

func (a Auth) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.SigningKey, validation.Required),
	)
}

func (a Auth) GetSigningKey() string { return a.SigningKey }

func (a Auth) GetSigningMethod() string {
	if a.SigningMethod == "" {
		return "HS256"
	}
	return a.SigningMethod
}

func (a Auth) GetContextKey() string {
	if a.ContextKey == "" {
		return "user"
	}
	return a.ContextKey
}

// GetTokenExpiration is the token lifetime in hours.
func (a Auth) GetTokenExpiration() int {
	if a.TokenExpiration == 0 {
		return 168
	}
	return a.TokenExpiration
}

func (a Auth) GetTokenLookup() string {
	if a.TokenLookup == "" {
		return "header:Authorization"
	}
	return a.TokenLookup
}

func (a Auth) GetAuthScheme() string {
	if a.AuthScheme == "" {
		return "Bearer"
	}
	return a.AuthScheme
}

func (a Auth) GetIssuer() string     { return a.Issuer }
func (a Auth) GetAudience() []string { return a.Audience }
func (a Auth) GetAdminEmail() string { return a.AdminEmail }

type Persistence struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

func (p Persistence) Validate() error {
	return nil
}

func (p Persistence) GetDriver() string {
	if p.Driver == "" {
		return "sqlite"
	}
	return p.Driver
}

func (p Persistence) GetDSN() string {
	if p.DSN == "" {
		return "file:database.sqlite?cache=shared&_pragma=foreign_keys(1)"
	}
	return p.DSN
}

type Uploads struct {
	Dir      string `json:"dir"`
	MaxBytes int64  `json:"max_bytes"`
}

func (u Uploads) GetDir() string {
	if u.Dir == "" {
		return "./uploads"
	}
	return u.Dir
}

func (u Uploads) GetMaxBytes() int64 {
	if u.MaxBytes == 0 {
		return 5 * 1024 * 1024
	}
	return u.MaxBytes
}

type Forum struct {
	SeedCategories []string `json:"seed_categories"`
}

func (f Forum) GetSeedCategories() []string {
	return f.SeedCategories
}
