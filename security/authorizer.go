package security

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/blogem/toolshelf/models"
)

// MaxTokenLength bounds the bearer token accepted before hashing
const MaxTokenLength = 512

const (
	minFailureDelay = 100 * time.Millisecond
	failureJitter   = 100 * time.Millisecond
)

// SuspicionChecker reports IPs flagged by the rate limiter
type SuspicionChecker interface {
	IsSuspicious(ip string) bool
}

// AuthorizerConfig holds the collaborators of an Authorizer
type AuthorizerConfig struct {
	Secret    string
	AllowList *IPAllowList
	Suspicion SuspicionChecker
	Tokens    *TokenStore
	Audit     EventRecorder
	// FailureDelay runs after an invalid credential; defaults to RandomDelay
	FailureDelay func(ctx context.Context)
}

// AuthRequest describes a mutating request awaiting a decision
type AuthRequest struct {
	IP                string
	Path              string
	Authorization     string
	AllowSessionToken bool
}

// Grant describes an accepted credential
type Grant struct {
	// Method is "secret" or "session"
	Method string
	Token  string
}

// Authorizer decides whether a mutating request may proceed
type Authorizer struct {
	secretDigest string
	allowList    *IPAllowList
	suspicion    SuspicionChecker
	tokens       *TokenStore
	audit        EventRecorder
	failureDelay func(ctx context.Context)
}

// NewAuthorizer creates an authorizer. The secret is only kept as a digest.
func NewAuthorizer(cfg AuthorizerConfig) *Authorizer {
	a := &Authorizer{
		allowList:    cfg.AllowList,
		suspicion:    cfg.Suspicion,
		tokens:       cfg.Tokens,
		audit:        cfg.Audit,
		failureDelay: cfg.FailureDelay,
	}
	if cfg.Secret != "" {
		a.secretDigest = Digest(cfg.Secret)
	}
	if a.failureDelay == nil {
		a.failureDelay = RandomDelay
	}
	return a
}

// Configured reports whether a server secret is set
func (a *Authorizer) Configured() bool {
	return a.secretDigest != ""
}

// SecretDigest returns the digest of the configured secret
func (a *Authorizer) SecretDigest() string {
	return a.secretDigest
}

// Authorize runs the checks in order and stops at the first failure:
// IP allow-list, suspicious IP, secret configured, credential present and
// bounded, credential matches.
func (a *Authorizer) Authorize(ctx context.Context, req AuthRequest) (Grant, error) {
	if a.allowList.Enabled() && !a.allowList.Allows(req.IP) {
		return Grant{}, a.reject(req, models.RejectForbiddenIP)
	}
	if a.suspicion != nil && a.suspicion.IsSuspicious(req.IP) {
		return Grant{}, a.reject(req, models.RejectSuspiciousIP)
	}
	if !a.Configured() {
		a.record(models.EventConfigurationError, req, map[string]string{"setting": "ADMIN_SECRET"})
		return Grant{}, a.reject(req, models.RejectServerMisconfigured)
	}

	token, ok := BearerToken(req.Authorization)
	if !ok {
		return Grant{}, a.reject(req, models.RejectMissingCredential)
	}
	if len(token) > MaxTokenLength {
		return Grant{}, a.reject(req, models.RejectInvalidCredential)
	}

	if ConstantTimeEqual(Digest(token), a.secretDigest) {
		a.record(models.EventAuthSuccess, req, map[string]string{"method": "secret"})
		return Grant{Method: "secret", Token: token}, nil
	}
	if req.AllowSessionToken && a.tokens != nil && a.tokens.Valid(token) {
		a.record(models.EventAuthSuccess, req, map[string]string{"method": "session"})
		return Grant{Method: "session", Token: token}, nil
	}

	err := a.reject(req, models.RejectInvalidCredential)
	a.failureDelay(ctx)
	return Grant{}, err
}

func (a *Authorizer) reject(req AuthRequest, reason models.RejectReason) error {
	a.record(models.EventAuthFailure, req, map[string]string{"reason": string(reason)})
	return &models.AuthenticationError{Reason: reason}
}

func (a *Authorizer) record(kind models.EventKind, req AuthRequest, details map[string]string) {
	if a.audit == nil {
		return
	}
	details["path"] = req.Path
	a.audit.Log(kind, req.IP, details)
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// RandomDelay sleeps for 100-200ms or until ctx is done
func RandomDelay(ctx context.Context) {
	d := minFailureDelay + rand.N(failureJitter)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
