package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tripnest/tripnest-backend/api/responses"
	pkgerrors "github.com/tripnest/tripnest-backend/pkg/errors"
	"github.com/tripnest/tripnest-backend/pkg/logger"
)

type rateCounter interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// AuthRateLimitPolicy caps attempts on an auth surface inside a rolling
// window: per client IP, and per target email so one account cannot be
// hammered from many hosts. Emails are hashed before they become keys.
type AuthRateLimitPolicy struct {
	Name       string
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.EmailLimit > 0)
}

func (p AuthRateLimitPolicy) key(scope, value string) string {
	name := p.Name
	if name == "" {
		name = "auth"
	}
	return fmt.Sprintf("ratelimit:%s:%s:%s", name, scope, value)
}

// AuthRateLimit guards the register and login endpoints. A failure of the
// counter store rejects the request as a dependency problem instead of
// waving the traffic through unthrottled.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateCounter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.IPLimit > 0 {
				if ip := clientIP(r); ip != "" {
					blocked, err := overLimit(ctx, store, policy.key("ip", ip), policy.Window, policy.IPLimit)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if blocked {
						rejectThrottled(ctx, logg, w, policy, "ip")
						return
					}
				}
			}

			if policy.EmailLimit > 0 {
				email, err := peekEmail(r)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading request"))
					return
				}
				if email != "" {
					sum := sha256.Sum256([]byte(email))
					blocked, err := overLimit(ctx, store, policy.key("email", hex.EncodeToString(sum[:])), policy.Window, policy.EmailLimit)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if blocked {
						rejectThrottled(ctx, logg, w, policy, "email")
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func overLimit(ctx context.Context, store rateCounter, key string, window time.Duration, limit int) (bool, error) {
	count, err := store.IncrWithTTL(ctx, key, window)
	if err != nil {
		return false, err
	}
	return count > int64(limit), nil
}

func rejectThrottled(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, scope string) {
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"policy":         policy.Name,
			"scope":          scope,
			"window_seconds": int(policy.Window.Seconds()),
		})
		logg.Warn(logCtx, "auth.rate_limited")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

// peekEmail reads the email field out of the JSON body and puts the body back
// for the handler. Non-JSON bodies count only against the IP limit.
func peekEmail(r *http.Request) (string, error) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(payload))

	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", nil
	}
	return strings.ToLower(strings.TrimSpace(body.Email)), nil
}

// clientIP trusts the first X-Forwarded-For hop when a proxy sits in front,
// falling back to the socket address.
func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
