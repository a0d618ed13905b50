package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/okian/rostr/internal/auth"
	. "github.com/smartystreets/goconvey/convey"
)

func TestService(t *testing.T) {
	Convey("Given an auth service with a fixed clock", t, func() {
		now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }
		svc, err := auth.NewService("s3cret", auth.WithTokenTTL(time.Hour), auth.WithClock(clock), auth.WithBcryptCost(bcrypt.MinCost))
		So(err, ShouldBeNil)

		Convey("When a token is issued", func() {
			tok, exp, err := svc.IssueToken("u1", "ace")
			So(err, ShouldBeNil)

			Convey("Then it parses back to the same subject", func() {
				So(exp, ShouldEqual, now.Add(time.Hour))
				c, err := svc.Parse(tok)
				So(err, ShouldBeNil)
				So(c.Subject, ShouldEqual, "u1")
				So(c.Username, ShouldEqual, "ace")
			})

			Convey("And it is rejected once expired", func() {
				now = now.Add(2 * time.Hour)
				_, err := svc.Parse(tok)
				So(errors.Is(err, auth.ErrInvalidToken), ShouldBeTrue)
			})

			Convey("And another secret cannot verify it", func() {
				other, err := auth.NewService("different", auth.WithClock(clock))
				So(err, ShouldBeNil)
				_, err = other.Parse(tok)
				So(errors.Is(err, auth.ErrInvalidToken), ShouldBeTrue)
			})
		})

		Convey("When a token uses another algorithm", func() {
			tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, &auth.Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "rostr", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
			}).SignedString(jwt.UnsafeAllowNoneSignatureType)
			So(err, ShouldBeNil)

			Convey("Then it is rejected", func() {
				_, err := svc.Parse(tok)
				So(errors.Is(err, auth.ErrInvalidToken), ShouldBeTrue)
			})
		})

		Convey("When parsing an empty token", func() {
			_, err := svc.Parse("")

			Convey("Then ErrMissingToken is returned", func() {
				So(errors.Is(err, auth.ErrMissingToken), ShouldBeTrue)
			})
		})

		Convey("When a password is hashed", func() {
			hash, err := svc.HashPassword("hunter2")
			So(err, ShouldBeNil)

			Convey("Then only the same password matches", func() {
				So(hash, ShouldNotEqual, "hunter2")
				So(svc.CheckPassword(hash, "hunter2"), ShouldBeNil)
				So(errors.Is(svc.CheckPassword(hash, "hunter3"), auth.ErrInvalidCredentials), ShouldBeTrue)
			})
		})

		Convey("When a password exceeds the bcrypt limit", func() {
			_, err := svc.HashPassword(strings.Repeat("x", auth.MaxPasswordBytes+1))

			Convey("Then ErrPasswordTooLong is returned", func() {
				So(errors.Is(err, auth.ErrPasswordTooLong), ShouldBeTrue)
			})
		})

		Convey("When a password is exactly at the bcrypt limit", func() {
			_, err := svc.HashPassword(strings.Repeat("x", auth.MaxPasswordBytes))

			Convey("Then it is hashed", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When an unknown user is rejected", func() {
			Convey("Then every password gets invalid credentials", func() {
				So(errors.Is(svc.RejectUnknown("hunter2"), auth.ErrInvalidCredentials), ShouldBeTrue)
				So(errors.Is(svc.RejectUnknown("rostr-unknown-user"), auth.ErrInvalidCredentials), ShouldBeTrue)
			})
		})
	})

	Convey("Given an empty secret", t, func() {
		_, err := auth.NewService("")

		Convey("Then NewService refuses it", func() {
			So(errors.Is(err, auth.ErrEmptySecret), ShouldBeTrue)
		})
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given a protected handler", t, func() {
		svc, err := auth.NewService("s3cret")
		So(err, ShouldBeNil)

		var sub, name string
		h := auth.Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub = auth.SubjectFromContext(r.Context())
			name = auth.UsernameFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

		serve := func(header string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/teams", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec
		}

		Convey("When a valid bearer token is sent", func() {
			tok, _, err := svc.IssueToken("u1", "ace")
			So(err, ShouldBeNil)
			rec := serve("Bearer " + tok)

			Convey("Then the subject reaches the handler", func() {
				So(rec.Code, ShouldEqual, http.StatusNoContent)
				So(sub, ShouldEqual, "u1")
				So(name, ShouldEqual, "ace")
			})
		})

		Convey("When no token is sent", func() {
			rec := serve("")

			Convey("Then the request is unauthorized", func() {
				So(rec.Code, ShouldEqual, http.StatusUnauthorized)
				So(rec.Body.String(), ShouldContainSubstring, `"code":"unauthorized"`)
			})
		})

		Convey("When the token is garbage", func() {
			rec := serve("Bearer not-a-jwt")

			Convey("Then the request is unauthorized", func() {
				So(rec.Code, ShouldEqual, http.StatusUnauthorized)
			})
		})
	})

	Convey("Given an empty context", t, func() {
		Convey("Then no subject is present", func() {
			So(auth.SubjectFromContext(context.Background()), ShouldBeEmpty)
		})
	})
}
