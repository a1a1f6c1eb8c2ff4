package utils // package utils provides helpers for issuing and reading booking session tokens

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
    "github.com/google/uuid"       // random session identifiers
)

// ErrInvalidSession is returned when a session token fails verification or
// carries no usable subject.
var ErrInvalidSession = errors.New("invalid session token")

// SessionToken is a signed booking session along with its expiry.  The
// session id namespaces every stored booking field.
type SessionToken struct {
    ID    string    // session id carried in the sub claim
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewSessionToken signs an HS256 JWT for a fresh random session id valid
// for ttlMin minutes.
func NewSessionToken(secret string, ttlMin int) (SessionToken, error) {
    return SignSession(secret, uuid.NewString(), ttlMin)
}

// SignSession signs a token for an existing session id.  It is used to
// extend the lifetime of a session that is still in progress.
func SignSession(secret, id string, ttlMin int) (SessionToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.RegisteredClaims{
        Subject:   id,
        ExpiresAt: jwt.NewNumericDate(exp),
        IssuedAt:  jwt.NewNumericDate(now),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{ID: id, Token: signed, Exp: exp}, nil
}

// ParseSession verifies raw against secret and returns the session it
// carries.  Tokens signed with anything other than HMAC are rejected, as
// are subjects that are not UUIDs.
func ParseSession(secret, raw string) (SessionToken, error) {
    var claims jwt.RegisteredClaims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidSession
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid || claims.ExpiresAt == nil {
        return SessionToken{}, ErrInvalidSession
    }
    if _, err := uuid.Parse(claims.Subject); err != nil {
        return SessionToken{}, ErrInvalidSession
    }
    return SessionToken{ID: claims.Subject, Token: raw, Exp: claims.ExpiresAt.Time}, nil
}
