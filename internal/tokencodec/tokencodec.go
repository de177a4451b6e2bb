// Package tokencodec mints and verifies OAI-PMH resumption tokens as
// signed JWTs, following the teacher's JWT helper
// (internal/helper/utils/token.go) but carrying list-continuation
// claims instead of user identity.
package tokencodec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned for any token that does not parse into a
// well-formed Claims value: bad signature, wrong claim types, expired
// jwt exp, or a verb that is not a non-empty string.
var ErrMalformed = errors.New("tokencodec: malformed resumption token")

// Claims is the resumption-token payload spec §4.4 requires: verb,
// metadataPrefix, the next-page offset, the issuance datestamp, and
// the original filter parameters. From/Until/Set are nullable strings,
// never arrays/numbers/objects, matching validation rule 3.
type Claims struct {
	Verb           string  `json:"verb"`
	MetadataPrefix string  `json:"metadataPrefix"`
	Offset         string  `json:"offset"`
	Date           string  `json:"date"`
	From           *string `json:"from"`
	Until          *string `json:"until"`
	Set            *string `json:"set"`
	jwt.RegisteredClaims
}

// Codec mints and verifies resumption tokens signed with a single
// application-wide secret.
type Codec struct {
	secret []byte
}

// New builds a Codec. secret must be non-empty; the caller typically
// supplies config.GetConfig().App.JWTSecret.
func New(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Mint signs a resumption token for the given continuation state. Date
// is the issuance datestamp at second granularity (spec §4.4).
func (c *Codec) Mint(verb, metadataPrefix, offset string, date time.Time, from, until, set *string) (string, error) {
	claims := Claims{
		Verb:           verb,
		MetadataPrefix: metadataPrefix,
		Offset:         offset,
		Date:           date.UTC().Format("2006-01-02T15:04:05Z"),
		From:           from,
		Until:          until,
		Set:            set,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(date),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify parses and validates the structural shape of a resumption
// token (spec §4.4 rules 1-3): well-formed JWT, string-typed fields.
// It does NOT check the requesting verb or token expiry against the
// Datestamp singleton -- those checks belong to the engine, which has
// access to the request verb and the Store.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrMalformed
	}

	if claims.Verb == "" || claims.MetadataPrefix == "" || claims.Date == "" {
		return nil, ErrMalformed
	}

	return claims, nil
}
