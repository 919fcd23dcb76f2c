package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"

	"funding-platform/internal/core/ports"
	"funding-platform/pkg/apperror"
)

// initDataSecretSalt is the fixed HMAC key used to derive the verification
// secret from the bot token, per the platform's WebApp signing scheme.
const initDataSecretSalt = "WebAppData"

// InitDataVerifierImpl implements ports.InitDataVerifier using HMAC-SHA256.
// Pure and stateless: the bot token is the only configuration.
type InitDataVerifierImpl struct {
	secretKey []byte
}

// NewInitDataVerifier creates a verifier for payloads signed with botToken.
// The secret key is derived once: HMAC-SHA256(key="WebAppData", msg=botToken).
func NewInitDataVerifier(botToken string) *InitDataVerifierImpl {
	mac := hmac.New(sha256.New, []byte(initDataSecretSalt))
	mac.Write([]byte(botToken))
	return &InitDataVerifierImpl{secretKey: mac.Sum(nil)}
}

// Verify authenticates an initData payload and extracts the user identity.
// All failure modes — missing hash, malformed payload, JSON errors, hash
// mismatch — collapse into one undifferentiated access-denied error so a
// caller can never learn which check failed.
func (v *InitDataVerifierImpl) Verify(initData string) (ports.Identity, error) {
	denied := apperror.ErrAccessDeniedInitData()

	values, err := url.ParseQuery(initData)
	if err != nil {
		return ports.Identity{}, denied
	}

	hashValues, ok := values["hash"]
	if !ok || len(hashValues) == 0 || hashValues[0] == "" {
		return ports.Identity{}, denied
	}
	providedHash := strings.ToLower(hashValues[0])
	values.Del("hash")

	candidate := v.sign(buildCheckString(values))
	if !hmac.Equal([]byte(candidate), []byte(providedHash)) {
		return ports.Identity{}, denied
	}

	telegramID, err := extractUserID(values.Get("user"))
	if err != nil {
		return ports.Identity{}, denied
	}

	return ports.Identity{TelegramID: telegramID}, nil
}

// sign computes the lowercase hex HMAC-SHA256 of the check string.
func (v *InitDataVerifierImpl) sign(checkString string) string {
	mac := hmac.New(sha256.New, v.secretKey)
	mac.Write([]byte(checkString))
	return hex.EncodeToString(mac.Sum(nil))
}

// buildCheckString joins the remaining pairs as "key=value" lines, keys
// sorted lexicographically.
func buildCheckString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	return strings.Join(pairs, "\n")
}

// extractUserID parses the user JSON field and returns its id as a canonical
// string. The platform sends numeric ids; string ids are accepted as-is.
func extractUserID(userJSON string) (string, error) {
	var user struct {
		ID interface{} `json:"id"`
	}
	dec := json.NewDecoder(strings.NewReader(userJSON))
	dec.UseNumber()
	if err := dec.Decode(&user); err != nil {
		return "", err
	}

	switch id := user.ID.(type) {
	case json.Number:
		return id.String(), nil
	case string:
		if id == "" {
			return "", errEmptyUserID
		}
		return id, nil
	default:
		return "", errEmptyUserID
	}
}

var errEmptyUserID = errors.New("missing user id")
