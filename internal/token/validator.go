package token

import "time"

// Validator decodes a token and enforces its expiry. It does not check the
// refresh flag or the revocation version; endpoints compose those checks
// according to what they accept. Validation is pure and safe for unlimited
// concurrent use: the key is immutable for the process lifetime.
type Validator struct {
	codec Codec
	now   func() time.Time
}

func NewValidator(secret []byte, now func() time.Time) *Validator {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Validator{codec: NewCodec(secret), now: now}
}

// Validate verifies the signature, then rejects tokens whose millisecond
// expiry is strictly in the past.
func (v *Validator) Validate(raw string) (*Claims, error) {
	cl, err := v.codec.Decode(raw)
	if err != nil {
		return nil, err
	}
	if cl.Exp < v.now().UnixMilli() {
		return nil, ErrExpired
	}
	return cl, nil
}
