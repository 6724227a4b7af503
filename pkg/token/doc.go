// Package token mints and validates compact, signed, self-contained
// credentials used by the email-confirmation and password-reset workflows.
//
// A token is three dot-separated base64url segments — header, JSON claims,
// HMAC-SHA256 signature — and encodes a subject identity, a contact email,
// an intent, and issuance/expiry timestamps. Integrity and expiry are
// enforced purely by the signature and the wall clock: the package keeps no
// state and performs no I/O, so a verified token proves only that it was
// issued by this service and has not expired. Whether the action it
// authorizes still makes sense is the caller's problem.
//
// The high-level Issue/Verify pair operates on the typed Claims structure;
// the lower-level Sign/Parse pair accepts any JSON-serializable claims and
// backs session tokens elsewhere in the application.
//
// # Usage
//
//	svc, err := token.NewFromString(cfg.TokenSecret)
//	if err != nil {
//		// missing secret: refuse to start
//	}
//
//	tok, err := svc.Issue(user.ID.String(), user.Email, token.IntentPasswordReset, time.Hour)
//
//	claims, err := svc.Verify(tok)
//	switch {
//	case errors.Is(err, token.ErrExpiredToken):
//		// expired
//	case err != nil:
//		// malformed or tampered
//	}
//
// Errors are sentinel values comparable with errors.Is.
package token
