// Package cookie writes and reads HTTP cookies with secure defaults
// (Path=/, HttpOnly, SameSite=Lax) and optional HMAC-SHA256 signing.
//
// Signed values carry their signature alongside the payload, so a tampered
// cookie is rejected before any lookup happens. Several secrets may be
// configured; the first one signs, all of them verify, which allows key
// rotation without logging everyone out.
//
//	mgr, err := cookie.New([]string{os.Getenv("COOKIE_SECRET")}, cookie.WithSecure(true))
//	if err != nil {
//		return err
//	}
//	_ = mgr.SetSigned(w, "sid", token, cookie.WithMaxAge(86400))
//	token, err := mgr.GetSigned(r, "sid")
package cookie
