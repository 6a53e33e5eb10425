// Package jwt issues and verifies the stateless session tokens of the Jobs API.
//
// Tokens are HS256 JWTs signed with a shared secret. They carry the user id
// (as both "sub" and "userId"), the display name, issue time, expiry and issuer.
// Nothing is persisted; every request is verified by signature and expiry.
//
//	svc, err := jwt.NewService(jwt.Config{
//	    Secret:     []byte(os.Getenv("JWT_SECRET")),
//	    Issuer:     "jobs-api",
//	    Expiration: 30 * 24 * time.Hour,
//	})
//
//	token, err := svc.Issue(userID, name)
//	claims, err := svc.Verify(token)
//
// Verify only accepts HS256. Expired tokens return ErrTokenExpired; every
// other failure wraps ErrInvalidToken.
package jwt
