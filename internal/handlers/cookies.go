package handlers

import (
	"net/http"

	"github.com/streamvault/account-service/internal/jwt"
)

// setTokenCookies writes both token cookies with HttpOnly and Secure set.
func setTokenCookies(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, &http.Cookie{
		Name:     jwt.AccessTokenCookie,
		Value:    access,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     jwt.RefreshTokenCookie,
		Value:    refresh,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
	})
}

// clearTokenCookies expires both token cookies.
func clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{jwt.AccessTokenCookie, jwt.RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
		})
	}
}
