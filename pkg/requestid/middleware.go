package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	Header      = "X-Request-ID"
	maxIDLength = 128
)

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if !isValid(id) {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
	})
}

func isValid(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}
