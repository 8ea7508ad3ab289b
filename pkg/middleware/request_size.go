package middleware

import (
	"net/http"
	"slices"
)

// MaxRequestSize caps request bodies at limit bytes, or uploadLimit for
// uploadPaths. Bodies are wrapped in http.MaxBytesReader; for regular paths a
// declared oversize Content-Length is rejected with 413 before reading. Upload
// handlers see *http.MaxBytesError and report it themselves.
func MaxRequestSize(limit, uploadLimit int64, uploadPaths ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			upload := slices.Contains(uploadPaths, r.URL.Path)

			maxBytes := limit
			if upload {
				maxBytes = uploadLimit
			}

			if !upload && r.ContentLength > maxBytes {
				writeJSONError(w, http.StatusRequestEntityTooLarge, "Request body too large", "INVALID_INPUT")
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
