package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Logger is chi's access log written through logrus.
func Logger(next http.Handler) http.Handler {
	return chimiddleware.RequestLogger(&chimiddleware.DefaultLogFormatter{
		Logger:  logrus.StandardLogger(),
		NoColor: true,
	})(next)
}
