package middleware

import (
	"github.com/transitlk/bus-tracker/pkg/logger"
)

type Middleware struct {
	log logger.Logger
}

func NewMiddleware(log logger.Logger) *Middleware {
	return &Middleware{
		log: log,
	}
}
