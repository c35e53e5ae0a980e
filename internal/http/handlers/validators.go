package handlers

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tbourn/hackathon-backend/internal/domain"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators installs the enum tags used by request DTOs on Gin's
// validator: chat_role, event_kind and event_priority. Matching ignores case
// and surrounding space. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		for tag, fn := range map[string]validator.Func{
			"chat_role": func(fl validator.FieldLevel) bool {
				return domain.Role(enumValue(fl)).Valid()
			},
			"event_kind": func(fl validator.FieldLevel) bool {
				return domain.EventKind(enumValue(fl)).Valid()
			},
			"event_priority": func(fl validator.FieldLevel) bool {
				return domain.EventPriority(enumValue(fl)).Valid()
			},
		} {
			if registerErr = v.RegisterValidation(tag, fn); registerErr != nil {
				return
			}
		}
	})
	return registerErr
}

func enumValue(fl validator.FieldLevel) string {
	return strings.ToLower(strings.TrimSpace(fl.Field().String()))
}
