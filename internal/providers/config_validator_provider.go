package providers

import (
	"errors"
	"fmt"
	"medhistory/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	sections := []struct {
		name string
		data interface{}
	}{
		{"webServer", &cv.conf.WebServer},
		{"storage", &cv.conf.Storage},
		{"logger", &cv.conf.Logger},
	}
	for _, s := range sections {
		v := validate.Struct(s.data)
		if !v.Validate() {
			return fmt.Errorf("invalid %s config: %s", s.name, v.Errors.One())
		}
	}

	if cv.conf.Scheduler.Enabled && cv.conf.Scheduler.Interval <= 0 {
		return errors.New("invalid scheduler config: interval must be positive")
	}
	if cv.conf.Cache.Enabled && cv.conf.Cache.Size <= 0 {
		return errors.New("invalid cache config: size must be positive when enabled")
	}
	return nil
}
