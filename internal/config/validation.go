package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks struct constraints and the cross-field rules of scheduled tasks.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	for name, task := range c.Scheduler.Tasks {
		if !task.Enabled {
			continue
		}
		hasInterval := task.Interval > 0
		hasSchedule := task.Schedule != ""
		if hasInterval == hasSchedule {
			return fmt.Errorf("%w: task %q must set exactly one of interval or schedule", ErrValidation, name)
		}
	}

	return nil
}
