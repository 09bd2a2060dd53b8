package videos

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"video-backend/internal/credits"
)

// Seconds accepts a JSON number or a numeric string.
type Seconds int

func (s *Seconds) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*s = 0
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("duration %q is not a number", raw)
		}
		*s = Seconds(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration must be a whole number: %w", err)
	}
	*s = Seconds(n)
	return nil
}

var registerOnce sync.Once

// RegisterValidators adds the videomodel and videoduration tags to gin's
// binding validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("videomodel", func(fl validator.FieldLevel) bool {
			return credits.ValidModel(fl.Field().String())
		})
		_ = v.RegisterValidation("videoduration", func(fl validator.FieldLevel) bool {
			return credits.ValidDuration(int(fl.Field().Int()))
		})
	})
}

// bindMessage turns a binding error into the message shown to the caller.
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return "Missing required fields"
		}
	}
	switch verrs[0].Tag() {
	case "videomodel":
		return fmt.Sprintf("Invalid model: %v", verrs[0].Value())
	case "videoduration":
		return fmt.Sprintf("Invalid duration: %v", verrs[0].Value())
	default:
		return "Invalid request body"
	}
}
