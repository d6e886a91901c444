package trends

import (
	"errors"
	"fmt"
	"time"

	"gtrends/lib/trends/series"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRequest is returned before anything is downloaded.
var ErrInvalidRequest = errors.New("invalid request")

// earliest is the first month the site has data for.
var earliest = time.Date(2004, time.January, 1, 0, 0, 0, 0, time.UTC)

type Request struct {
	Terms       []string           `validate:"required,min=1,dive,required"`
	Granularity series.Granularity `validate:"oneof=d w"`
	Geo         string
	Category    string
	Property    string
	Timezone    string
	Start       time.Time `validate:"required"`
	End         time.Time `validate:"required"`
	// Sum collapses every term into one column.
	Sum bool
	// SavePath is written to when set, .xlsx paths produce a spreadsheet.
	SavePath string
}

// RawRequest downloads a single unprocessed export covering the whole range.
type RawRequest struct {
	Terms    []string `validate:"required,min=1,max=5,dive,required"`
	Geo      string
	Category string
	Property string
	Timezone string
	Start    time.Time `validate:"required"`
	End      time.Time `validate:"required"`
	SavePath string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func validateStruct(req any) error {
	err := validate.Struct(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// checkRange applies the date rules shared by every kind of request, `now`
// bounds the end of the range.
func checkRange(start, end, now time.Time) error {
	if start.After(end) {
		return invalid("start %s is after end %s", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	if start.Before(earliest) {
		return invalid("start %s is before %s", start.Format(time.DateOnly), earliest.Format("2006-01"))
	}
	if end.After(now) {
		return invalid("end %s is in the future", end.Format(time.DateOnly))
	}
	if series.MonthsBetween(start, end) <= 0 {
		return invalid("%s to %s does not cover a whole month", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return nil
}
