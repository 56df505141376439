package validate

import (
	"regexp"
	"strings"
	"time"

	"github.com/Domenick1991/studiobooking/internal/domain"
	"github.com/go-playground/validator/v10"
)

// BookingRequest is the inbound payload for creating a booking. Validation is
// all-or-nothing and purely functional: either the request comes back
// normalized or the caller gets the full ordered list of field failures.
type BookingRequest struct {
	Name           string   `json:"name" validate:"required,min=2,max=100"`
	Email          string   `json:"email" validate:"required,email"`
	Phone          string   `json:"phone" validate:"required,phone"`
	Date           string   `json:"date" validate:"required,bookingdate"`
	TimeSlot       string   `json:"time_slot" validate:"required,timeslot"`
	DurationHours  int      `json:"duration_hours" validate:"required,min=1,max=12"`
	PartySize      int      `json:"party_size" validate:"required,min=1,max=10"`
	SetupType      string   `json:"setup_type" validate:"required,max=50"`
	ServiceID      string   `json:"service_id" validate:"required"`
	AddonIDs       []string `json:"addon_ids" validate:"dive,required"`
	SpecialRequest string   `json:"special_request" validate:"max=1000"`
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=2000"`
}

var (
	phoneRe    = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	timeSlotRe = regexp.MustCompile(`^([01]\d|2[0-3]):00$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(fl.Field().String())
		return phoneRe.MatchString(cleaned)
	})
	v.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
		return timeSlotRe.MatchString(fl.Field().String())
	})
	v.RegisterValidation("bookingdate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})

	return v
}

var messages = map[string]string{
	"required":    "is required",
	"email":       "must be a valid email address",
	"phone":       "must be a valid phone number",
	"timeslot":    "must be a whole-hour label like 14:00",
	"bookingdate": "must be a calendar day in YYYY-MM-DD format",
	"min":         "is below the allowed minimum",
	"max":         "exceeds the allowed maximum",
}

func fieldErrors(err error) []domain.FieldError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []domain.FieldError{{Path: "request", Message: err.Error()}}
	}

	out := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		// strip the struct name from the namespace, keep nested paths
		path := fe.Namespace()
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		}
		out = append(out, domain.FieldError{Path: jsonName(path), Message: msg})
	}
	return out
}

// jsonName maps the Go field namespace to the wire name, e.g.
// "TimeSlot" -> "time_slot", "AddonIDs[1]" -> "addon_ids[1]".
func jsonName(path string) string {
	var b strings.Builder
	for i, r := range path {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && path[i-1] >= 'a' && path[i-1] <= 'z' {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Booking validates and normalizes a booking request.
func Booking(req BookingRequest) (BookingRequest, *domain.ValidationError) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.SetupType = strings.TrimSpace(req.SetupType)
	req.SpecialRequest = strings.TrimSpace(req.SpecialRequest)

	if err := validate.Struct(req); err != nil {
		return BookingRequest{}, &domain.ValidationError{Fields: fieldErrors(err)}
	}
	return req, nil
}

// Contact validates and normalizes a contact-form request.
func Contact(req ContactRequest) (ContactRequest, *domain.ValidationError) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	if err := validate.Struct(req); err != nil {
		return ContactRequest{}, &domain.ValidationError{Fields: fieldErrors(err)}
	}
	return req, nil
}
