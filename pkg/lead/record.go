package lead

import (
	"strings"
)

// NotProvided is the sentinel stored in any canonical field the model did
// not supply. Blank values are normalised to it as well, so downstream
// consumers see one spelling for "unknown".
const NotProvided = "N/A"

// Canonical field names, in wire order.
const (
	FieldFirstName   = "FirstName"
	FieldLastName    = "LastName"
	FieldEmail       = "Email"
	FieldPhone       = "Phone"
	FieldMessage     = "Message"
	FieldInquiryType = "InquiryType"
)

// Fields lists the five canonical lead fields in marker order.
var Fields = []string{FieldFirstName, FieldLastName, FieldEmail, FieldPhone, FieldMessage}

// Record is a lead recovered from a marker line. All five canonical fields
// are always populated once a Record leaves this package.
type Record struct {
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	Email     string `json:"Email"`
	Phone     string `json:"Phone"`
	Message   string `json:"Message"`

	// InquiryType overrides the delivery label. Only the degraded path sets it.
	InquiryType string `json:"InquiryType,omitempty"`

	// Extra holds keys the split tier found that are not canonical,
	// capitalised. They never displace a canonical field.
	Extra map[string]string `json:"Extra,omitempty"`
}

// Get returns a canonical field by name.
func (r *Record) Get(field string) (string, bool) {
	switch field {
	case FieldFirstName:
		return r.FirstName, true
	case FieldLastName:
		return r.LastName, true
	case FieldEmail:
		return r.Email, true
	case FieldPhone:
		return r.Phone, true
	case FieldMessage:
		return r.Message, true
	}
	return "", false
}

func (r *Record) set(field, value string) bool {
	switch field {
	case FieldFirstName:
		r.FirstName = value
	case FieldLastName:
		r.LastName = value
	case FieldEmail:
		r.Email = value
	case FieldPhone:
		r.Phone = value
	case FieldMessage:
		r.Message = value
	default:
		return false
	}
	return true
}

// backfill replaces blank canonical fields with NotProvided.
func (r *Record) backfill() {
	for _, f := range Fields {
		v, _ := r.Get(f)
		if strings.TrimSpace(v) == "" {
			r.set(f, NotProvided)
		}
	}
}

// Sparse reports whether the fields a human needs to follow up on
// (first name, email, message) are all missing.
func (r *Record) Sparse() bool {
	return r.FirstName == NotProvided && r.Email == NotProvided && r.Message == NotProvided
}

// String renders the record in marker wire format. Extra keys are left out,
// so parsing the result reproduces the canonical fields.
func (r *Record) String() string {
	var sb strings.Builder
	for i, f := range Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		v, _ := r.Get(f)
		sb.WriteString(f)
		sb.WriteString(": ")
		sb.WriteString(v)
	}
	return sb.String()
}

// Payload returns the flat mapping the delivery webhook expects.
// defaultInquiry is used unless the record carries its own InquiryType.
func (r *Record) Payload(defaultInquiry string) map[string]string {
	inquiry := r.InquiryType
	if inquiry == "" {
		inquiry = defaultInquiry
	}
	return map[string]string{
		FieldFirstName:   r.FirstName,
		FieldLastName:    r.LastName,
		FieldEmail:       r.Email,
		FieldPhone:       r.Phone,
		FieldInquiryType: inquiry,
		FieldMessage:     r.Message,
	}
}
