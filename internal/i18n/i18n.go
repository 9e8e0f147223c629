package i18n

import (
	"errors"
	"net/http"

	"golang.org/x/text/language"

	"github.com/AlexTLDR/agencydesk/internal/utils"
)

type Language string

const (
	English Language = "en"
	Arabic  Language = "ar"
)

var matcher = language.NewMatcher([]language.Tag{language.English, language.Arabic})

// GetLanguageFromRequest extracts language from the lang query param, the
// lang cookie, then Accept-Language. English is the default.
func GetLanguageFromRequest(r *http.Request) Language {
	// Check query parameter first
	if lang, ok := parse(r.URL.Query().Get("lang")); ok {
		return lang
	}

	// Check cookie
	if cookie, err := r.Cookie("lang"); err == nil {
		if lang, ok := parse(cookie.Value); ok {
			return lang
		}
	}

	if accept := r.Header.Get("Accept-Language"); accept != "" {
		tags, _, err := language.ParseAcceptLanguage(accept)
		if err == nil && len(tags) > 0 {
			_, idx, conf := matcher.Match(tags...)
			if conf != language.No && idx == 1 {
				return Arabic
			}
		}
	}

	return English
}

func parse(value string) (Language, bool) {
	switch Language(value) {
	case English:
		return English, true
	case Arabic:
		return Arabic, true
	}
	return "", false
}

// Message keys
const (
	NameRequired    = "name_required"
	NameTooLong     = "name_too_long"
	PhoneRequired   = "phone_required"
	PhoneTooShort   = "phone_too_short"
	PhoneTooLong    = "phone_too_long"
	PhoneInvalid    = "phone_invalid"
	DuplicatesFound = "duplicates_found"
	NotFound        = "not_found"
	InvalidRequest  = "invalid_request"
	InternalError   = "internal_error"

	ColumnName         = "column_name"
	ColumnPhone        = "column_phone"
	ColumnDisplayPhone = "column_display_phone"
	ColumnCountry      = "column_country"
	ColumnCreated      = "column_created"
)

var messages = map[Language]map[string]string{
	English: {
		NameRequired:    "Customer name is required",
		NameTooLong:     "Customer name is too long",
		PhoneRequired:   "Phone number is required",
		PhoneTooShort:   "Phone number is too short",
		PhoneTooLong:    "Phone number is too long",
		PhoneInvalid:    "Invalid phone number format",
		DuplicatesFound: "Similar customers already exist. Confirm this is a different person to continue.",
		NotFound:        "Customer not found",
		InvalidRequest:  "Invalid request",
		InternalError:   "Something went wrong, please try again",

		ColumnName:         "Name",
		ColumnPhone:        "Phone",
		ColumnDisplayPhone: "Display Phone",
		ColumnCountry:      "Country",
		ColumnCreated:      "Created",
	},
	Arabic: {
		NameRequired:    "اسم العميل مطلوب",
		NameTooLong:     "اسم العميل طويل جداً",
		PhoneRequired:   "رقم الهاتف مطلوب",
		PhoneTooShort:   "رقم الهاتف قصير جداً",
		PhoneTooLong:    "رقم الهاتف طويل جداً",
		PhoneInvalid:    "صيغة رقم الهاتف غير صحيحة",
		DuplicatesFound: "يوجد عملاء بأسماء مشابهة. يرجى التأكيد أن هذا شخص مختلف للمتابعة.",
		NotFound:        "العميل غير موجود",
		InvalidRequest:  "طلب غير صالح",
		InternalError:   "حدث خطأ، يرجى المحاولة مرة أخرى",

		ColumnName:         "الاسم",
		ColumnPhone:        "الهاتف",
		ColumnDisplayPhone: "الهاتف المنسق",
		ColumnCountry:      "الدولة",
		ColumnCreated:      "تاريخ الإنشاء",
	},
}

// T returns the message for key, falling back to English and then the key itself
func T(lang Language, key string) string {
	if msg, ok := messages[lang][key]; ok {
		return msg
	}
	if msg, ok := messages[English][key]; ok {
		return msg
	}
	return key
}

// PhoneError translates a utils.ValidatePhoneInput error
func PhoneError(lang Language, err error) string {
	switch {
	case errors.Is(err, utils.ErrPhoneRequired):
		return T(lang, PhoneRequired)
	case errors.Is(err, utils.ErrPhoneTooShort):
		return T(lang, PhoneTooShort)
	case errors.Is(err, utils.ErrPhoneTooLong):
		return T(lang, PhoneTooLong)
	}
	return T(lang, PhoneInvalid)
}
