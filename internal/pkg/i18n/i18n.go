// Package i18n holds the localized messages shown by the admin login page and
// the API error envelope. English is the fallback; Vietnamese is the second
// supported locale.
package i18n

import (
	"fmt"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/vi"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	vi_translations "github.com/go-playground/validator/v10/translations/vi"
	"golang.org/x/text/language"
)

// Message keys.
const (
	LoginErrorBlocked     = "login.error.blocked"
	LoginErrorDisabled    = "login.error.disabled"
	LoginErrorCredentials = "login.error.credentials"
	LoginErrorInvalid     = "login.error.invalid"
	LoginErrorGeneral     = "login.error.general"
	LoginMessageLogout    = "login.message.logout"
	LoginMessageExpired   = "login.message.expired"

	ErrorUnauthorized       = "error.unauthorized"
	ErrorForbidden          = "error.forbidden"
	ErrorRateLimited        = "error.rate_limited"
	ErrorInvalidCredentials = "error.invalid_credentials"
	ErrorAccountInactive    = "error.account_inactive"
	ErrorUserExists         = "error.user_exists"
	ErrorInvalidInput       = "error.invalid_input"
	ErrorNotFound           = "error.not_found"
	ErrorInternal           = "error.internal"
)

var catalog = map[string]map[string]string{
	"en": {
		LoginErrorBlocked:     "Too many failed login attempts. Please try again in {0} minutes.",
		LoginErrorDisabled:    "Your account has been disabled. Please contact an administrator.",
		LoginErrorCredentials: "Invalid email or password. {0} attempts remaining.",
		LoginErrorInvalid:     "Invalid email or password. No attempts remaining.",
		LoginErrorGeneral:     "Login failed. Please try again.",
		LoginMessageLogout:    "You have been signed out.",
		LoginMessageExpired:   "Your session has expired or was opened elsewhere. Please sign in again.",

		ErrorUnauthorized:       "Full authentication is required to access this resource",
		ErrorForbidden:          "You do not have permission to access this resource",
		ErrorRateLimited:        "Too many failed attempts. Please try again in {0} minutes.",
		ErrorInvalidCredentials: "Invalid email or password",
		ErrorAccountInactive:    "Account is disabled",
		ErrorUserExists:         "Email is already registered",
		ErrorInvalidInput:       "Invalid request",
		ErrorNotFound:           "Resource not found",
		ErrorInternal:           "An unexpected error occurred",
	},
	"vi": {
		LoginErrorBlocked:     "Đăng nhập sai quá nhiều lần. Vui lòng thử lại sau {0} phút.",
		LoginErrorDisabled:    "Tài khoản của bạn đã bị vô hiệu hóa. Vui lòng liên hệ quản trị viên.",
		LoginErrorCredentials: "Email hoặc mật khẩu không đúng. Còn {0} lần thử.",
		LoginErrorInvalid:     "Email hoặc mật khẩu không đúng. Bạn đã hết lượt thử.",
		LoginErrorGeneral:     "Đăng nhập thất bại. Vui lòng thử lại.",
		LoginMessageLogout:    "Bạn đã đăng xuất.",
		LoginMessageExpired:   "Phiên làm việc đã hết hạn hoặc được mở ở nơi khác. Vui lòng đăng nhập lại.",

		ErrorUnauthorized:       "Cần xác thực để truy cập tài nguyên này",
		ErrorForbidden:          "Bạn không có quyền truy cập tài nguyên này",
		ErrorRateLimited:        "Thử sai quá nhiều lần. Vui lòng thử lại sau {0} phút.",
		ErrorInvalidCredentials: "Email hoặc mật khẩu không đúng",
		ErrorAccountInactive:    "Tài khoản đã bị vô hiệu hóa",
		ErrorUserExists:         "Email đã được đăng ký",
		ErrorInvalidInput:       "Yêu cầu không hợp lệ",
		ErrorNotFound:           "Không tìm thấy tài nguyên",
		ErrorInternal:           "Đã xảy ra lỗi không mong muốn",
	},
}

// Bundle resolves a Localizer from an Accept-Language header.
type Bundle struct {
	uni     *ut.UniversalTranslator
	matcher language.Matcher
	locales []string
}

// New builds the bundle with every catalog entry registered.
func New() (*Bundle, error) {
	fallback := en.New()
	supported := []locales.Translator{fallback, vi.New()}

	b := &Bundle{
		uni:     ut.New(fallback, supported...),
		matcher: language.NewMatcher([]language.Tag{language.English, language.Vietnamese}),
		locales: []string{"en", "vi"},
	}

	for _, loc := range b.locales {
		tr, _ := b.uni.GetTranslator(loc)
		for key, text := range catalog[loc] {
			if err := tr.Add(key, text, false); err != nil {
				return nil, fmt.Errorf("i18n: add %s/%s: %w", loc, key, err)
			}
		}
	}
	return b, nil
}

// MustNew is New for static wiring in tests and main.
func MustNew() *Bundle {
	b, err := New()
	if err != nil {
		panic(err)
	}
	return b
}

// For negotiates the best supported locale for acceptLanguage.
func (b *Bundle) For(acceptLanguage string) Localizer {
	tags, _, _ := language.ParseAcceptLanguage(acceptLanguage)
	_, idx, _ := b.matcher.Match(tags...)
	tr, _ := b.uni.GetTranslator(b.locales[idx])
	return Localizer{tr: tr}
}

// RegisterValidator installs validator field messages for every locale.
func (b *Bundle) RegisterValidator(v *validator.Validate) error {
	trEn, _ := b.uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, trEn); err != nil {
		return fmt.Errorf("i18n: validator en: %w", err)
	}
	trVi, _ := b.uni.GetTranslator("vi")
	if err := vi_translations.RegisterDefaultTranslations(v, trVi); err != nil {
		return fmt.Errorf("i18n: validator vi: %w", err)
	}
	return nil
}

// Localizer renders messages for one locale.
type Localizer struct {
	tr ut.Translator
}

// Locale returns the negotiated locale name.
func (l Localizer) Locale() string {
	return l.tr.Locale()
}

// Translator exposes the underlying translator for validator errors.
func (l Localizer) Translator() ut.Translator {
	return l.tr
}

// T renders key with positional params. An unknown key renders as itself.
func (l Localizer) T(key string, params ...any) string {
	args := make([]string, len(params))
	for i, p := range params {
		args[i] = fmt.Sprint(p)
	}
	msg, err := l.tr.T(key, args...)
	if err != nil {
		return key
	}
	return msg
}
