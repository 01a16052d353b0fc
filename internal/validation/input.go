package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ignatzorin/talent-sift/internal/pkg/apperror"
)

// Константы валидации
const (
	MaxJobTitleLength       = 200
	MaxJobDescriptionLength = 20000
	MaxSkillLength          = 50
	MaxSkillsCount          = 50
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
)

// ErrUnauthorizedDomain - email не принадлежит разрешённой компании.
var ErrUnauthorizedDomain = apperror.New(apperror.ErrCodeForbidden, "Unauthorized company domain")

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	localPart, domainPart, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domainPart, "@") {
		return fmt.Errorf("некорректный формат email")
	}

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !emailLocalRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// EmailDomain возвращает домен email в нижнем регистре.
func EmailDomain(email string) string {
	_, domain, ok := strings.Cut(strings.ToLower(strings.TrimSpace(email)), "@")
	if !ok {
		return ""
	}
	return domain
}

// CheckCompanyDomain допускает email разрешённых доменов и их поддоменов.
// Пустой список разрешает любой корректный email.
func CheckCompanyDomain(email string, allowed []string) error {
	if err := ValidateEmail(email); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, "Invalid email address")
	}
	if len(allowed) == 0 {
		return nil
	}

	domain := EmailDomain(email)
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if domain == a || strings.HasSuffix(domain, "."+a) {
			return nil
		}
	}
	return ErrUnauthorizedDomain
}

// MissingFields возвращает имена пустых обязательных полей в порядке names.
func MissingFields(values map[string]string, names ...string) []string {
	var missing []string
	for _, name := range names {
		if strings.TrimSpace(values[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateSkills проверяет список ключевых навыков.
func ValidateSkills(skills []string) error {
	if len(skills) > MaxSkillsCount {
		return fmt.Errorf("количество навыков не может превышать %d", MaxSkillsCount)
	}

	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			return fmt.Errorf("навык не может быть пустым")
		}
		if utf8.RuneCountInString(skill) > MaxSkillLength {
			return fmt.Errorf("навык не может быть длиннее %d символов", MaxSkillLength)
		}
	}
	return nil
}
