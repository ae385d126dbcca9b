// redact маскирует персональные данные перед записью в лог.
package redact

import "strings"

// Email оставляет первые два символа локальной части и домен: "jo***@mail.com".
func Email(s string) string {
	local, domain, ok := strings.Cut(strings.TrimSpace(s), "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return "***"
	}

	if len(local) > 2 {
		local = local[:2] + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Token оставляет последние четыре символа токена: "***Xy9z".
// Короткие токены маскируются целиком.
func Token(s string) string {
	if len(s) < 16 {
		return "***"
	}

	return "***" + s[len(s)-4:]
}
