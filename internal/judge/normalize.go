package judge

import (
	"strings"
)

// Normalize канонизирует вывод перед сравнением: CRLF → LF и обрезка
// пробельных символов по краям. Терпимо к косметике форматирования,
// строго к содержимому.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}

// OutputsEqual сравнивает ожидаемый и фактический вывод после нормализации
func OutputsEqual(expected, actual string) bool {
	return Normalize(expected) == Normalize(actual)
}
