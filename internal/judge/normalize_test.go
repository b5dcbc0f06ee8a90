package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_CRLF(t *testing.T) {
	// Act & Assert: CRLF приводится к LF
	assert.Equal(t, "42", Normalize("42\r\n"))
	assert.Equal(t, "1\n2\n3", Normalize("1\r\n2\r\n3\r\n"))
}

func TestNormalize_TrimsEdges(t *testing.T) {
	assert.Equal(t, "Hello", Normalize("  Hello \n"))
	assert.Equal(t, "", Normalize("   \r\n "))
}

func TestOutputsEqual(t *testing.T) {
	// Arrange & Act & Assert: косметика не влияет на сравнение
	assert.True(t, OutputsEqual("42\r\n", "42\n"))
	assert.True(t, OutputsEqual("Hello", "Hello "))

	// содержимое сравнивается строго
	assert.False(t, OutputsEqual("Hello", "Hell"))
	assert.False(t, OutputsEqual("a\nb", "a b"))

	// внутренние переводы строк значимы, но CRLF/LF эквивалентны
	assert.True(t, OutputsEqual("a\r\nb", "a\nb"))
}
