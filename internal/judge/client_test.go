package judge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

func TestClient_Execute_Success(t *testing.T) {
	// Arrange: сервер возвращает stdout исполнения
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/submissions", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("wait"))
		assert.Equal(t, "test-key", r.Header.Get("X-Auth-Token"))

		var req ExecRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "print(input())", req.SourceCode)
		assert.Equal(t, 71, req.LanguageID)
		assert.Equal(t, "42", req.Stdin)

		json.NewEncoder(w).Encode(Execution{Stdout: "42\n"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 5*time.Second)

	// Act
	execution, err := client.Execute(context.Background(), ExecRequest{
		SourceCode: "print(input())",
		LanguageID: 71,
		Stdin:      "42",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "42\n", execution.Stdout)
	assert.False(t, execution.HasCompileError())
	assert.False(t, execution.HasRuntimeError())
}

func TestClient_Execute_CompileError(t *testing.T) {
	// Arrange: judge вернул вывод компилятора - это не ошибка клиента
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Execution{CompileOutput: "main.c:1: error: expected ';'"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)

	// Act
	execution, err := client.Execute(context.Background(), ExecRequest{SourceCode: "int main({", LanguageID: 50})

	// Assert
	require.NoError(t, err)
	assert.True(t, execution.HasCompileError())
}

func TestClient_Execute_ServerError(t *testing.T) {
	// Arrange: 5xx от judge = инфраструктурный сбой, не вердикт
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)

	// Act
	_, err := client.Execute(context.Background(), ExecRequest{SourceCode: "x", LanguageID: 71})

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestClient_Execute_Timeout(t *testing.T) {
	// Arrange: сервер отвечает дольше таймаута клиента
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(Execution{Stdout: "late"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 50*time.Millisecond)

	// Act
	_, err := client.Execute(context.Background(), ExecRequest{SourceCode: "x", LanguageID: 71})

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamTimeout)
}

func TestClient_Execute_TransportFailure(t *testing.T) {
	// Arrange: закрытый сервер = транспортная ошибка
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "", time.Second)

	// Act
	_, err := client.Execute(context.Background(), ExecRequest{SourceCode: "x", LanguageID: 71})

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}
