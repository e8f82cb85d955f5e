package garage61

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrivers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/teams/team-42/drivers", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"drivers": [
			{"name": " Alice "},
			{"name": "Bob/Smith"},
			{"name": ""}
		]}`)
	}))
	defer server.Close()

	client := New("secret")
	client.Endpoint = server.URL

	names, err := client.Drivers("team-42")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "BobSmith"}, names)
}

func TestDriversServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New("")
	client.Endpoint = server.URL

	_, err := client.Drivers("team-42")
	assert.Error(t, err)
}
