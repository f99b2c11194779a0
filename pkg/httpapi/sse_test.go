package httpapi_test

import (
	"bufio"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsStream(t *testing.T) {
	t.Parallel()

	f := newFixture(t, defaultRegistry(), stubSender{})

	resp, err := http.Get(f.server.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// Trigger a delivery once the subscription is up.
	go func() {
		time.Sleep(50 * time.Millisecond)
		_, _ = http.Post(f.server.URL+"/notifications", "application/json",
			strings.NewReader(`{"target_user_id":"user-1","kind":"new_match","priority":1,"title":"t"}`))
	}()

	scanner := bufio.NewScanner(resp.Body)
	var eventLine, dataLine string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			eventLine = line
		}
		if strings.HasPrefix(line, "data: ") {
			dataLine = line
			break
		}
	}

	assert.Equal(t, "event: sent", eventLine)
	assert.Contains(t, dataLine, `"type":"sent"`)
	assert.Contains(t, dataLine, `"target_user_id":"user-1"`)
}
