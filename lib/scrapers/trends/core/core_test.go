package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gtrends/lib/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginPage = `<html><body><form>
<input type="hidden"
       name="GALX" value="token-123">
<input name="Email"><input name="Passwd" type="password">
</form></body></html>`

const csvBody = "Web Search interest: banana\nWorldwide; 2006\n\nInterest over time\nDay,banana\n2006-01-01,40\n"

func newFakeSite(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ServiceLoginBoxAuth", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, loginPage)
			return
		}
		err := r.ParseForm()
		assert.NoError(t, err)
		if r.PostForm.Get("GALX") != "token-123" ||
			r.PostForm.Get("Email") != "alice" ||
			r.PostForm.Get("Passwd") != "hunter2" {
			fmt.Fprint(w, loginPage)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "SID", Value: "session", Path: "/"})
		fmt.Fprint(w, "<html><body>welcome</body></html>")
	})
	mux.HandleFunc("/CheckCookie", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "LoginDoneHtml", r.URL.Query().Get("chtml"))
	})
	mux.HandleFunc("/trends/trendsReport", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("SID")
		if err != nil || cookie.Value != "session" {
			fmt.Fprint(w, SignInMessage)
			return
		}
		assert.Equal(t, "banana", r.URL.Query().Get("q"))
		assert.Equal(t, "1/2006 2m", r.URL.Query().Get("date"))
		fmt.Fprint(w, csvBody)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {})
	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, baseUrl string) *Client {
	client, err := NewClient(ClientOptions{
		AccountsUrl:       baseUrl,
		TrendsUrl:         baseUrl,
		RequestsPerSecond: 100,
	}, telemetry.SlogAPI{})
	require.NoError(t, err)
	return client
}

var bananaQuery = Query{
	Terms: []string{"banana"},
	Month: 1,
	Year:  2006,
	Span:  "2m",
}

func TestLoginAndFetch(t *testing.T) {
	server := newFakeSite(t)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	client := newTestClient(t, server.URL)
	session, err := client.Login(ctx, Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)

	body, err := session.Fetch(ctx, bananaQuery)
	require.NoError(t, err)
	require.Equal(t, csvBody, body)
}

func TestLoginRejected(t *testing.T) {
	server := newFakeSite(t)
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Login(context.Background(), Credentials{Username: "alice", Password: "wrong"})
	require.ErrorIs(t, err, ErrLoginFailed)
}

func TestLoginMissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>maintenance</body></html>")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Login(context.Background(), Credentials{Username: "alice", Password: "hunter2"})
	require.ErrorIs(t, err, ErrLoginFailed)
}

func TestFetchSignInRequired(t *testing.T) {
	server := newFakeSite(t)
	defer server.Close()

	client := newTestClient(t, server.URL)
	session, err := client.Login(context.Background(), Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)

	// dropping the jar loses the login cookie
	session.http.SetCookieJar(nil)

	_, err = session.Fetch(context.Background(), bananaQuery)
	var signIn *SignInRequiredError
	require.True(t, errors.As(err, &signIn))
	require.Equal(t, SignInMessage, signIn.Message)
}
