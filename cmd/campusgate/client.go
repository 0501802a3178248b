package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/BrandonDHaskell/campusgate/internal/gateway"
	"github.com/BrandonDHaskell/campusgate/internal/session"
)

func openSessionStore() (*session.Store, error) {
	path := cfg.Client.SessionPath
	if path == "" {
		var err error
		if path, err = session.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return session.NewStore(path), nil
}

// loadSession returns the store and the signed-in session, if any. A
// missing session is not an error here; callers decide whether they need
// one.
func loadSession() (*session.Store, *session.Session, error) {
	store, err := openSessionStore()
	if err != nil {
		return nil, nil, err
	}
	sess, err := store.Load()
	if errors.Is(err, session.ErrNoSession) {
		return store, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return store, &sess, nil
}

func newGateway(tokens gateway.TokenSource) *gateway.Client {
	return gateway.New(cfg.Client.APIBaseURL,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.Client.RequestTimeout}),
		gateway.WithTokenSource(tokens),
		gateway.WithStationID(cfg.Client.StationID),
	)
}

// readPassword takes the flag value or, when empty, one line from in.
func readPassword(flag string, in io.Reader, out io.Writer) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(out, "Contraseña: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// describe renders an error for the terminal, including the HTTP status
// when the server answered.
func describe(err error) string {
	var ge *gateway.Error
	if errors.As(err, &ge) && ge.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d)", ge.Message, ge.Status)
	}
	return err.Error()
}
