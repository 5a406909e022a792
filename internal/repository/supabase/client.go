package supabase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/postgrest-go"

	"github.com/rocketscienceinc/lobby-backend/internal/apperror"
	"github.com/rocketscienceinc/lobby-backend/internal/entity"
	"github.com/rocketscienceinc/lobby-backend/internal/repository"
)

const (
	authPath   = "/auth/v1"
	restPath   = "/rest/v1"
	restSchema = "public"

	gamesTable     = "games"
	returnRows     = "representation"
	noCount        = ""
	columnID       = "id"
	columnOther    = "other"
	filterNullable = "null"
)

// Client holds the project settings. Every session gets its own auth and rest
// clients carrying the caller's token, nothing caller-specific is shared.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
	}
}

func (that *Client) Open(credential string) repository.Session {
	recorder := &statusRecorder{next: http.DefaultTransport}

	auth := gotrue.New("", that.apiKey).
		WithCustomGoTrueURL(that.baseURL + authPath).
		WithClient(http.Client{Timeout: that.timeout, Transport: recorder}).
		WithToken(credential)

	rest := postgrest.NewClient(that.baseURL+restPath, restSchema, map[string]string{
		"apikey":        that.apiKey,
		"Authorization": "Bearer " + credential,
	})

	return &session{
		credential: credential,
		auth:       auth,
		authStatus: recorder,
		rest:       rest,
	}
}

type session struct {
	credential string
	auth       gotrue.Client
	authStatus *statusRecorder
	rest       *postgrest.Client
}

func (that *session) CurrentUser(_ context.Context) (string, error) {
	if that.credential == "" {
		return "", apperror.ErrUnauthorized
	}

	user, err := that.auth.GetUser()
	if status := that.authStatus.last; status == http.StatusUnauthorized || status == http.StatusForbidden {
		return "", apperror.ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil || user.ID == uuid.Nil {
		return "", apperror.ErrUnauthorized
	}

	return user.ID.String(), nil
}

func (that *session) InsertGame(_ context.Context, game *entity.Game) (*entity.Game, error) {
	if that.rest.ClientError != nil {
		return nil, fmt.Errorf("invalid store client: %w", that.rest.ClientError)
	}

	var games []entity.Game
	_, err := that.rest.From(gamesTable).
		Insert([]*entity.Game{game}, false, "", returnRows, noCount).
		ExecuteTo(&games)
	if err != nil {
		return nil, fmt.Errorf("failed to insert game: %w", err)
	}

	if len(games) == 0 {
		return game, nil
	}

	return &games[0], nil
}

func (that *session) GetGameByID(_ context.Context, id string) (*entity.Game, error) {
	if that.rest.ClientError != nil {
		return nil, fmt.Errorf("invalid store client: %w", that.rest.ClientError)
	}

	var games []entity.Game
	_, err := that.rest.From(gamesTable).
		Select("*", noCount, false).
		Eq(columnID, id).
		ExecuteTo(&games)
	if err != nil {
		return nil, fmt.Errorf("failed to select game: %w", err)
	}

	if len(games) == 0 {
		return nil, repository.ErrGameNotFound
	}

	return &games[0], nil
}

// JoinGame - the other=is.null filter makes the store apply the update only while the seat is free.
func (that *session) JoinGame(_ context.Context, id, other string) (*entity.Game, error) {
	if that.rest.ClientError != nil {
		return nil, fmt.Errorf("invalid store client: %w", that.rest.ClientError)
	}

	var games []entity.Game
	_, err := that.rest.From(gamesTable).
		Update(map[string]string{columnOther: other}, returnRows, noCount).
		Eq(columnID, id).
		Is(columnOther, filterNullable).
		ExecuteTo(&games)
	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if len(games) == 0 {
		return nil, apperror.ErrGameAlreadyJoined
	}

	return &games[0], nil
}

// statusRecorder remembers the status of the last auth response, the auth
// client only reports failures as formatted text.
type statusRecorder struct {
	next http.RoundTripper
	last int
}

func (that *statusRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := that.next.RoundTrip(req)
	if resp != nil {
		that.last = resp.StatusCode
	}
	return resp, err
}
