// Package riotapi is a minimal client for the Riot Games HTTP API, limited
// to what the ladder needs: resolving Riot IDs and reading ranked standings.
package riotapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path"
	"time"

	"golang.org/x/time/rate"
)

// API holds the necessary state to communicate with the Riot API.
type API struct {
	http     http.Client
	key      string
	region   string
	platform string
	limiter  *rate.Limiter
}

// New creates a new authenticated, rate-limited access point to the API.
// region is the account routing value (eg. "europe"), platform the league
// routing value (eg. "euw1").
func New(key, region, platform string) *API {
	return &API{
		// Development keys are allowed 20 requests per second.
		limiter:  rate.NewLimiter(20, 1),
		key:      key,
		region:   region,
		platform: platform,
		http: http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ErrNotFound is returned when the API has no data for the given input, eg.
// a Riot ID that does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotRanked is returned when an account exists but has no solo queue
// ranking this season.
var ErrNotRanked = errors.New("account has no ranked entry")

// Account is a Riot account as resolved from a game name and tag line.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// LeagueEntry is one queue's ranked standing for an account.
type LeagueEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Division     string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

const soloQueue = "RANKED_SOLO_5x5"

func (api *API) getURL(host, subPath string) string {
	u := url.URL{
		Scheme: "https",
		Host:   host + ".api.riotgames.com",
		Path:   path.Join("/", subPath),
	}
	return u.String()
}

// GetAccountByRiotID resolves a "GameName#TagLine" pair to an account.
func (api *API) GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (Account, error) {
	log.Printf("debug: resolving Riot ID %s#%s", gameName, tagLine)

	url := api.getURL(api.region, fmt.Sprintf(
		"/riot/account/v1/accounts/by-riot-id/%s/%s",
		url.PathEscape(gameName), url.PathEscape(tagLine),
	))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Account{}, err
	}

	var account Account
	if err := api.do(request, &account); err != nil {
		return Account{}, err
	}

	return account, nil
}

// GetSoloQueueEntry returns the solo queue standing of an account, or
// ErrNotRanked if it has none this season.
func (api *API) GetSoloQueueEntry(ctx context.Context, puuid string) (LeagueEntry, error) {
	log.Printf("debug: fetching league entries for PUUID %s", puuid)

	url := api.getURL(api.platform, "/lol/league/v4/entries/by-puuid/"+url.PathEscape(puuid))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return LeagueEntry{}, err
	}

	var entries []LeagueEntry
	if err := api.do(request, &entries); err != nil {
		return LeagueEntry{}, err
	}

	for k := range entries {
		if entries[k].QueueType == soloQueue {
			return entries[k], nil
		}
	}

	return LeagueEntry{}, ErrNotRanked
}

var errRateLimit = errors.New("triggered API rate-limiter")

// do performs a rate-limited request on the API and writes the JSON-decoded
// response body in response.
func (api *API) do(request *http.Request, response interface{}) error {
	var tries int

	for {
		err := api.doInner(request, response)
		if errors.Is(err, errRateLimit) {
			tries++
			log.Printf("warning: rate-limited %d times", tries)
			continue
		}

		return err
	}
}

func (api *API) doInner(request *http.Request, response interface{}) error {
	start := time.Now()
	if err := api.limiter.Wait(request.Context()); err != nil {
		return err
	}
	log.Printf("debug: waited %s before calling API", time.Since(start))

	request.Header.Set("X-Riot-Token", api.key)

	res, err := api.http.Do(request)
	if err != nil {
		return fmt.Errorf("unable to perform HTTP request: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return errRateLimit
	case res.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case res.StatusCode != http.StatusOK:
		return fmt.Errorf("got status code %d", res.StatusCode)
	}

	dec := json.NewDecoder(res.Body)
	if err := dec.Decode(&response); err != nil {
		return fmt.Errorf("unable to parse response: %s", err)
	}

	return nil
}
