package utas

import (
	"crypto/tls"
	"encoding/json"
	"futassist/lib/restyutil"
	"time"

	"github.com/go-resty/resty/v2"
)

// Endpoints are the absolute urls of every resource used, they differ
// between game releases.
type Endpoints struct {
	Auth        string `json:"auth"`
	Pids        string `json:"pids"`
	AccountInfo string `json:"account_info"`
	SessionAuth string `json:"session_auth"`
	Catalog     string `json:"catalog"`
	Squad       string `json:"squad"`
	Club        string `json:"club"`
	Tradepile   string `json:"tradepile"`
	// relisting uses the `/relist` sub-resource
	AuctionHouse string `json:"auction_house"`
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Auth:         "https://accounts.ea.com/connect/auth",
		Pids:         "https://gateway.ea.com/proxy/identity/pids/me",
		AccountInfo:  "https://utas.external.s2.fut.ea.com/ut/game/fifa23/v2/user/accountinfo",
		SessionAuth:  "https://utas.mob.v1.fut.ea.com/ut/auth",
		Catalog:      "https://www.ea.com/ea-sports-fc/ultimate-team/web-app/content/24B23FDE-7835-41C2-87A2-F453DFDB2E82/2024/fut/items/web/players.json",
		Squad:        "https://utas.mob.v1.fut.ea.com/ut/game/fc24/squad/active",
		Club:         "https://utas.mob.v2.fut.ea.com/ut/game/fc24/club",
		Tradepile:    "https://utas.mob.v1.fut.ea.com/ut/game/fifa23/tradepile",
		AuctionHouse: "https://utas.mob.v1.fut.ea.com/ut/game/fifa23/auctionhouse",
	}
}

// Game identifies the client to the game backend.
type Game struct {
	ClientID              string `json:"client_id"`
	Sku                   string `json:"sku"`
	GameSku               string `json:"game_sku"`
	ReturningUserGameYear string `json:"returning_user_game_year"`
	Locale                string `json:"locale"`
}

func DefaultGame() Game {
	return Game{
		ClientID:              "FUTWEB_BK_OL_SERVER",
		Sku:                   "FUT23WEB",
		GameSku:               "FFA23PS5",
		ReturningUserGameYear: "2022",
		Locale:                "en-US",
	}
}

const nucleusRedirect = "nucleus:rest"

type ClientOptions struct {
	Endpoints Endpoints
	Game      Game
	UserAgent string
	Timeout   time.Duration
	// the game backend's certificates do not always verify
	InsecureSkipVerify bool
}

type Client struct {
	opts ClientOptions
	http *resty.Client
	sid  string
}

func NewClient(opts ClientOptions) *Client {
	if opts.Endpoints == (Endpoints{}) {
		opts.Endpoints = DefaultEndpoints()
	}
	if opts.Game == (Game{}) {
		opts.Game = DefaultGame()
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	if opts.UserAgent != "" {
		client.SetHeader("user-agent", opts.UserAgent)
	}
	if opts.InsecureSkipVerify {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	client.SetTimeout(opts.Timeout)
	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return &Client{
		opts: opts,
		http: client,
	}
}

// SetSession binds the client to a game session id.
func (c *Client) SetSession(sid string) {
	c.sid = sid
}

func (c *Client) Session() string {
	return c.sid
}

func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

// game returns a request authenticated with the game session.
func (c *Client) game() (*resty.Request, error) {
	if c.sid == "" {
		return nil, ErrNoSession
	}
	return c.http.R().SetHeader("X-UT-SID", c.sid), nil
}

// decode checks the outcome of a request and unmarshals the body into out
// when out is not nil.
func decode(res *resty.Response, err error, out any) error {
	if err != nil {
		return err
	}
	if res.IsError() {
		return &StatusError{Status: res.StatusCode(), Body: res.String()}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(res.Body(), out)
}
