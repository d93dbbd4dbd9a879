// Package client drives one query/render cycle against the availability
// server: it sends the query, handles the login prompt, falls back to the
// demo dataset when the server is unreachable and renders cards to a View.
package client

import (
	"context"
	"errors"
	"sync"

	"classfinder/models"

	"go.uber.org/zap"
)

// API is the server surface the Controller needs.
type API interface {
	Query(ctx context.Context, week *int) (*models.QueryResult, error)
	Login(ctx context.Context, creds models.Credentials) error
	Fallback(ctx context.Context) (*models.QueryResult, error)
}

// Outcome tells the caller how a query cycle ended.
type Outcome int

const (
	Rendered Outcome = iota
	RenderedFallback
	LoginRequired
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Rendered:
		return "rendered"
	case RenderedFallback:
		return "rendered-fallback"
	case LoginRequired:
		return "login-required"
	default:
		return "failed"
	}
}

type Controller struct {
	api    API
	view   View
	logger *zap.Logger

	mu       sync.Mutex
	lastWeek *int
}

func NewController(api API, view View, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{api: api, view: view, logger: logger}
}

// SubmitQuery runs one query cycle. initial marks the automatic load on
// start-up, whose warnings and errors stay silent.
func (c *Controller) SubmitQuery(ctx context.Context, week *int, initial bool) Outcome {
	c.mu.Lock()
	c.lastWeek = week
	c.mu.Unlock()

	c.view.Clear()
	c.view.SetBusy(true)
	defer c.view.SetBusy(false)

	result, err := c.api.Query(ctx, week)
	if err == nil {
		c.Render(result)
		return Rendered
	}
	if errors.Is(err, ErrUnauthorized) {
		c.view.ShowLogin()
		return LoginRequired
	}

	c.logger.Warn("query failed, trying demo data", zap.Error(err))
	fallback, ferr := c.api.Fallback(ctx)
	if ferr != nil {
		c.logger.Warn("demo data unavailable", zap.Error(ferr))
		if !initial {
			c.view.ShowError(QueryErrorPrefix + err.Error())
		}
		return Failed
	}
	c.Render(fallback)
	if !initial {
		c.view.ShowWarning(FallbackWarning)
	}
	return RenderedFallback
}

// SubmitLogin posts credentials; on success it closes the prompt and repeats
// the last query, returning that query's outcome.
func (c *Controller) SubmitLogin(ctx context.Context, creds models.Credentials) (Outcome, error) {
	c.view.SetBusy(true)
	err := c.api.Login(ctx, creds)
	c.view.SetBusy(false)

	if err != nil {
		msg := LoginFailedMessage
		var se *StatusError
		if errors.As(err, &se) && se.Detail != "" {
			msg = se.Detail
		}
		c.view.ShowLoginError(msg)
		return LoginRequired, err
	}

	c.view.HideLogin()
	return c.SubmitQuery(ctx, c.LastWeek(), false), nil
}

// LastWeek is the week of the most recent SubmitQuery.
func (c *Controller) LastWeek() *int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastWeek
}

// Render replaces the results with result's cards, or the placeholder when
// there are no buildings.
func (c *Controller) Render(result *models.QueryResult) {
	c.view.Clear()
	if result == nil || len(result.Buildings) == 0 {
		c.view.ShowEmpty()
		return
	}
	cards := make([]Card, 0, len(result.Buildings))
	for _, b := range result.Buildings {
		cards = append(cards, NewCard(b))
	}
	c.view.ShowCards(result.Week, cards)
}
