// services/query/service.go
package query

import (
	"context"
	"fmt"

	resultsRepo "classfinder/database/repository/results"
	"classfinder/models"
	"classfinder/services/availability"
	"classfinder/services/portal"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CurrentBuilding names the page itself when the portal shows no building selector.
const CurrentBuilding = "当前教学楼"

// Session is the part of a portal session the query needs.
type Session interface {
	Login(ctx context.Context, creds models.Credentials) error
	RoomView(ctx context.Context, week *int, buildingID string) (*portal.Page, error)
}

// SessionFactory opens a fresh portal session.
type SessionFactory func() (Session, error)

// PortalSessions adapts a *portal.Portal to a SessionFactory.
func PortalSessions(p *portal.Portal) SessionFactory {
	return func() (Session, error) {
		sess, err := p.NewSession()
		if err != nil {
			return nil, err
		}
		return sess, nil
	}
}

// QueryService answers availability queries.
type QueryService interface {
	Query(ctx context.Context, creds models.Credentials, week *int) (*models.QueryResult, error)
	Refresh(ctx context.Context, creds models.Credentials, week *int) (*models.QueryResult, error)
	Verify(ctx context.Context, creds models.Credentials) error
}

// DefaultQueryService scrapes the portal, one session per call.
type DefaultQueryService struct {
	Sessions    SessionFactory
	Store       resultsRepo.ResultStore // optional
	DefaultWeek int
	Concurrency int
	Logger      *zap.Logger
}

// Verify logs into the portal and discards the session.
func (s *DefaultQueryService) Verify(ctx context.Context, creds models.Credentials) error {
	_, err := s.login(ctx, creds)
	return err
}

// Query computes the best room per building for week, or for the portal's
// current week when week is nil.
func (s *DefaultQueryService) Query(ctx context.Context, creds models.Credentials, week *int) (*models.QueryResult, error) {
	return s.run(ctx, creds, week, true)
}

// Refresh is Query without the cache lookup; the fresh result still
// replaces the stored one.
func (s *DefaultQueryService) Refresh(ctx context.Context, creds models.Credentials, week *int) (*models.QueryResult, error) {
	return s.run(ctx, creds, week, false)
}

func (s *DefaultQueryService) run(ctx context.Context, creds models.Credentials, week *int, useCache bool) (*models.QueryResult, error) {
	logger := s.logger()

	sess, err := s.login(ctx, creds)
	if err != nil {
		return nil, err
	}

	if useCache && week != nil {
		if cached := s.cached(ctx, *week); cached != nil {
			return cached, nil
		}
	}

	first, err := sess.RoomView(ctx, week, "")
	if err != nil {
		return nil, err
	}

	target := s.resolveWeek(week, first)
	if useCache && week == nil {
		if cached := s.cached(ctx, target); cached != nil {
			return cached, nil
		}
	}

	buildings, err := s.collect(ctx, sess, target, first)
	if err != nil {
		return nil, err
	}

	result := &models.QueryResult{Week: target, Buildings: buildings}
	if s.Store != nil {
		if err := s.Store.Set(ctx, target, result); err != nil {
			logger.Warn("failed to cache result", zap.Int("week", target), zap.Error(err))
		}
	}
	logger.Info("availability computed", zap.Int("week", target), zap.Int("buildings", len(buildings)))
	return result, nil
}

func (s *DefaultQueryService) login(ctx context.Context, creds models.Credentials) (Session, error) {
	sess, err := s.Sessions()
	if err != nil {
		return nil, fmt.Errorf("failed to open portal session: %w", err)
	}
	if err := sess.Login(ctx, creds); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *DefaultQueryService) resolveWeek(week *int, page *portal.Page) int {
	switch {
	case week != nil:
		return *week
	case page.Week != 0:
		return page.Week
	default:
		return s.DefaultWeek
	}
}

func (s *DefaultQueryService) cached(ctx context.Context, week int) *models.QueryResult {
	if s.Store == nil {
		return nil
	}
	result, ok, err := s.Store.Get(ctx, week)
	if err != nil {
		s.logger().Warn("cache lookup failed", zap.Int("week", week), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	s.logger().Debug("serving cached result", zap.Int("week", week))
	return result
}

// collect fetches every building's grid concurrently and keeps page order.
func (s *DefaultQueryService) collect(ctx context.Context, sess Session, week int, first *portal.Page) ([]models.BuildingAvailability, error) {
	options := first.Buildings
	if len(options) == 0 {
		options = []portal.BuildingOption{{Name: CurrentBuilding}}
	}

	found := make([]*models.BuildingAvailability, len(options))
	g, gctx := errgroup.WithContext(ctx)
	if s.Concurrency > 0 {
		g.SetLimit(s.Concurrency)
	}
	for i, opt := range options {
		g.Go(func() error {
			page := first
			if opt.ID != "" {
				var err error
				page, err = sess.RoomView(gctx, &week, opt.ID)
				if err != nil {
					return fmt.Errorf("building %s: %w", opt.Name, err)
				}
			}
			if best, ok := bestRoom(page); ok {
				found[i] = &models.BuildingAvailability{Building: buildingName(opt, best.Room), BestRoom: best}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	buildings := make([]models.BuildingAvailability, 0, len(found))
	for _, b := range found {
		if b != nil {
			buildings = append(buildings, *b)
		}
	}
	availability.SortBuildings(buildings)
	return buildings, nil
}

// buildingName falls back to the room code's prefix when the page had no
// building selector to name it.
func buildingName(opt portal.BuildingOption, room string) string {
	if opt.ID != "" {
		return opt.Name
	}
	if name := availability.BuildingName(room); name != availability.OtherBuilding {
		return name
	}
	return CurrentBuilding
}

func bestRoom(page *portal.Page) (models.RoomSlot, bool) {
	if !page.HasGrid {
		return models.RoomSlot{}, false
	}
	rooms := make([]models.RoomSlot, 0, len(page.Rooms))
	for _, row := range page.Rooms {
		rooms = append(rooms, availability.NewRoomSlot(row.Name, row.Slots))
	}
	return availability.Summarize(rooms)
}

func (s *DefaultQueryService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
