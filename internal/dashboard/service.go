package dashboard

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/othmanee23/oraxonoptic/internal/stores"
)

// RepositoryPort defines the aggregate queries behind the dashboard.
type RepositoryPort interface {
	SalesTotals(ctx context.Context, storeID int64, now time.Time) (SalesTotals, error)
	StockAlerts(ctx context.Context, storeID int64) (int, error)
	WorkshopCounts(ctx context.Context, storeID int64) (WorkshopCounts, error)
	ClientsTotal(ctx context.Context, storeID int64) (int, error)
	UnreadMessages(ctx context.Context, storeID int64) (int, error)
}

var frenchPrinter = message.NewPrinter(language.French)

// Service assembles the dashboard summary for a store scope.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	group singleflight.Group
	now   func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Summary returns the counters for the scoped store. An empty scope is not
// an error: the screens render a zeroed summary until a store is picked.
func (s *Service) Summary(ctx context.Context, scope stores.Scope) (Summary, error) {
	if !scope.Selected() {
		return zeroSummary(), nil
	}
	storeID := *scope.StoreID
	key := strconv.FormatInt(storeID, 10)
	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		var summary Summary
		err := s.cache.FetchJSON(ctx, storeID, &summary, func(ctx context.Context) (interface{}, error) {
			return s.build(ctx, storeID)
		})
		return summary, err
	})
	if err != nil {
		return Summary{}, err
	}
	return value.(Summary), nil
}

func (s *Service) build(ctx context.Context, storeID int64) (Summary, error) {
	summary := Summary{StoreID: &storeID}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		totals, err := s.repo.SalesTotals(ctx, storeID, s.now().UTC())
		if err != nil {
			return err
		}
		summary.SalesTodayCents = totals.TodayCents
		summary.SalesMonthCents = totals.MonthCents
		summary.OrdersToday = totals.OrdersToday
		return nil
	})
	g.Go(func() error {
		alerts, err := s.repo.StockAlerts(ctx, storeID)
		if err != nil {
			return err
		}
		summary.StockAlerts = alerts
		return nil
	})
	g.Go(func() error {
		counts, err := s.repo.WorkshopCounts(ctx, storeID)
		if err != nil {
			return err
		}
		summary.WorkshopPending = counts.Pending
		summary.WorkshopReady = counts.Ready
		return nil
	})
	g.Go(func() error {
		total, err := s.repo.ClientsTotal(ctx, storeID)
		if err != nil {
			return err
		}
		summary.ClientsTotal = total
		return nil
	})
	g.Go(func() error {
		unread, err := s.repo.UnreadMessages(ctx, storeID)
		if err != nil {
			return err
		}
		summary.UnreadMessages = unread
		return nil
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	summary.SalesTodayLabel = FormatMAD(summary.SalesTodayCents)
	summary.SalesMonthLabel = FormatMAD(summary.SalesMonthCents)
	return summary, nil
}

func zeroSummary() Summary {
	return Summary{
		SalesTodayLabel: FormatMAD(0),
		SalesMonthLabel: FormatMAD(0),
	}
}

// FormatMAD renders an amount in centimes as a French-locale dirham figure.
func FormatMAD(cents int64) string {
	return frenchPrinter.Sprintf("%.2f MAD", float64(cents)/100)
}
