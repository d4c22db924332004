package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/domain"
	"event-ticketing/internal/dto/response"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const trendWeeks = 12

// Export kinds.
const (
	ExportSales  = "sales"
	ExportEvents = "events"
)

var ageBuckets = []struct {
	label    string
	min, max int
}{
	{"0-17", 0, 17},
	{"18-24", 18, 24},
	{"25-34", 25, 34},
	{"35-44", 35, 44},
	{"45-54", 45, 54},
	{"55+", 55, 1 << 30},
}

type AnalyticsService interface {
	Summary(ctx context.Context) (*response.SummaryResponse, error)
	Demographics(ctx context.Context) (*response.DemographicsResponse, error)
	EventAnalytics(ctx context.Context, eventID uuid.UUID) (*response.EventAnalyticsResponse, error)
	SalesTrend(ctx context.Context) ([]response.TrendPoint, error)
	// Export renders kind as CSV and returns it with a download file name.
	Export(ctx context.Context, kind string) ([]byte, string, error)
}

type analyticsService struct {
	repo      repository.AnalyticsRepository
	eventRepo repository.EventRepository
	log       *zap.Logger
	now       func() time.Time
}

func NewAnalyticsService(repo repository.AnalyticsRepository, eventRepo repository.EventRepository, log *zap.Logger) AnalyticsService {
	return &analyticsService{
		repo:      repo,
		eventRepo: eventRepo,
		log:       log.With(zap.String("service", "analytics")),
		now:       time.Now,
	}
}

func (s *analyticsService) Summary(ctx context.Context) (*response.SummaryResponse, error) {
	var (
		resp    response.SummaryResponse
		revenue decimal.Decimal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		resp.TotalEvents, err = s.repo.CountEvents(gctx)
		return err
	})
	g.Go(func() (err error) {
		resp.TicketsSold, err = s.repo.CountTickets(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		revenue, err = s.repo.SumRevenue(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		resp.UniqueAttendees, err = s.repo.CountAttendees(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.Revenue = revenue.InexactFloat64()
	return &resp, nil
}

func (s *analyticsService) Demographics(ctx context.Context) (*response.DemographicsResponse, error) {
	profiles, err := s.repo.HolderProfiles(ctx, nil)
	if err != nil {
		return nil, err
	}

	resp := BuildDemographics(profiles, s.now())
	return &resp, nil
}

func (s *analyticsService) EventAnalytics(ctx context.Context, eventID uuid.UUID) (*response.EventAnalyticsResponse, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, errors.Wrapf(domain.ErrEventNotFound, "%s", eventID)
	}

	resp := response.EventAnalyticsResponse{
		Event: response.AnalyticsEvent{
			ID:    event.ID.String(),
			Title: event.Title,
			Date:  event.Date,
			Venue: event.Venue,
		},
	}

	var (
		revenue  decimal.Decimal
		profiles []repository.HolderProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		resp.TicketsSold, err = s.repo.CountTickets(gctx, &eventID)
		return err
	})
	g.Go(func() (err error) {
		revenue, err = s.repo.SumRevenue(gctx, &eventID)
		return err
	})
	g.Go(func() (err error) {
		resp.CheckedIns, err = s.repo.CountCheckIns(gctx, &eventID)
		return err
	})
	g.Go(func() (err error) {
		profiles, err = s.repo.HolderProfiles(gctx, &eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.Revenue = revenue.InexactFloat64()
	resp.Demographics = BuildDemographics(profiles, s.now())
	return &resp, nil
}

func (s *analyticsService) SalesTrend(ctx context.Context) ([]response.TrendPoint, error) {
	now := s.now()
	sales, err := s.repo.SalesSince(ctx, TrendStart(now))
	if err != nil {
		return nil, err
	}
	return WeeklyTrend(sales, now), nil
}

func (s *analyticsService) Export(ctx context.Context, kind string) ([]byte, string, error) {
	stamp := s.now().Format("20060102")

	switch kind {
	case ExportSales:
		rows, err := s.repo.SalesRows(ctx)
		if err != nil {
			return nil, "", err
		}
		data, err := SalesCSV(rows)
		if err != nil {
			return nil, "", err
		}
		return data, fmt.Sprintf("sales-%s.csv", stamp), nil

	case ExportEvents:
		events, err := s.repo.EventRows(ctx)
		if err != nil {
			return nil, "", err
		}
		data, err := EventsCSV(events)
		if err != nil {
			return nil, "", err
		}
		return data, fmt.Sprintf("events-%s.csv", stamp), nil
	}

	return nil, "", domain.Validation("type must be one of: sales, events")
}

// AgeAt returns whole years between birth and now, counting a birthday only
// once it has been reached.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

func AgeBucket(age int) string {
	for _, b := range ageBuckets {
		if age >= b.min && age <= b.max {
			return b.label
		}
	}
	return ageBuckets[0].label
}

// NormalizeLabel trims, lowercases and capitalizes the first letter.
// Blank input yields "".
func NormalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func BuildDemographics(profiles []repository.HolderProfile, now time.Time) response.DemographicsResponse {
	resp := response.DemographicsResponse{
		AgeBuckets:  make(map[string]int, len(ageBuckets)),
		ByGender:    map[string]int{},
		ByLocation:  map[string]int{},
		ByInterests: map[string]int{},
	}
	for _, b := range ageBuckets {
		resp.AgeBuckets[b.label] = 0
	}

	count := func(m map[string]int, v *string) {
		if v == nil {
			return
		}
		if label := NormalizeLabel(*v); label != "" {
			m[label]++
		}
	}

	for _, p := range profiles {
		if p.BirthDate != nil {
			resp.AgeBuckets[AgeBucket(AgeAt(*p.BirthDate, now))]++
		}
		count(resp.ByGender, p.Gender)
		count(resp.ByLocation, p.Location)
		for i := range p.Interests {
			count(resp.ByInterests, &p.Interests[i])
		}
	}
	return resp
}

// weekStart is Monday 00:00 of t's ISO week in t's location.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// TrendStart is the first instant covered by the trend ending at now.
func TrendStart(now time.Time) time.Time {
	return weekStart(now).AddDate(0, 0, -7*(trendWeeks-1))
}

// WeeklyTrend sums sales per ISO week for the twelve weeks ending with the
// week of now, oldest first. Weeks without sales are zero.
func WeeklyTrend(sales []repository.Sale, now time.Time) []response.TrendPoint {
	start := TrendStart(now)

	sums := make([]decimal.Decimal, trendWeeks)
	for _, sale := range sales {
		ws := weekStart(sale.CreatedAt.In(now.Location()))
		idx := int(ws.Sub(start).Hours()+12) / (24 * 7)
		if ws.Before(start) || idx >= trendWeeks {
			continue
		}
		sums[idx] = sums[idx].Add(sale.PricePaid)
	}

	points := make([]response.TrendPoint, trendWeeks)
	for i := range points {
		_, week := start.AddDate(0, 0, 7*i).ISOWeek()
		points[i] = response.TrendPoint{
			Week:    "W" + strconv.Itoa(week),
			Revenue: sums[i].InexactFloat64(),
		}
	}
	return points
}

var (
	salesHeader  = []string{"id", "event", "user", "seat", "pricePaid", "checkedIn", "createdAt"}
	eventsHeader = []string{"id", "title", "date", "venue", "price", "totalSeats", "status", "createdAt"}
)

func SalesCSV(rows []repository.SaleRow) ([]byte, error) {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, salesHeader)
	for _, r := range rows {
		records = append(records, []string{
			r.TicketID.String(),
			r.EventTitle,
			r.UserEmail,
			r.SeatNumber,
			r.PricePaid.StringFixed(2),
			strconv.FormatBool(r.CheckedIn),
			r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return writeCSV(records)
}

func EventsCSV(events []*entity.Event) ([]byte, error) {
	records := make([][]string, 0, len(events)+1)
	records = append(records, eventsHeader)
	for _, e := range events {
		records = append(records, []string{
			e.ID.String(),
			e.Title,
			e.Date.UTC().Format(time.RFC3339),
			e.Venue,
			e.Price.StringFixed(2),
			strconv.Itoa(e.TotalSeats),
			string(e.Status),
			e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return writeCSV(records)
}

func writeCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
