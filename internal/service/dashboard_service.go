package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"kodbank/internal/domain"
	"kodbank/internal/market"
	"kodbank/internal/rng"
)

// Static account presentation.
const (
	AccountNumberMask = "**** **** 1234"
	BranchIFSC        = "KODB000789"
	CreditScore       = 785

	holdingHistoryDays = 1825
	portfolioTrendBase = 25000
	chartDataDays      = 1460
	notificationEvents = 2
)

type RewardSummary struct {
	Won              float64               `json:"won"`
	Redeemed         float64               `json:"redeemed"`
	Coins            float64               `json:"coins"`
	SpinsLeft        int                   `json:"spins_left"`
	History          []domain.RewardRecord `json:"history"`
	CoinHistory      []domain.RewardRecord `json:"coin_history"`
	AvailableRewards []domain.RewardRecord `json:"available_rewards"`
}

type WeeklyPoint struct {
	Day   string  `json:"day"`
	Value float64 `json:"value"`
}

type Trends struct {
	Incoming   float64              `json:"incoming"`
	Outgoing   float64              `json:"outgoing"`
	Investment float64              `json:"investment"`
	Hourly     []domain.HourlyPoint `json:"hourly"`
	Weekly     []WeeklyPoint        `json:"weekly"`
	ChartData  []domain.PricePoint  `json:"chart_data"`
}

type HoldingView struct {
	domain.Holding
	CurrentPrice float64              `json:"current_price"`
	Color        string               `json:"color"`
	History      []domain.PricePoint  `json:"history"`
	Hourly       []domain.HourlyPoint `json:"hourly"`
}

type Investments struct {
	TotalInvested      float64             `json:"total_invested"`
	CurrentValue       float64             `json:"current_value"`
	IncreasePercentage float64             `json:"increase_percentage"`
	Holdings           []HoldingView       `json:"holdings"`
	Trend              []domain.PricePoint `json:"trend"`
}

type ScorePoint struct {
	Month string `json:"month"`
	Score int    `json:"score"`
}

type LoanSummary struct {
	CreditScore    int           `json:"credit_score"`
	ScoreTrend     []ScorePoint  `json:"score_trend"`
	AvailableLoans []domain.Loan `json:"available_loans"`
}

type Notification struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Tab     string `json:"tab"`
	Icon    string `json:"icon"`
}

type Dashboard struct {
	Username      string               `json:"username"`
	LoginTime     *time.Time           `json:"login_time"`
	AccountNumber string               `json:"account_number"`
	IFSC          string               `json:"ifsc"`
	Balance       float64              `json:"balance"`
	Transactions  []domain.Transaction `json:"transactions"`
	MPINSet       bool                 `json:"mpin_set"`
	Rewards       RewardSummary        `json:"rewards"`
	Trends        Trends               `json:"trends"`
	Investments   Investments          `json:"investments"`
	Loans         LoanSummary          `json:"loans"`
	Notifications []Notification       `json:"notifications"`
}

// DashboardService assembles the read model shown after login. Fetching it
// is also what drives lazy reward replenishment.
type DashboardService struct {
	rewards *RewardService
	quotes  Quotes
	trends  *market.TrendGenerator
	rnd     rng.Source
	now     func() time.Time
}

func NewDashboardService(rewards *RewardService, quotes Quotes, trends *market.TrendGenerator) *DashboardService {
	if trends == nil {
		trends = market.NewTrendGenerator(nil, nil)
	}
	return &DashboardService{rewards: rewards, quotes: quotes, trends: trends, rnd: rng.Default(), now: time.Now}
}

func (s *DashboardService) Get(ctx context.Context, userID int64) (*Dashboard, error) {
	u, err := s.rewards.Replenish(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	transactions := u.Transactions
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	return &Dashboard{
		Username:      u.Username,
		LoginTime:     u.LoginTime,
		AccountNumber: AccountNumberMask,
		IFSC:          BranchIFSC,
		Balance:       u.Balance,
		Transactions:  transactions,
		MPINSet:       u.HasMPIN(),
		Rewards: RewardSummary{
			Won:              u.CashbackWon,
			Redeemed:         u.RedeemedAmount,
			Coins:            u.Coins,
			SpinsLeft:        u.Spin.SpinsLeft(now),
			History:          nonNil(u.RewardsHistory),
			CoinHistory:      nonNil(u.CoinHistory),
			AvailableRewards: nonNil(u.AvailableRewards),
		},
		Trends:        s.balanceTrends(u.Balance, now),
		Investments:   s.investments(u),
		Loans:         s.loans(now),
		Notifications: s.notifications(),
	}, nil
}

func nonNil(list []domain.RewardRecord) []domain.RewardRecord {
	if list == nil {
		return []domain.RewardRecord{}
	}
	return list
}

// balanceTrends produces the cash-flow figures. They oscillate with the hour
// so the numbers move between visits without being stored anywhere.
func (s *DashboardService) balanceTrends(balance float64, now time.Time) Trends {
	hourBucket := float64(now.Unix() / 3600)
	threeHourBucket := float64(now.Unix() / (3 * 3600))

	labels := market.HourLabels(now)
	hourly := make([]domain.HourlyPoint, len(labels))
	for i := range hourly {
		hourly[i] = domain.HourlyPoint{
			Time:  labels[i],
			Value: domain.Round2(balance - 2000 + math.Sin(float64(i))*500 + float64(i)*20),
		}
	}

	today := now.UTC().Truncate(24 * time.Hour)
	weekly := make([]WeeklyPoint, 7)
	for i := range weekly {
		weekly[i] = WeeklyPoint{
			Day:   today.AddDate(0, 0, i-6).Format("Mon"),
			Value: domain.Round2(balance - 5000 + float64(i)*800 + s.rnd.Float64()*500),
		}
	}

	chart := make([]domain.PricePoint, chartDataDays)
	for i := range chart {
		chart[i] = domain.PricePoint{
			Date:  today.AddDate(0, 0, i-(chartDataDays-1)).Format(domain.DateLayout),
			Value: domain.Round2(30000 + s.rnd.Float64()*20000 + float64(i)*15),
		}
	}

	return Trends{
		Incoming:   domain.Round2(12500 + math.Sin(hourBucket)*500),
		Outgoing:   domain.Round2(8400 + math.Cos(hourBucket)*300),
		Investment: domain.Round2(15000 + math.Sin(threeHourBucket)*1000),
		Hourly:     hourly,
		Weekly:     weekly,
		ChartData:  chart,
	}
}

func (s *DashboardService) investments(u *domain.User) Investments {
	var invested, value float64
	views := make([]HoldingView, 0, len(u.Holdings))
	for _, h := range u.Holdings {
		price := s.quotes.PriceOr(h.Symbol, domain.Round2(h.BoughtPrice*1.1))
		color := market.DefaultColor
		if inst, ok := s.quotes.Instrument(h.Symbol); ok {
			color = inst.Color
		}
		invested += h.InvestedAmount
		value += price * float64(h.Shares)
		views = append(views, HoldingView{
			Holding:      h,
			CurrentPrice: price,
			Color:        color,
			History:      s.trends.Daily(h.BoughtPrice, holdingHistoryDays),
			Hourly:       s.trends.Hourly(price),
		})
	}

	var increase float64
	if invested > 0 {
		increase = math.Round((value-invested)/invested*1000) / 10
	}
	return Investments{
		TotalInvested:      domain.Round2(invested),
		CurrentValue:       domain.Round2(value),
		IncreasePercentage: increase,
		Holdings:           views,
		Trend:              s.trends.Daily(portfolioTrendBase, holdingHistoryDays),
	}
}

func (s *DashboardService) loans(now time.Time) LoanSummary {
	trend := make([]ScorePoint, 12)
	for i := range trend {
		trend[i] = ScorePoint{
			Month: now.AddDate(0, 0, -(11-i)*30).Format("Jan"),
			Score: 720 + i*5 + s.rnd.IntN(10),
		}
	}
	return LoanSummary{CreditScore: CreditScore, ScoreTrend: trend, AvailableLoans: domain.LoanCatalog()}
}

func (s *DashboardService) notifications() []Notification {
	events := s.quotes.RecentEvents(notificationEvents)
	out := make([]Notification, 0, len(events)+2)
	for _, ev := range events {
		verb, icon := "dropped", "📉"
		if ev.Type == domain.EventSurge {
			verb, icon = "surged", "🚀"
		}
		out = append(out, Notification{
			ID:      ev.ID,
			Type:    "investment",
			Message: fmt.Sprintf("%s %s by %.1f%%! Trade now.", ev.Symbol, verb, ev.Magnitude),
			Tab:     "investment",
			Icon:    icon,
		})
	}
	return append(out,
		Notification{ID: "N4", Type: "transaction", Message: "Salary of $5000 credited to account.", Tab: "history", Icon: "💸"},
		Notification{ID: "N5", Type: "transaction", Message: "Withdrawal of $80 at Walmart detected.", Tab: "history", Icon: "🛒"},
	)
}
