package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"futuresBot/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor   = lipgloss.Color("#0077cc")
	secondaryColor = lipgloss.Color("#333333")
	buyColor       = lipgloss.Color("#33cc33")
	sellColor      = lipgloss.Color("#cc3300")
	holdColor      = lipgloss.Color("#cccc00")

	appStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(primaryColor).
			Padding(0, 1)
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(secondaryColor).
			Padding(0, 1)
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")).Width(10)
	errorStyle  = lipgloss.NewStyle().Foreground(sellColor)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")).Padding(0, 1)
)

// Source is the read side of the bot's storage.
type Source interface {
	FindLatestStatusLog(ctx context.Context) (*domain.StatusLog, error)
	FindRecentTrades(ctx context.Context, limit int) ([]*domain.Trade, error)
}

type tickMsg time.Time

type dataMsg struct {
	latest *domain.StatusLog
	trades []*domain.Trade
	err    error
	at     time.Time
}

// Model is the bubbletea model for the read-only status viewer.
type Model struct {
	source      Source
	refresh     time.Duration
	tradesLimit int

	latest    *domain.StatusLog
	trades    []*domain.Trade
	err       error
	updatedAt time.Time
	width     int
}

func NewModel(source Source, refresh time.Duration, tradesLimit int) Model {
	if refresh <= 0 {
		refresh = time.Second
	}
	if tradesLimit <= 0 {
		tradesLimit = 10
	}
	return Model{source: source, refresh: refresh, tradesLimit: tradesLimit, width: 80}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), tick(m.refresh))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.load()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		return m, tea.Batch(m.load(), tick(m.refresh))
	case dataMsg:
		m.err = msg.err
		if msg.err == nil {
			m.latest = msg.latest
			m.trades = msg.trades
			m.updatedAt = msg.at
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("FUTURES BOT MONITOR"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Latest status"),
		sectionStyle.Render(renderStatus(m.latest)),
	))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(fmt.Sprintf("Last %d trades", m.tradesLimit)),
		sectionStyle.Render(renderTrades(m.trades)),
	))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	updated := "never"
	if !m.updatedAt.IsZero() {
		updated = m.updatedAt.Format("15:04:05")
	}
	b.WriteString(footerStyle.Render("q quit · r refresh · updated " + updated))
	return appStyle.Render(b.String())
}

func (m Model) load() tea.Cmd {
	source, limit := m.source, m.tradesLimit
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		latest, err := source.FindLatestStatusLog(ctx)
		if err != nil {
			return dataMsg{err: err}
		}
		trades, err := source.FindRecentTrades(ctx, limit)
		if err != nil {
			return dataMsg{err: err}
		}
		return dataMsg{latest: latest, trades: trades, at: time.Now()}
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func renderStatus(s *domain.StatusLog) string {
	if s == nil {
		return "Waiting for the first status log..."
	}
	rows := []string{
		labelStyle.Render("Time") + s.Timestamp.Local().Format("2006-01-02 15:04:05"),
		labelStyle.Render("Strategy") + string(s.Strategy),
		labelStyle.Render("Signal") + formatSignal(s.Signal),
		labelStyle.Render("Close") + fmt.Sprintf("%.4f", s.ClosePrice),
		labelStyle.Render("RSI") + formatOptional(s.RSI, "%.2f"),
		labelStyle.Render("Balance") + formatOptional(s.USDTBalance, "%.2f USDT"),
	}
	return strings.Join(rows, "\n")
}

func renderTrades(trades []*domain.Trade) string {
	if len(trades) == 0 {
		return "No trades yet."
	}
	lines := []string{fmt.Sprintf("%-19s  %-8s  %14s  %10s  %s", "TIME", "SIDE", "PRICE", "QTY", "STRATEGY")}
	for _, t := range trades {
		lines = append(lines, fmt.Sprintf("%-19s  %-8s  %14.4f  %10.4f  %s",
			t.Timestamp.Local().Format("2006-01-02 15:04:05"),
			formatSignal(t.Decision), t.Price, t.Quantity, t.Strategy))
	}
	return strings.Join(lines, "\n")
}

func formatSignal(s domain.Signal) string {
	switch s {
	case domain.SignalBuy:
		return lipgloss.NewStyle().Foreground(buyColor).Bold(true).Render("▲ BUY")
	case domain.SignalSell:
		return lipgloss.NewStyle().Foreground(sellColor).Bold(true).Render("▼ SELL")
	default:
		return lipgloss.NewStyle().Foreground(holdColor).Render("▬ HOLD")
	}
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf(format, *v)
}

// Run starts the full-screen viewer and blocks until the user quits.
func Run(source Source, refresh time.Duration, tradesLimit int) error {
	p := tea.NewProgram(NewModel(source, refresh, tradesLimit), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
