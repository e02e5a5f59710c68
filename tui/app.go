package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cinebook-cli/booking"
	"cinebook-cli/config"
	"cinebook-cli/model"
	"cinebook-cli/service"
	"cinebook-cli/store"
)

type appState int

const (
	stateLoading appState = iota
	stateSelectCount
	stateSelectSeats
	statePaying
	stateCommitting
	stateConfirmed
	stateFailed
	stateError
)

const maxTickets = 10

type appModel struct {
	cfg    config.Config
	client *service.Client

	state appState
	err   error

	width  int
	height int

	seatMap     *booking.SeatMap
	billing     model.Billing
	bestsellers map[string]bool

	required  int
	selection booking.Selection

	orch       *booking.Orchestrator
	attemptSeq int

	cursorRow       int
	cursorSeat      int
	showSeatNumbers bool
	notice          string

	countList list.Model
	spinner   spinner.Model

	confirmation *booking.Confirmation
	recents      []store.RecentBooking
}

type seatMapMsg struct {
	seatMap     *booking.SeatMap
	billing     model.Billing
	bestsellers map[string]bool
	err         error
}

type paymentMsg struct {
	seq int
	err error
}

type commitMsg struct {
	seq int
	err error
}

type recentsMsg struct {
	recents []store.RecentBooking
}

func New(cfg config.Config) tea.Model {
	client := service.NewClient(nil, cfg.APIBaseURL, cfg.AuthToken)
	m := appModel{
		cfg:    cfg,
		client: client,
		state:  stateLoading,
		orch:   booking.NewOrchestrator(client, client, cfg.UserID),
	}

	m.countList = newList("How many tickets?")
	m.countList.SetFilteringEnabled(false)
	m.countList.SetItems(buildCountItems(maxTickets))

	m.showSeatNumbers = true
	m.bestsellers = map[string]bool{}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.loadSeatMapCmd(false), m.spinner.Tick)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		model, cmd, handled := m.handleKey(msg)
		if handled {
			return model, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isBusyState() {
			return m, cmd
		}
		return m, nil

	case seatMapMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.seatMap = msg.seatMap
		m.billing = msg.billing
		m.bestsellers = msg.bestsellers
		m.selection = nil
		m.cursorRow = 0
		m.cursorSeat = 0
		m.orch.MarkReloaded()
		if m.required == 0 {
			m.state = stateSelectCount
		} else {
			m.state = stateSelectSeats
		}
		return m, nil

	case paymentMsg:
		if msg.seq != m.attemptSeq {
			// result of an abandoned attempt
			return m, nil
		}
		if err := m.orch.RecordPayment(msg.err); err != nil {
			m.state = stateSelectSeats
			m.notice = "Payment was not completed. Your seats are still selected."
			return m, nil
		}
		m.state = stateCommitting
		return m, tea.Batch(m.commitCmd(msg.seq), m.spinner.Tick)

	case commitMsg:
		if msg.seq != m.attemptSeq {
			return m, nil
		}
		confirmation, err := m.orch.RecordCommit(msg.err)
		if err != nil {
			m.state = stateFailed
			return m, nil
		}
		m.confirmation = confirmation
		m.state = stateConfirmed
		return m, m.rememberBookingCmd(confirmation)

	case recentsMsg:
		m.recents = msg.recents
		return m, nil
	}

	var cmd tea.Cmd
	if m.state == stateSelectCount {
		m.countList, cmd = m.countList.Update(msg)
	}
	return m, cmd
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit, true
	}

	switch m.state {
	case stateSelectCount:
		if msg.Type == tea.KeyEnter {
			item, ok := m.countList.SelectedItem().(countItem)
			if !ok {
				return m, nil, true
			}
			m.required = item.count
			m.selection = nil
			m.notice = ""
			m.state = stateSelectSeats
			return m, nil, true
		}
		return m, nil, false

	case stateSelectSeats:
		return m.handleSeatKey(msg)

	case statePaying:
		if msg.String() == "esc" {
			// closing the payment step before it resolves is plain
			// abandonment; the late result is dropped by sequence
			m.orch.Abandon()
			m.attemptSeq++
			m.state = stateSelectSeats
			m.notice = "Payment abandoned. Your seats are still selected."
			return m, nil, true
		}
		return m, nil, true

	case stateCommitting:
		// booking is in flight; there is no mid-commit cancellation
		return m, nil, true

	case stateFailed:
		if msg.Type == tea.KeyEnter || msg.String() == "esc" {
			m.orch.Dismiss()
			m.selection = nil
			m.notice = ""
			m.state = stateLoading
			return m, tea.Batch(m.loadSeatMapCmd(true), m.spinner.Tick), true
		}
		return m, nil, true

	case stateConfirmed:
		if msg.Type == tea.KeyEnter {
			return m, tea.Quit, true
		}
		return m, nil, true

	case stateError:
		if msg.Type == tea.KeyEnter {
			m.err = nil
			m.state = stateLoading
			return m, tea.Batch(m.loadSeatMapCmd(true), m.spinner.Tick), true
		}
		return m, nil, true
	}

	return m, nil, false
}

func (m appModel) handleSeatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	rows := m.seatMap.Rows()
	if len(rows) == 0 {
		return m, nil, true
	}

	switch msg.String() {
	case "up", "k":
		if m.cursorRow > 0 {
			m.cursorRow--
			m.clampCursorSeat(rows)
		}
		return m, nil, true
	case "down", "j":
		if m.cursorRow < len(rows)-1 {
			m.cursorRow++
			m.clampCursorSeat(rows)
		}
		return m, nil, true
	case "left", "h":
		if m.cursorSeat > 0 {
			m.cursorSeat--
		}
		return m, nil, true
	case "right", "l":
		if m.cursorSeat < rows[m.cursorRow].SeatCount-1 {
			m.cursorSeat++
		}
		return m, nil, true
	case "n":
		m.showSeatNumbers = !m.showSeatNumbers
		return m, nil, true
	case "r":
		m.required = 0
		m.selection = nil
		m.notice = ""
		m.state = stateSelectCount
		return m, nil, true
	case " ", "enter":
		return m.toggleSeatUnderCursor(rows), nil, true
	case "c":
		return m.startCheckout()
	}
	return m, nil, false
}

func (m appModel) toggleSeatUnderCursor(rows []booking.SeatRow) appModel {
	if booking.InputLocked(m.orch.Phase()) {
		return m
	}
	seatID := booking.SeatID(rows[m.cursorRow].Label, m.cursorSeat+1)
	next := booking.Toggle(m.selection, seatID, m.seatMap, m.required)

	switch {
	case m.seatMap.IsSold(seatID):
		m.notice = fmt.Sprintf("Seat %s is already taken.", seatID)
	case len(next) == len(m.selection) && !m.selection.Contains(seatID):
		m.notice = fmt.Sprintf("You already picked %d seats. Deselect one first.", m.required)
	default:
		m.notice = ""
	}
	m.selection = next
	return m
}

func (m appModel) startCheckout() (tea.Model, tea.Cmd, bool) {
	if !booking.IsComplete(m.selection, m.required) {
		m.notice = fmt.Sprintf("Select %d more seat(s) to continue.", m.required-len(m.selection))
		return m, nil, true
	}
	show := booking.ShowDetails{
		Movie:   m.billing.MovieName,
		Theater: m.billing.TheaterName,
		Time:    m.cfg.ShowTime,
	}
	if err := m.orch.Begin(m.selection, m.seatMap, m.required, show); err != nil {
		m.notice = err.Error()
		return m, nil, true
	}
	m.attemptSeq++
	m.notice = ""
	m.state = statePaying
	return m, tea.Batch(m.payCmd(m.attemptSeq), m.spinner.Tick), true
}

func (m *appModel) clampCursorSeat(rows []booking.SeatRow) {
	if limit := rows[m.cursorRow].SeatCount - 1; m.cursorSeat > limit {
		m.cursorSeat = limit
	}
}

func (m appModel) isBusyState() bool {
	return m.state == stateLoading || m.state == statePaying || m.state == stateCommitting
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 6
	if h < 6 {
		h = 6
	}
	m.countList.SetSize(m.width, h)
}

func (m appModel) loadSeatMapCmd(force bool) tea.Cmd {
	client := m.client
	cfg := m.cfg
	return func() tea.Msg {
		ctx := context.Background()
		seatMap, err := booking.Load(ctx, cachedCatalog{client: client, force: force}, cfg.TheaterID, cfg.ShowID)
		if err != nil {
			return seatMapMsg{err: err}
		}
		billing, err := loadBilling(ctx, client, cfg.MovieID, cfg.TheaterID)
		if err != nil {
			return seatMapMsg{err: err}
		}
		// the bestseller tag is cosmetic; a failed fetch just leaves it off
		bestsellers := map[string]bool{}
		if seats, err := client.FetchBestsellerSeats(ctx, cfg.ShowID); err == nil {
			for _, seatID := range seats {
				bestsellers[seatID] = true
			}
		}
		return seatMapMsg{seatMap: seatMap, billing: billing, bestsellers: bestsellers}
	}
}

// payCmd and commitCmd only perform the network call; the orchestrator
// transition is applied in Update once the sequence-checked message
// arrives, so an abandoned attempt never mutates the state machine.
func (m appModel) payCmd(seq int) tea.Cmd {
	step := m.orch.PaymentStep()
	return func() tea.Msg {
		return paymentMsg{seq: seq, err: step(context.Background())}
	}
}

func (m appModel) commitCmd(seq int) tea.Cmd {
	step := m.orch.CommitStep()
	return func() tea.Msg {
		return commitMsg{seq: seq, err: step(context.Background())}
	}
}

func (m appModel) rememberBookingCmd(c *booking.Confirmation) tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		_ = store.RememberBooking(store.RecentBooking{
			ShowID:   cfg.ShowID,
			Movie:    c.Movie,
			Theater:  c.Theater,
			ShowTime: c.Time,
			Seats:    c.Seats,
			Amount:   c.Total,
			BookedAt: time.Now(),
		})
		recents, _ := store.LoadRecentBookings()
		return recentsMsg{recents: recents}
	}
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

type countItem struct {
	count int
}

func (c countItem) Title() string {
	if c.count == 1 {
		return "1 ticket"
	}
	return fmt.Sprintf("%d tickets", c.count)
}

func (c countItem) Description() string { return "" }

func (c countItem) FilterValue() string { return c.Title() }

func buildCountItems(limit int) []list.Item {
	items := make([]list.Item, 0, limit)
	for i := 1; i <= limit; i++ {
		items = append(items, countItem{count: i})
	}
	return items
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Cinebook")
	sub := []string{}
	if m.billing.MovieName != "" {
		sub = append(sub, fmt.Sprintf("Movie: %s", m.billing.MovieName))
	}
	if m.billing.TheaterName != "" {
		sub = append(sub, fmt.Sprintf("Theater: %s", m.billing.TheaterName))
	}
	if m.cfg.ShowTime != "" {
		sub = append(sub, fmt.Sprintf("Show: %s", m.cfg.ShowTime))
	}
	if m.required > 0 && m.state != stateConfirmed {
		sub = append(sub, fmt.Sprintf("Tickets: %d", m.required))
	}
	meta := strings.Join(sub, " • ")
	if meta != "" {
		meta = "\n" + lipgloss.NewStyle().Faint(true).Render(meta)
	}

	hints := "ctrl+c quit"
	switch m.state {
	case stateSelectCount:
		hints = "ctrl+c quit • enter pick ticket count"
	case stateSelectSeats:
		hints = "arrows move • space toggle seat • c checkout • n numbers • r ticket count • q quit"
	case statePaying:
		hints = "esc abandon payment"
	case stateFailed, stateError:
		hints = "enter continue • ctrl+c quit"
	case stateConfirmed:
		hints = "enter finish • ctrl+c quit"
	}

	noticeLine := ""
	if m.notice != "" && m.state == stateSelectSeats {
		noticeLine = "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render(m.notice)
	}
	return title + meta + noticeLine + "\n" + hint(hints)
}

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateLoading:
		return header + "\n\n" + fmt.Sprintf("%s Loading seat map\n\n%s", m.spinner.View(), hint("Fetching layout, prices and availability..."))
	case stateSelectCount:
		return header + "\n\n" + m.countList.View()
	case stateSelectSeats:
		return header + "\n\n" + m.renderSeatGrid()
	case statePaying:
		return header + "\n\n" + fmt.Sprintf("%s Processing payment of %s\n\n%s",
			m.spinner.View(), booking.FormatPrice(m.orch.Amount()), hint("Press esc to abandon. No charge happens on abandonment."))
	case stateCommitting:
		return header + "\n\n" + fmt.Sprintf("%s Payment received. Securing your seats...\n\n%s",
			m.spinner.View(), hint("Do not close the terminal."))
	case stateConfirmed:
		return header + "\n\n" + m.confirmedView()
	case stateFailed:
		return header + "\n\n" + m.failedView()
	case stateError:
		return header + "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(fmt.Sprintf("Could not load seat map: %v", m.err)) +
			"\n\n" + hint("Press enter to retry or ctrl+c to quit.")
	default:
		return header
	}
}

func (m appModel) renderSeatGrid() string {
	rows := m.seatMap.Rows()
	if len(rows) == 0 {
		return "No seat map data."
	}

	maxSeats := 0
	for _, row := range rows {
		maxSeats = max(maxSeats, row.SeatCount)
	}

	cellWidth := 2
	if m.showSeatNumbers && maxSeats >= 10 {
		cellWidth = 3
	}

	styleAvailable := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleBestseller := lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleSelected := lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("2")).Bold(true)
	styleSold := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleCursor := lipgloss.NewStyle().Reverse(true)

	rowWidth := 1
	gridWidth := maxSeats*(cellWidth+1) - 1

	var b strings.Builder

	screenBar := screenBarBlock(gridWidth, "SCREEN")
	screenStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214"))
	screenBorderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	indent := strings.Repeat(" ", rowWidth+1)
	b.WriteString(indent + screenBorderStyle.Render(screenBar.top) + "\n")
	b.WriteString(indent + screenStyle.Render(screenBar.mid) + "\n")
	b.WriteString(indent + screenBorderStyle.Render(screenBar.bot) + "\n\n")

	for ri, row := range rows {
		b.WriteString(fmt.Sprintf("%*s ", rowWidth, row.Label))
		for si := 0; si < row.SeatCount; si++ {
			seatID := booking.SeatID(row.Label, si+1)
			state := booking.StateOf(m.seatMap, m.selection, m.bestsellers, seatID)

			text := "[]"
			if state == booking.SeatSold {
				text = "XX"
			} else if m.showSeatNumbers {
				text = fmt.Sprintf("%d", si+1)
			}
			rendered := padCell(text, cellWidth)
			switch state {
			case booking.SeatSold:
				rendered = styleSold.Render(rendered)
			case booking.SeatSelected:
				rendered = styleSelected.Render(rendered)
			case booking.SeatBestseller:
				rendered = styleBestseller.Render(rendered)
			default:
				rendered = styleAvailable.Render(rendered)
			}
			if ri == m.cursorRow && si == m.cursorSeat {
				rendered = styleCursor.Render(padCell(text, cellWidth))
			}
			b.WriteString(rendered)
			if si < row.SeatCount-1 {
				b.WriteString(" ")
			}
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", tierLabel(row.Type), booking.FormatPrice(row.Price)))
	}

	total, err := booking.Total(m.selection, m.seatMap)
	totalLine := booking.FormatPrice(total)
	if err != nil {
		totalLine = "-"
	}
	legend := "Legend: green available • yellow bestseller • inverse selected • red XX taken"
	counts := fmt.Sprintf("Selected %d/%d • Total %s • %d of %d seats taken",
		len(m.selection), m.required, totalLine, m.seatMap.SoldCount(), m.seatMap.SeatCount())
	return b.String() + "\n" + hint(legend) + "\n" + hint(counts)
}

func (m appModel) failedView() string {
	failure := m.orch.Failure()
	paid := 0
	if failure != nil {
		paid = failure.PaidAmount
	}
	detail := ""
	if failure != nil && failure.Err != nil {
		detail = failure.Err.Error()
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("1")).
		Padding(0, 2).
		Render("Booking Failed")
	message := lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true).
		Render(fmt.Sprintf("Your payment of %s went through, but the seats were NOT secured.", booking.FormatPrice(paid)))

	lines := []string{
		title,
		"",
		message,
		"",
		hint("Another customer may have taken one of your seats. Availability will be reloaded; please pick seats again."),
	}
	if detail != "" {
		lines = append(lines, "", hint(detail))
	}
	lines = append(lines, "", hint("Press enter to reload the seat map."))

	panel := lipgloss.NewStyle().
		Padding(1, 3).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("1")).
		Render(strings.Join(lines, "\n"))
	return panel
}

func (m appModel) confirmedView() string {
	c := m.confirmation
	if c == nil {
		return ""
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("2")).
		Padding(0, 2).
		Render("Booking Confirmed")

	lines := []string{
		title,
		"",
		fmt.Sprintf("Movie:   %s", c.Movie),
		fmt.Sprintf("Theater: %s", c.Theater),
	}
	if c.Time != "" {
		lines = append(lines, fmt.Sprintf("Show:    %s", c.Time))
	}
	lines = append(lines,
		fmt.Sprintf("Seats:   %s", strings.Join(c.Seats, ", ")),
		fmt.Sprintf("Paid:    %s", booking.FormatPrice(c.Total)),
	)

	if len(m.recents) > 1 {
		lines = append(lines, "", hint("Recent bookings:"))
		for _, recent := range m.recents {
			lines = append(lines, hint(fmt.Sprintf("  %s • %s • %s",
				recent.Movie, strings.Join(recent.Seats, ","), booking.FormatPrice(recent.Amount))))
		}
	}

	panel := lipgloss.NewStyle().
		Padding(1, 3).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("2")).
		Render(strings.Join(lines, "\n"))
	return panel
}

func tierLabel(t model.SeatType) string {
	switch t {
	case model.SeatTypePremium:
		return "Premium"
	case model.SeatTypeClassicPlus:
		return "Classic+"
	case model.SeatTypeClassic:
		return "Classic"
	default:
		return string(t)
	}
}

func padCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if text == "" {
		return strings.Repeat(" ", width)
	}
	if len(text) >= width {
		return text[:width]
	}
	padding := width - len(text)
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

type screenBlock struct {
	top string
	mid string
	bot string
}

func screenBarBlock(width int, label string) screenBlock {
	if width < len(label)+4 {
		width = len(label) + 4
	}
	if width < 10 {
		width = 10
	}

	border := "╭" + strings.Repeat("─", width-2) + "╮"
	bottom := "╰" + strings.Repeat("─", width-2) + "╯"

	labelText := " " + label + " "
	padding := width - len(labelText) - 2
	left := padding / 2
	right := padding - left
	mid := "│" + strings.Repeat(" ", left) + labelText + strings.Repeat(" ", right) + "│"
	return screenBlock{top: border, mid: mid, bot: bottom}
}
