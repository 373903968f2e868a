package wallconsole

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"koubei/internal/bootstrap/logging"
	"koubei/internal/domain/testimonial"
	"koubei/internal/ports"
	"koubei/internal/usecase/wall"
)

const (
	fieldName = iota
	fieldOrganization
	fieldText
	fieldRating
	fieldCount
)

const defaultVisibleCards = 3
const cardWidth = 26

type zone int

const (
	zoneForm zone = iota
	zoneCarousel
)

type WallOptions struct {
	VisibleCards int
}

type cardSpan struct {
	index int
	x0    int
	x1    int
}

type wallModel struct {
	ctx     context.Context
	service *wall.Service
	store   *wall.Store
	nav     *wall.Navigator

	sub     ports.GatewaySubscription
	feedOn  bool
	loading bool

	inputs       [3]textinput.Model
	rating       int
	focusedField int
	activeZone   zone
	formError    string

	visibleCards int
	status       string

	// Pointer hit regions for the cards drawn by the last View call.
	carouselTop int
	carouselBot int
	cardSpans   []cardSpan
}

type wallLoadedMsg struct {
	rows []testimonial.Row
	err  error
}

type subscribedMsg struct {
	sub ports.GatewaySubscription
	err error
}

type rowArrivedMsg struct {
	row testimonial.Row
	ok  bool
}

type submitDoneMsg struct {
	row testimonial.Row
	err error
}

func NewWallModel(ctx context.Context, service *wall.Service, options WallOptions) tea.Model {
	visible := options.VisibleCards
	if visible <= 0 {
		visible = defaultVisibleCards
	}

	store := wall.NewStore(nil)

	nameInput := textinput.New()
	nameInput.Placeholder = "你的名字"
	nameInput.CharLimit = testimonial.MaxNameLen
	nameInput.Width = cardWidth
	nameInput.Focus()

	organizationInput := textinput.New()
	organizationInput.Placeholder = "公司 / 团队"
	organizationInput.CharLimit = testimonial.MaxOrganizationLen
	organizationInput.Width = cardWidth

	textInput := textinput.New()
	textInput.Placeholder = "一句话评价"
	textInput.CharLimit = testimonial.MaxTextLen
	textInput.Width = cardWidth + 12

	return &wallModel{
		ctx:          ctx,
		service:      service,
		store:        store,
		nav:          wall.NewNavigator(store),
		inputs:       [3]textinput.Model{nameInput, organizationInput, textInput},
		visibleCards: visible,
		loading:      true,
		status:       "初始化中",
	}
}

func (m *wallModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadWallCmd(), m.subscribeCmd())
}

func (m *wallModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case wallLoadedMsg:
		m.loading = false
		if msg.err != nil {
			// An unreachable gateway still renders: empty wall, form usable.
			m.store.Load(nil)
			m.nav.Clamp()
			m.status = "加载失败: " + msg.err.Error()
			return m, nil
		}
		m.store.Load(msg.rows)
		m.nav.Reset()
		m.status = fmt.Sprintf("已加载 %d 条口碑", m.store.Len())
		return m, nil
	case subscribedMsg:
		if msg.err != nil {
			m.status = "实时订阅失败: " + msg.err.Error()
			return m, nil
		}
		m.sub = msg.sub
		m.feedOn = true
		return m, m.waitRowCmd()
	case rowArrivedMsg:
		if !msg.ok {
			m.feedOn = false
			m.status = "实时通道已断开"
			return m, nil
		}
		m.store.Upsert(msg.row)
		m.nav.Clamp()
		m.status = "新口碑: " + msg.row.Name
		return m, m.waitRowCmd()
	case submitDoneMsg:
		if msg.err != nil {
			// Inputs stay as typed so the author can correct and retry.
			m.formError = msg.err.Error()
			return m, nil
		}
		m.store.Upsert(msg.row)
		m.nav.Reset()
		m.resetForm()
		m.status = "提交成功，感谢分享"
		return m, nil
	case tea.MouseMsg:
		return m.updateMouse(msg)
	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, m.updateFocusedInput(message)
}

func (m *wallModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, m.quit()
	case "tab":
		m.toggleZone()
		return m, nil
	}

	if m.activeZone == zoneCarousel {
		switch msg.String() {
		case "q", "esc":
			return m, m.quit()
		case "left", "h":
			m.nav.Previous()
			return m, nil
		case "right", "l":
			m.nav.Next()
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case "up", "shift+tab":
		m.moveField(-1)
		return m, nil
	case "down":
		m.moveField(1)
		return m, nil
	case "enter":
		if m.focusedField == fieldText || m.focusedField == fieldRating {
			return m, m.submitCmd()
		}
		m.moveField(1)
		return m, nil
	}

	if m.focusedField == fieldRating {
		switch msg.String() {
		case "left", "h":
			if m.rating > testimonial.MinRating {
				m.rating--
			} else {
				m.rating = testimonial.MinRating
			}
			return m, nil
		case "right", "l":
			if m.rating < testimonial.MaxRating {
				m.rating++
			}
			return m, nil
		case "1", "2", "3", "4", "5":
			m.rating = int(msg.String()[0] - '0')
			return m, nil
		}
		return m, nil
	}

	return m, m.updateFocusedInput(msg)
}

func (m *wallModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if msg.Y < m.carouselTop || msg.Y > m.carouselBot {
		return m, nil
	}
	for _, span := range m.cardSpans {
		if msg.X >= span.x0 && msg.X < span.x1 {
			m.activeZone = zoneCarousel
			m.blurInputs()
			m.nav.Select(span.index)
			return m, nil
		}
	}
	return m, nil
}

func (m *wallModel) updateFocusedInput(message tea.Msg) tea.Cmd {
	if m.activeZone != zoneForm || m.focusedField >= len(m.inputs) {
		return nil
	}
	var cmd tea.Cmd
	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(message)
	return cmd
}

func (m *wallModel) toggleZone() {
	if m.activeZone == zoneForm {
		m.activeZone = zoneCarousel
		m.blurInputs()
		return
	}
	m.activeZone = zoneForm
	m.applyFieldFocus()
}

func (m *wallModel) moveField(delta int) {
	m.focusedField += delta
	if m.focusedField < 0 {
		m.focusedField = 0
	}
	if m.focusedField >= fieldCount {
		m.focusedField = fieldCount - 1
	}
	m.applyFieldFocus()
}

func (m *wallModel) applyFieldFocus() {
	for index := range m.inputs {
		if index == m.focusedField {
			m.inputs[index].Focus()
		} else {
			m.inputs[index].Blur()
		}
	}
}

func (m *wallModel) blurInputs() {
	for index := range m.inputs {
		m.inputs[index].Blur()
	}
}

func (m *wallModel) resetForm() {
	for index := range m.inputs {
		m.inputs[index].SetValue("")
	}
	m.rating = 0
	m.formError = ""
	m.focusedField = fieldName
	m.applyFieldFocus()
}

func (m *wallModel) draft() testimonial.Draft {
	return testimonial.Draft{
		Name:         m.inputs[fieldName].Value(),
		Organization: m.inputs[fieldOrganization].Value(),
		Rating:       m.rating,
		Text:         m.inputs[fieldText].Value(),
	}
}

// submitCmd validates synchronously and fires the insert. Repeated enter
// presses while an insert is pending submit again; upsert de-duplicates by id.
func (m *wallModel) submitCmd() tea.Cmd {
	draft := m.draft().Normalized()
	if err := draft.Validate(); err != nil {
		m.formError = err.Error()
		return nil
	}

	m.formError = ""
	m.status = "提交中..."
	return func() tea.Msg {
		row, err := m.service.Submit(m.ctx, draft)
		return submitDoneMsg{row: row, err: err}
	}
}

func (m *wallModel) loadWallCmd() tea.Cmd {
	return func() tea.Msg {
		rows, err := m.service.Fetch(m.ctx)
		return wallLoadedMsg{rows: rows, err: err}
	}
}

func (m *wallModel) subscribeCmd() tea.Cmd {
	return func() tea.Msg {
		sub, err := m.service.Subscribe(m.ctx)
		return subscribedMsg{sub: sub, err: err}
	}
}

func (m *wallModel) waitRowCmd() tea.Cmd {
	sub := m.sub
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		row, ok := <-sub.Rows()
		return rowArrivedMsg{row: row, ok: ok}
	}
}

func (m *wallModel) quit() tea.Cmd {
	if m.sub != nil {
		m.sub.Stop()
		m.sub = nil
	}
	logging.Info(m.ctx, "wall console exit", slog.Int("rows", m.store.Len()))
	return tea.Quit
}

func (m *wallModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	zoneOnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229"))

	var builder strings.Builder
	line := 0
	writeLine := func(text string) {
		builder.WriteString(text)
		builder.WriteString("\n")
		line += 1 + strings.Count(text, "\n")
	}

	writeLine(titleStyle.Render("口碑墙 Koubei Wall"))
	feed := "off"
	if m.feedOn {
		feed = "live"
	}
	writeLine(dimStyle.Render(fmt.Sprintf("rows=%d feed=%s", m.store.Len(), feed)))
	writeLine("")

	formHeader := "Submit"
	carouselHeader := "Wall"
	if m.activeZone == zoneForm {
		formHeader = zoneOnStyle.Render("Submit ◀")
	} else {
		carouselHeader = zoneOnStyle.Render("Wall ◀")
	}

	writeLine(sectionStyle.Render(formHeader))
	writeLine(m.fieldLine(fieldName, "姓名", m.inputs[fieldName].View(), runeCount(m.inputs[fieldName].Value()), testimonial.MaxNameLen))
	writeLine(m.fieldLine(fieldOrganization, "单位", m.inputs[fieldOrganization].View(), runeCount(m.inputs[fieldOrganization].Value()), testimonial.MaxOrganizationLen))
	writeLine(m.fieldLine(fieldText, "评价", m.inputs[fieldText].View(), runeCount(m.inputs[fieldText].Value()), testimonial.MaxTextLen))
	writeLine(m.ratingLine())
	if m.formError != "" {
		writeLine(errorStyle.Render("! " + m.formError))
	}
	writeLine("")

	writeLine(sectionStyle.Render(carouselHeader))
	m.cardSpans = m.cardSpans[:0]
	if m.loading {
		m.carouselTop, m.carouselBot = line, line
		writeLine(dimStyle.Render("- 加载中..."))
	} else if m.store.Len() == 0 {
		m.carouselTop, m.carouselBot = line, line
		writeLine(dimStyle.Render("- 还没有口碑，来写第一条"))
	} else {
		cards := m.renderCards()
		m.carouselTop = line
		writeLine(cards)
		m.carouselBot = line - 1
		writeLine(dimStyle.Render(fmt.Sprintf("第 %d / %d 条", m.nav.Focus()+1, m.store.Len())))
	}
	writeLine("")

	writeLine(sectionStyle.Render("Status"))
	writeLine("- " + m.status)
	writeLine("")

	writeLine(dimStyle.Render("Keys: tab 切换区域  ↑/↓ 表单字段  enter 提交  ←/→ 滚动  1-5 评分  q 退出"))
	return builder.String()
}

func (m *wallModel) fieldLine(field int, label string, view string, used int, limit int) string {
	marker := "  "
	if m.activeZone == zoneForm && m.focusedField == field {
		marker = "> "
	}
	return fmt.Sprintf("%s%s %s %d/%d", marker, label, view, used, limit)
}

func (m *wallModel) ratingLine() string {
	marker := "  "
	if m.activeZone == zoneForm && m.focusedField == fieldRating {
		marker = "> "
	}
	return fmt.Sprintf("%s评分 %s", marker, renderStars(m.rating))
}

func (m *wallModel) renderCards() string {
	focus := m.nav.Focus()
	start, end := wall.Window(focus, m.store.Len(), m.visibleCards)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(cardWidth)
	focusedStyle := cardStyle.
		BorderForeground(lipgloss.Color("62")).
		Foreground(lipgloss.Color("229"))

	rendered := make([]string, 0, end-start)
	x := 0
	for index := start; index < end; index++ {
		row, ok := m.store.At(index)
		if !ok {
			continue
		}
		body := fmt.Sprintf("%s\n%s\n%s\n%s", renderStars(row.Rating), row.Text, row.Name, row.Organization)
		style := cardStyle
		if index == focus {
			style = focusedStyle
		}
		card := style.Render(body)
		rendered = append(rendered, card)

		width := lipgloss.Width(card)
		m.cardSpans = append(m.cardSpans, cardSpan{index: index, x0: x, x1: x + width})
		x += width
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderStars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > testimonial.MaxRating {
		rating = testimonial.MaxRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", testimonial.MaxRating-rating)
}

func runeCount(value string) int {
	return len([]rune(value))
}
