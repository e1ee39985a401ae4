package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShawrmaM8/Tracktion/internal/engine"
	"github.com/ShawrmaM8/Tracktion/internal/storage"
	"github.com/ShawrmaM8/Tracktion/internal/ui"
)

type planModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	date   string
	report *engine.StatusReport
	plan   *storage.DailyPlan
	titles map[string]string
	done   map[string]bool

	selected int
	lastLog  string
	loading  bool
	err      error
}

type loadedMsg struct {
	report *engine.StatusReport
	plan   *storage.DailyPlan
	titles map[string]string
	done   map[string]bool
	err    error
}

type completedMsg struct {
	id  string
	res *engine.CompleteResult
	err error
}

func newPlanModel(ctx context.Context, svc *engine.Service, date string) planModel {
	return planModel{
		ctx:     ctx,
		svc:     svc,
		date:    date,
		titles:  map[string]string{},
		done:    map[string]bool{},
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m planModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m planModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		report, err := m.svc.Status(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		plan, err := m.svc.PlanRepo().Get(m.ctx, m.date)
		if err != nil {
			return loadedMsg{err: err}
		}

		titles := map[string]string{}
		done := map[string]bool{}
		if plan != nil {
			for _, entry := range plan.Tasks {
				t, err := m.svc.GoalRepo().GetTask(m.ctx, entry.TaskID)
				if err != nil {
					return loadedMsg{err: err}
				}
				if t == nil {
					titles[entry.TaskID] = entry.TaskID
					continue
				}
				titles[entry.TaskID] = t.Title
				done[entry.TaskID] = t.CompletedAt != nil
			}
		}
		return loadedMsg{report: report, plan: plan, titles: titles, done: done}
	}
}

func (m planModel) completeCmd(id string, minutes int) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteTask(m.ctx, id, minutes)
		return completedMsg{id: id, res: res, err: err}
	}
}

func (m planModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.report = msg.report
		m.plan = msg.plan
		m.titles = msg.titles
		m.done = msg.done
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Completed: +%d XP (level %d → %d)", msg.res.XPAwarded, msg.res.LevelBefore, msg.res.LevelAfter)
		if msg.res.LevelUp {
			m.lastLog += " " + ui.BadgeLevelUp
		}
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.plan != nil && m.selected < len(m.plan.Tasks)-1 {
				m.selected++
			}
			return m, nil
		case "c", " ", "enter":
			if m.plan == nil || m.selected < 0 || m.selected >= len(m.plan.Tasks) {
				return m, nil
			}
			entry := m.plan.Tasks[m.selected]
			if m.done[entry.TaskID] {
				m.lastLog = "Already done."
				return m, nil
			}
			m.lastLog = "Completing…"
			return m, m.completeCmd(entry.TaskID, entry.PlannedMinutes)
		}
	}
	return m, nil
}

func (m planModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderPlan())
	b.WriteString("\n\n")
	b.WriteString(ui.Muted.Render("j/k: move · c/space: complete · r: refresh · q: quit"))
	b.WriteString("\n")
	b.WriteString(m.lastLog)
	b.WriteString("\n")
	return b.String()
}

func (m planModel) renderHeader() string {
	if m.report == nil {
		return "Tracktion | loading…"
	}
	s := m.report.State
	bar := ui.ProgressBar(m.report.Progress, 30)
	return fmt.Sprintf("Tracktion | %s | Level %d %s XP %d | %s %d-day streak",
		m.date, s.Level, bar, s.TotalXP, ui.IconFlame, s.StreakDays)
}

func (m planModel) renderPlan() string {
	if m.loading {
		return "Loading…"
	}
	if m.plan == nil || len(m.plan.Tasks) == 0 {
		return ui.Muted.Render("(no plan for today; run `trk plan` first)")
	}

	var out []string
	out = append(out, ui.H2.Render("Today's Plan"))
	for i, entry := range m.plan.Tasks {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		mark := " "
		if m.done[entry.TaskID] {
			mark = ui.IconDone
		}
		line := fmt.Sprintf("%s%s %s (%d min)", cursor, mark, m.titles[entry.TaskID], entry.PlannedMinutes)
		if i == m.selected {
			line = ui.SelectedRow.Render(line)
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
