package ui

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/hanshuaikang/pingwatch-go/internal/config"
	"github.com/hanshuaikang/pingwatch-go/internal/errlog"
	"github.com/hanshuaikang/pingwatch-go/internal/pipeline"
	"github.com/hanshuaikang/pingwatch-go/internal/probe"
	"github.com/hanshuaikang/pingwatch-go/internal/sink"
)

const uiRefreshInterval = 500 * time.Millisecond

// UI is the dashboard consumer: it owns the update-bus read loop, applies
// each snapshot to its ordered view of the target set, optionally writes
// the file sink line, and redraws.
type UI struct {
	view  config.ViewMode
	data  []pipeline.Snapshot
	index map[string]int
	errs  *errlog.Log
	out   *sink.FileSink
}

// New builds a dashboard over the fixed target set. The display order
// follows the resolved target list. out may be nil.
func New(view config.ViewMode, targets []probe.Target, errs *errlog.Log, out *sink.FileSink) *UI {
	data := make([]pipeline.Snapshot, len(targets))
	index := make(map[string]int, len(targets))
	for i, target := range targets {
		data[i] = pipeline.Snapshot{Target: target}
		index[target.Key()] = i
	}
	return &UI{view: view, data: data, index: index, errs: errs, out: out}
}

// Apply folds one snapshot into the display state.
func (u *UI) Apply(snapshot pipeline.Snapshot) {
	if i, ok := u.index[snapshot.Target.Key()]; ok {
		u.data[i] = snapshot
	}
	if u.out != nil {
		u.out.Write(snapshot)
	}
}

// Run blocks until the context is cancelled, the user quits, or the update
// bus closes (all probing finished). A quit keypress calls stop to drive
// the coordinated shutdown. The terminal is restored before returning.
func (u *UI) Run(ctx context.Context, stop context.CancelFunc, updates <-chan pipeline.Snapshot) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	screen.HideCursor()
	defer screen.Fini()

	eventCh := make(chan tcell.Event, 1)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventCh <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(uiRefreshInterval)
	defer ticker.Stop()

	u.render(screen)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-eventCh:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if isQuitKey(ev) {
					stop()
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case snapshot, ok := <-updates:
			if !ok {
				// All producers finished; nothing more will arrive.
				stop()
				return nil
			}
			u.Apply(snapshot)
			u.render(screen)
		case <-ticker.C:
			u.render(screen)
		}
	}
}

func isQuitKey(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape || ev.Rune() == 'q'
}

func (u *UI) render(screen tcell.Screen) {
	screen.Clear()
	width, height := screen.Size()
	if width < 20 || height < 5 {
		screen.Show()
		return
	}

	header := fmt.Sprintf(" pingwatch  %s  (q to quit)", time.Now().Format("2006-01-02 15:04:05"))
	drawText(screen, 0, 0, width, header, tcell.StyleDefault.Bold(true))

	body := height - errorSectionHeight(height) - 1
	switch u.view {
	case config.ViewTable:
		u.renderTable(screen, width, body)
	case config.ViewPoint:
		u.renderPoint(screen, width, body)
	case config.ViewSparkline:
		u.renderSparkline(screen, width, body)
	default:
		u.renderGraph(screen, width, body)
	}

	u.renderErrors(screen, width, height)
	screen.Show()
}

// renderGraph shows one block per target: a stats line plus a strip of the
// recent sample window.
func (u *UI) renderGraph(screen tcell.Screen, width, height int) {
	y := 1
	for _, snapshot := range u.data {
		if y+2 >= height {
			break
		}
		drawText(screen, 0, y, width, statsLine(snapshot), tcell.StyleDefault)
		drawSamples(screen, 1, y+1, width-2, snapshot)
		y += 3
	}
}

// renderTable ranks targets by loss rate, then average latency.
func (u *UI) renderTable(screen tcell.Screen, width, height int) {
	rows := SortByQuality(u.data)

	header := fmt.Sprintf(" %-4s %-18s %-16s %-10s %-10s %-9s %-9s %-9s %-8s",
		"RANK", "TARGET", "IP", "LAST", "AVG", "MAX", "MIN", "JITTER", "LOSS")
	drawText(screen, 0, 1, width, header, tcell.StyleDefault.Bold(true))

	for i, snapshot := range rows {
		y := 2 + i
		if y >= height {
			break
		}
		loss := pipeline.LossPercent(snapshot.Timeouts, snapshot.Received)
		line := fmt.Sprintf(" %-4d %-18s %-16s %-10s %-10s %-9s %-9s %-9s %-8s",
			i+1,
			padOrTrim(snapshot.Target.Name, 18),
			padOrTrim(snapshot.Target.Addr, 16),
			FormatSample(snapshot.Last),
			formatMillis(pipeline.AverageRtt(snapshot.Rtts)),
			formatMillis(snapshot.MaxRtt),
			formatMillis(snapshot.MinRtt),
			formatMillis(pipeline.Jitter(snapshot.Rtts)),
			fmt.Sprintf("%.1f%%", loss),
		)
		drawText(screen, 0, y, width, line, lossStyle(loss))
	}
}

// renderPoint plots each target's window vertically: columns are samples,
// rows are latency levels, blank columns are timeouts.
func (u *UI) renderPoint(screen tcell.Screen, width, height int) {
	blockHeight := 6
	y := 1
	for _, snapshot := range u.data {
		if y+blockHeight > height {
			break
		}
		drawText(screen, 0, y, width, statsLine(snapshot), tcell.StyleDefault)
		drawPlot(screen, 1, y+1, width-2, blockHeight-2, snapshot)
		y += blockHeight
	}
}

// renderSparkline is the single-row variant of the point plot.
func (u *UI) renderSparkline(screen tcell.Screen, width, height int) {
	y := 1
	for _, snapshot := range u.data {
		if y+2 >= height {
			break
		}
		drawText(screen, 0, y, width, statsLine(snapshot), tcell.StyleDefault)
		drawSamples(screen, 1, y+1, width-2, snapshot)
		y += 3
	}
}

func (u *UI) renderErrors(screen tcell.Screen, width, height int) {
	if u.errs == nil {
		return
	}
	section := errorSectionHeight(height)
	top := height - section
	drawText(screen, 0, top, width, " errors", tcell.StyleDefault.Bold(true).Foreground(tcell.ColorRed))

	entries := u.errs.Snapshot()
	visible := section - 1
	if len(entries) > visible {
		entries = entries[len(entries)-visible:]
	}
	for i, entry := range entries {
		drawText(screen, 1, top+1+i, width-2, entry, tcell.StyleDefault.Foreground(tcell.ColorRed))
	}
}

func errorSectionHeight(height int) int {
	section := height / 5
	if section < 3 {
		section = 3
	}
	return section
}

// SortByQuality orders snapshots by loss rate, then by average latency.
func SortByQuality(data []pipeline.Snapshot) []pipeline.Snapshot {
	rows := append([]pipeline.Snapshot(nil), data...)
	sort.SliceStable(rows, func(i, j int) bool {
		lossI := pipeline.LossPercent(rows[i].Timeouts, rows[i].Received)
		lossJ := pipeline.LossPercent(rows[j].Timeouts, rows[j].Received)
		if lossI != lossJ {
			return lossI < lossJ
		}
		return pipeline.AverageRtt(rows[i].Rtts) < pipeline.AverageRtt(rows[j].Rtts)
	})
	return rows
}

func statsLine(snapshot pipeline.Snapshot) string {
	loss := pipeline.LossPercent(snapshot.Timeouts, snapshot.Received)
	return fmt.Sprintf(" %s (%s)  last:%s avg:%s min:%s max:%s jitter:%s loss:%.1f%%",
		snapshot.Target.Name,
		snapshot.Target.Addr,
		FormatSample(snapshot.Last),
		formatMillis(pipeline.AverageRtt(snapshot.Rtts)),
		formatMillis(snapshot.MinRtt),
		formatMillis(snapshot.MaxRtt),
		formatMillis(pipeline.Jitter(snapshot.Rtts)),
		loss,
	)
}

// drawSamples renders the sample window as one character per sample:
// block glyphs scaled against the window maximum, 'x' for timeouts.
func drawSamples(screen tcell.Screen, x, y, width int, snapshot pipeline.Snapshot) {
	samples := snapshot.Rtts
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}
	for i, sample := range samples {
		r, style := SampleGlyph(sample, snapshot.MaxRtt)
		setCell(screen, x+i, y, r, style)
	}
}

var levelGlyphs = []rune("▁▂▃▄▅▆▇█")

// SampleGlyph maps one sample to its strip character. Timeouts render as a
// red 'x'; successes scale against the all-time maximum.
func SampleGlyph(sample, maxRtt float64) (rune, tcell.Style) {
	if sample == pipeline.TimeoutSentinel {
		return 'x', tcell.StyleDefault.Foreground(tcell.ColorRed)
	}
	if maxRtt <= 0 {
		return levelGlyphs[0], tcell.StyleDefault.Foreground(tcell.ColorGreen)
	}
	level := int(sample / maxRtt * float64(len(levelGlyphs)-1))
	if level < 0 {
		level = 0
	}
	if level >= len(levelGlyphs) {
		level = len(levelGlyphs) - 1
	}
	return levelGlyphs[level], tcell.StyleDefault.Foreground(tcell.ColorGreen)
}

// drawPlot renders samples as dots on a small grid, high latency at the top.
func drawPlot(screen tcell.Screen, x, y, width, rows int, snapshot pipeline.Snapshot) {
	if rows < 1 {
		return
	}
	samples := snapshot.Rtts
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}
	for i, sample := range samples {
		if sample == pipeline.TimeoutSentinel {
			setCell(screen, x+i, y+rows-1, 'x', tcell.StyleDefault.Foreground(tcell.ColorRed))
			continue
		}
		row := PlotRow(sample, snapshot.MaxRtt, rows)
		setCell(screen, x+i, y+row, '•', tcell.StyleDefault.Foreground(tcell.ColorGreen))
	}
}

// PlotRow returns the grid row (0 = top) for a sample scaled against the
// all-time maximum.
func PlotRow(sample, maxRtt float64, rows int) int {
	if maxRtt <= 0 {
		return rows - 1
	}
	row := rows - 1 - int(sample/maxRtt*float64(rows-1))
	if row < 0 {
		row = 0
	}
	if row > rows-1 {
		row = rows - 1
	}
	return row
}

// FormatSample renders a sample value for display. 0 means no data yet.
func FormatSample(sample float64) string {
	if sample == 0 {
		return "-"
	}
	if sample == pipeline.TimeoutSentinel {
		return "timeout"
	}
	return fmt.Sprintf("%.2fms", sample)
}

func formatMillis(value float64) string {
	if value == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2fms", value)
}

func lossStyle(loss float64) tcell.Style {
	switch {
	case loss > 50:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case loss > 0:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	default:
		return tcell.StyleDefault
	}
}

func drawText(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	if width <= 0 {
		return
	}
	col := x
	for _, r := range text {
		if col >= x+width {
			return
		}
		setCell(screen, col, y, r, style)
		col++
	}
	for col < x+width {
		setCell(screen, col, y, ' ', tcell.StyleDefault)
		col++
	}
}

func setCell(screen tcell.Screen, x, y int, r rune, style tcell.Style) {
	screen.SetContent(x, y, r, nil, style)
}

func padOrTrim(value string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) > width {
		return string(runes[:width])
	}
	for len(runes) < width {
		runes = append(runes, ' ')
	}
	return string(runes)
}
