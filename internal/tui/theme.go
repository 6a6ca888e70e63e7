package tui

import "github.com/charmbracelet/lipgloss"

// theme holds every style the views use, so switching palettes is one swap.
type theme struct {
	dark         bool
	header       lipgloss.Style
	footer       lipgloss.Style
	summary      lipgloss.Style
	label        lipgloss.Style
	chip         lipgloss.Style
	chipSelected lipgloss.Style
	context      lipgloss.Style
	notice       lipgloss.Style
	muted        lipgloss.Style
}

func newTheme(dark bool) theme {
	accent, muted, chipBg, chipFg, selFg, noticeFg := lipgloss.Color("25"), lipgloss.Color("245"),
		lipgloss.Color("254"), lipgloss.Color("236"), lipgloss.Color("231"), lipgloss.Color("160")
	if dark {
		accent, muted, chipBg, chipFg, selFg, noticeFg = lipgloss.Color("39"), lipgloss.Color("241"),
			lipgloss.Color("236"), lipgloss.Color("252"), lipgloss.Color("0"), lipgloss.Color("214")
	}
	return theme{
		dark: dark,
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			PaddingBottom(1),
		footer: lipgloss.NewStyle().
			Foreground(muted).
			PaddingTop(1),
		summary: lipgloss.NewStyle().PaddingBottom(1),
		label:   lipgloss.NewStyle().Bold(true),
		chip: lipgloss.NewStyle().
			Foreground(chipFg).
			Background(chipBg).
			Padding(0, 1).
			MarginRight(1),
		chipSelected: lipgloss.NewStyle().
			Foreground(selFg).
			Background(accent).
			Bold(true).
			Padding(0, 1).
			MarginRight(1),
		context: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(accent).
			PaddingLeft(1).
			MarginTop(1),
		notice: lipgloss.NewStyle().
			Foreground(noticeFg).
			Bold(true),
		muted: lipgloss.NewStyle().Foreground(muted),
	}
}
