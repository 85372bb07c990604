package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"eastereggs/internal/achievements"
)

type Theme struct {
	Header      lipgloss.Style
	Status      lipgloss.Style
	PanelBorder lipgloss.Style
	PanelBody   lipgloss.Style
	Accent      lipgloss.Style
	Muted       lipgloss.Style
	Fail        lipgloss.Style
	Name        lipgloss.Style
	Avatar      lipgloss.Style
	Heading     lipgloss.Style
	Link        lipgloss.Style
	Selected    lipgloss.Style
	Field       lipgloss.Style
	FieldFocus  lipgloss.Style
	DotRed      lipgloss.Style
	DotYellow   lipgloss.Style
	DotGreen    lipgloss.Style

	Rarity map[achievements.Rarity]lipgloss.Style
}

func DefaultTheme() Theme {
	return ThemeForVariant("midnight")
}

func ThemeForVariant(variant string) Theme {
	switch variant {
	case "retro":
		return retroTheme()
	default:
		return midnightTheme()
	}
}

func rarityStyles(common, rare, epic, legendary color.Color) map[achievements.Rarity]lipgloss.Style {
	return map[achievements.Rarity]lipgloss.Style{
		achievements.Common:    lipgloss.NewStyle().Foreground(common),
		achievements.Rare:      lipgloss.NewStyle().Foreground(rare).Bold(true),
		achievements.Epic:      lipgloss.NewStyle().Foreground(epic).Bold(true),
		achievements.Legendary: lipgloss.NewStyle().Foreground(legendary).Bold(true),
	}
}

func midnightTheme() Theme {
	amber := lipgloss.Color("#FFC857")
	mint := lipgloss.Color("#67F0A8")
	brick := lipgloss.Color("#FF6F91")
	ink := lipgloss.Color("#0E1420")
	slate := lipgloss.Color("#1B2740")
	powder := lipgloss.Color("#EAF2FF")
	blue := lipgloss.Color("#5EEBFF")
	violet := lipgloss.Color("#B78CFF")
	border := lipgloss.Color("#4B5F8A")
	muted := lipgloss.Color("#9CAAC6")

	return Theme{
		Header:      lipgloss.NewStyle().Background(ink).Foreground(powder),
		Status:      lipgloss.NewStyle().Background(slate).Foreground(powder),
		PanelBorder: lipgloss.NewStyle().Foreground(border),
		PanelBody:   lipgloss.NewStyle().Foreground(powder),
		Accent:      lipgloss.NewStyle().Foreground(blue).Bold(true),
		Muted:       lipgloss.NewStyle().Foreground(muted),
		Fail:        lipgloss.NewStyle().Foreground(brick).Bold(true),
		Name: lipgloss.NewStyle().
			Foreground(amber).
			Bold(true),
		Avatar:  lipgloss.NewStyle().Foreground(blue),
		Heading: lipgloss.NewStyle().Foreground(blue).Bold(true).Underline(true),
		Link:    lipgloss.NewStyle().Foreground(mint).Underline(true),
		Selected: lipgloss.NewStyle().
			Background(slate).
			Foreground(amber).
			Bold(true),
		Field:      lipgloss.NewStyle().Background(slate).Foreground(muted),
		FieldFocus: lipgloss.NewStyle().Background(border).Foreground(powder),
		DotRed:     lipgloss.NewStyle().Foreground(brick),
		DotYellow:  lipgloss.NewStyle().Foreground(amber),
		DotGreen:   lipgloss.NewStyle().Foreground(mint),
		Rarity:     rarityStyles(muted, blue, violet, amber),
	}
}

func retroTheme() Theme {
	lime := lipgloss.Color("#9CF5A2")
	amber := lipgloss.Color("#E5D47A")
	red := lipgloss.Color("#FF6B6B")
	deep := lipgloss.Color("#07150A")
	forest := lipgloss.Color("#12301A")
	glow := lipgloss.Color("#C5F7C4")
	moss := lipgloss.Color("#73A17A")

	return Theme{
		Header:      lipgloss.NewStyle().Background(deep).Foreground(glow),
		Status:      lipgloss.NewStyle().Background(forest).Foreground(glow),
		PanelBorder: lipgloss.NewStyle().Foreground(lipgloss.Color("#1F5C2F")),
		PanelBody:   lipgloss.NewStyle().Foreground(glow),
		Accent:      lipgloss.NewStyle().Foreground(lime).Bold(true),
		Muted:       lipgloss.NewStyle().Foreground(moss),
		Fail:        lipgloss.NewStyle().Foreground(red).Bold(true),
		Name:        lipgloss.NewStyle().Foreground(amber).Bold(true),
		Avatar:      lipgloss.NewStyle().Foreground(lime),
		Heading:     lipgloss.NewStyle().Foreground(amber).Bold(true),
		Link:        lipgloss.NewStyle().Foreground(lime).Underline(true),
		Selected:    lipgloss.NewStyle().Background(forest).Foreground(amber).Bold(true),
		Field:       lipgloss.NewStyle().Background(forest).Foreground(moss),
		FieldFocus:  lipgloss.NewStyle().Background(forest).Foreground(glow).Bold(true),
		DotRed:      lipgloss.NewStyle().Foreground(red),
		DotYellow:   lipgloss.NewStyle().Foreground(amber),
		DotGreen:    lipgloss.NewStyle().Foreground(lime),
		Rarity:      rarityStyles(moss, lime, glow, amber),
	}
}
