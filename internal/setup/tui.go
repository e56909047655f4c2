package setup

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/dmikhr/cardtrend/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard and writes the result to
// config.gen.yaml.
func RunTUI() error {
	var (
		cardsStr       string
		selectedSrcs   []string
		gradingCostStr string
		capitalStr     string
		authority      string
		fallback       bool
		confirm        bool
	)

	// defaults
	cardsStr = "Charizard Base Set"
	gradingCostStr = "35"
	capitalStr = "1000"
	authority = "PSA"
	fallback = true

	// step 1: welcome + cards
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("CARDTREND CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Price trends, signals and grading economics for your cards.\n"))

	fmt.Println(stepStyle.Render("STEP 1: CARDS"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cards to track").
				Description("Comma-separated card names (e.g. Charizard Base Set, Pikachu Illustrator)").
				Value(&cardsStr).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("at least one card is required")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 2: sources
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("CARDTREND CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: SOURCES"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Price sources to query").
				Options(
					huh.NewOption("eBay sold listings", "eBay").Selected(true),
					huh.NewOption("PriceCharting", "PriceCharting").Selected(true),
					huh.NewOption("TCGPlayer", "TCGPlayer").Selected(true),
					huh.NewOption("PokeData", "PokeData").Selected(true),
				).
				Validate(func(selected []string) error {
					if len(selected) == 0 {
						return fmt.Errorf("select at least one source")
					}
					return nil
				}).
				Value(&selectedSrcs),
			huh.NewConfirm().
				Title("Fall back to synthetic data when a source fails?").
				Value(&fallback),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 3: economics
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("CARDTREND CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: ECONOMICS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Reference grading authority").
				Options(
					huh.NewOption("PSA", "PSA"),
					huh.NewOption("BGS", "BGS"),
					huh.NewOption("CGC", "CGC"),
				).
				Value(&authority),
			huh.NewInput().
				Title("Grading cost ($)").
				Description("Fee charged by the grading service (e.g. 35)").
				Value(&gradingCostStr).
				Validate(validatePositiveNumber),
			huh.NewInput().
				Title("Simulation capital ($)").
				Description("Starting capital for the strategy simulation (e.g. 1000)").
				Value(&capitalStr).
				Validate(validatePositiveNumber),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("CARDTREND CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Cards: %s\nSources: %s\nAuthority: %s\nGrading cost: $%s\nCapital: $%s\nSynthetic fallback: %v\n",
		cardsStr, strings.Join(selectedSrcs, ", "), authority, gradingCostStr, capitalStr, fallback,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and analyze").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	cfg := config.Default()
	cfg.Cards = splitCards(cardsStr)
	cfg.Sources = selectedSrcs
	cfg.FallbackDisabled = !fallback
	cfg.GradingAuthority = authority
	cfg.GradingCost, _ = strconv.ParseFloat(gradingCostStr, 64)
	cfg.InitialCapital, _ = strconv.ParseFloat(capitalStr, 64)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting analysis...", filename)))
	time.Sleep(1500 * time.Millisecond)
	return nil
}

func validatePositiveNumber(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if v <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func splitCards(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
